package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigforge/rigforge/pkg/api"
)

func testRows() []map[string]string {
	return []map[string]string{
		{
			"id":           "amd-ryzen-5-7600",
			"name":         "AMD Ryzen 5 7600",
			"category":     "cpu",
			"price":        "229.99",
			"vendor":       "newegg",
			"availability": "In Stock",
			"socket":       "AM5",
			"cores":        "6",
			"tdp":          "65 W",
		},
		{
			"id":           "wd-black-sn850x-1tb",
			"name":         "WD_BLACK SN850X 1TB",
			"category":     "storage",
			"price":        "89.99",
			"vendor":       "amazon",
			"availability": "In Stock",
			"capacity":     "1 TB",
			"interface":    "PCIe 4.0 x4",
		},
	}
}

func TestPartsFlow(t *testing.T) {
	newDb()
	importParts(t, testRows())

	// List everything.
	req, _ := http.NewRequest("GET", "/parts", nil)
	setAdminToken(req)
	response := executeTestRequest(t, req)
	require.Equal(t, http.StatusOK, response.Code)
	checkHeader(t, response.Result().Header)

	var list api.PartList
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &list))
	require.Len(t, list.Parts, 2)
	assert.Equal(t, 2, list.Total)

	// Filter by category.
	req, _ = http.NewRequest("GET", "/parts?category=cpu", nil)
	setAdminToken(req)
	response = executeTestRequest(t, req)
	require.Equal(t, http.StatusOK, response.Code)
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &list))
	require.Len(t, list.Parts, 1)
	assert.Equal(t, "amd-ryzen-5-7600", list.Parts[0].ID)

	// Text search.
	req, _ = http.NewRequest("GET", "/parts?q=sn850x", nil)
	setAdminToken(req)
	response = executeTestRequest(t, req)
	require.Equal(t, http.StatusOK, response.Code)
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &list))
	require.Len(t, list.Parts, 1)
	assert.Equal(t, "wd-black-sn850x-1tb", list.Parts[0].ID)

	// Bad filter value.
	req, _ = http.NewRequest("GET", "/parts?approved=maybe", nil)
	setAdminToken(req)
	response = executeTestRequest(t, req)
	require.Equal(t, http.StatusBadRequest, response.Code)

	// Get one part.
	req, _ = http.NewRequest("GET", "/parts/amd-ryzen-5-7600", nil)
	setAdminToken(req)
	response = executeTestRequest(t, req)
	require.Equal(t, http.StatusOK, response.Code)

	var part api.Part
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &part))
	assert.Equal(t, "AMD Ryzen 5 7600", part.Name)
	assert.Equal(t, "cpu", part.Category)
	require.NotNil(t, part.Price)
	assert.InDelta(t, 229.99, *part.Price, 0.001)
	assert.True(t, part.InStock)
	assert.Equal(t, "AM5", part.Specs["socket"])
	assert.Nil(t, part.Approved, "imports never set curation flags")

	// Unknown part.
	req, _ = http.NewRequest("GET", "/parts/no-such-part", nil)
	setAdminToken(req)
	response = executeTestRequest(t, req)
	require.Equal(t, http.StatusNotFound, response.Code)
}

func TestPartPatchAndDelete(t *testing.T) {
	newDb()
	importParts(t, testRows())

	// Approve and reprice.
	req, _ := http.NewRequest("PATCH", "/parts/amd-ryzen-5-7600", nil)
	setRequestBodyAndHeader(t, req, `{"approved": true, "usable": true, "price": 199.99}`)
	setAdminToken(req)
	response := executeTestRequest(t, req)
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())

	var part api.Part
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &part))
	require.NotNil(t, part.Approved)
	assert.True(t, *part.Approved)
	require.NotNil(t, part.Price)
	assert.InDelta(t, 199.99, *part.Price, 0.001)

	// A zero price is rejected; null clears instead.
	req, _ = http.NewRequest("PATCH", "/parts/amd-ryzen-5-7600", nil)
	setRequestBodyAndHeader(t, req, `{"price": 0}`)
	setAdminToken(req)
	response = executeTestRequest(t, req)
	require.Equal(t, http.StatusBadRequest, response.Code)

	req, _ = http.NewRequest("PATCH", "/parts/amd-ryzen-5-7600", nil)
	setRequestBodyAndHeader(t, req, `{"price": null}`)
	setAdminToken(req)
	response = executeTestRequest(t, req)
	require.Equal(t, http.StatusOK, response.Code)
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &part))
	assert.Nil(t, part.Price)

	// Soft delete hides the part from the default listing.
	req, _ = http.NewRequest("DELETE", "/parts/wd-black-sn850x-1tb", nil)
	setAdminToken(req)
	response = executeTestRequest(t, req)
	require.Equal(t, http.StatusNoContent, response.Code)

	req, _ = http.NewRequest("GET", "/parts", nil)
	setAdminToken(req)
	response = executeTestRequest(t, req)
	var list api.PartList
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &list))
	require.Len(t, list.Parts, 1)

	req, _ = http.NewRequest("GET", "/parts?includeDeleted=true", nil)
	setAdminToken(req)
	response = executeTestRequest(t, req)
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &list))
	require.Len(t, list.Parts, 2)
}

func TestListCategories(t *testing.T) {
	newDb()
	importParts(t, testRows())

	req, _ := http.NewRequest("GET", "/categories", nil)
	setAdminToken(req)
	response := executeTestRequest(t, req)
	require.Equal(t, http.StatusOK, response.Code)

	var categories []api.CategoryCount
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &categories))
	require.Len(t, categories, 2)
	assert.Equal(t, "cpu", categories[0].Category)
	assert.Equal(t, 1, categories[0].Count)
	assert.Equal(t, "storage", categories[1].Category)
}

func TestImportCSVEndpoint(t *testing.T) {
	newDb()

	csv := strings.Join([]string{
		`id,name,category,price,vendor,availability`,
		`corsair-rm750e,"Corsair RM750e, 750W Gold",psu,99.99,bestbuy,In Stock`,
		`,Mystery Bracket,,,,`,
	}, "\n")

	req, _ := http.NewRequest("POST", "/imports/csv?source=storefront&defaultCategory=psu", io.NopCloser(strings.NewReader(csv)))
	req.Header.Set("Content-Type", "text/csv")
	setAdminToken(req)
	response := executeTestRequest(t, req)
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())

	var summary api.ImportSummary
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &summary))
	assert.Equal(t, "storefront", summary.Source)
	assert.Equal(t, 2, summary.Attempted)
	assert.Equal(t, 2, summary.Succeeded)

	// The quoted comma survived tokenization.
	req, _ = http.NewRequest("GET", "/parts/corsair-rm750e", nil)
	setAdminToken(req)
	response = executeTestRequest(t, req)
	require.Equal(t, http.StatusOK, response.Code)

	var part api.Part
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &part))
	assert.Equal(t, "Corsair RM750e, 750W Gold", part.Name)
	assert.Equal(t, "psu", part.Category)
	assert.Equal(t, "storefront", part.Vendor)
}

func TestImportCSVRejectsBinary(t *testing.T) {
	newDb()

	pngHeader := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	req, _ := http.NewRequest("POST", "/imports/csv", io.NopCloser(bytes.NewReader(pngHeader)))
	setAdminToken(req)
	response := executeTestRequest(t, req)
	require.Equal(t, http.StatusUnsupportedMediaType, response.Code)
}

func TestImportValidation(t *testing.T) {
	newDb()

	tests := []struct {
		name string
		body string
		code int
	}{
		{"row values must be strings", `{"rows": [{"price": 123}]}`, http.StatusBadRequest},
		{"rows key required", `{"source": "x"}`, http.StatusBadRequest},
		{"unknown top-level keys rejected", `{"rows": [], "extra": true}`, http.StatusBadRequest},
		{"empty batch rejected", `{"rows": []}`, http.StatusBadRequest},
		{"non-object body", `"rows"`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("POST", "/imports", nil)
			setRequestBodyAndHeader(t, req, tt.body)
			setAdminToken(req)
			response := executeTestRequest(t, req)
			require.Equal(t, tt.code, response.Code, response.Body.String())
		})
	}
}

func TestImportRunHistory(t *testing.T) {
	newDb()
	importParts(t, testRows())

	req, _ := http.NewRequest("GET", "/imports", nil)
	setAdminToken(req)
	response := executeTestRequest(t, req)
	require.Equal(t, http.StatusOK, response.Code)

	var runs []api.ImportRun
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "unit-test", runs[0].Source)
	assert.Equal(t, 2, runs[0].Attempted)
	assert.NotEmpty(t, runs[0].PayloadHash)

	req, _ = http.NewRequest("GET", "/imports/"+runs[0].RunID, nil)
	setAdminToken(req)
	response = executeTestRequest(t, req)
	require.Equal(t, http.StatusOK, response.Code)

	var run api.ImportRun
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &run))
	assert.Equal(t, runs[0].RunID, run.RunID)

	req, _ = http.NewRequest("GET", "/imports/not-a-uuid", nil)
	setAdminToken(req)
	response = executeTestRequest(t, req)
	require.Equal(t, http.StatusBadRequest, response.Code)

	req, _ = http.NewRequest("GET", "/imports/019889a0-0000-7000-8000-000000000000", nil)
	setAdminToken(req)
	response = executeTestRequest(t, req)
	require.Equal(t, http.StatusNotFound, response.Code)
}
