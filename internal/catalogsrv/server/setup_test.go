package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigforge/rigforge/internal/catalogsrv/config"
	"github.com/rigforge/rigforge/internal/catalogsrv/db"
)

const testToken = "fixed-test-token"

// newDb loads the test config and resets the in-memory store. The fixed
// admin token is enabled so requests do not have to mint real tokens.
func newDb() {
	config.TestInit()
	config.Config().Auth.TestAdminToken = testToken
	db.Init()
}

func executeTestRequest(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	s, err := CreateNewServer()
	require.NoError(t, err, "create new server")
	s.MountHandlers()

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func setRequestBodyAndHeader(t *testing.T, req *http.Request, data any) {
	t.Helper()
	var jsonData []byte
	if s, ok := data.(string); ok {
		require.True(t, json.Valid([]byte(s)), "body string is not valid JSON")
		jsonData = []byte(s)
	} else {
		var err error
		jsonData, err = json.Marshal(data)
		require.NoError(t, err, "marshal request body")
	}

	req.Body = io.NopCloser(bytes.NewReader(jsonData))
	req.ContentLength = int64(len(jsonData))
	req.Header.Set("Content-Type", "application/json")
}

func setAdminToken(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+testToken)
}

func checkHeader(t *testing.T, h http.Header) {
	t.Helper()
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.NotEmpty(t, h.Get("X-Rigforge-Request-ID"), "no request id")
}

func compareJson(t *testing.T, expected any, actual string) {
	t.Helper()
	j, err := json.Marshal(expected)
	require.NoError(t, err, "json marshal")
	assert.JSONEq(t, string(j), actual)
}

// importParts pushes a JSON batch through POST /imports and fails the test
// unless every row succeeded.
func importParts(t *testing.T, rows []map[string]string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, "/imports", nil)
	setRequestBodyAndHeader(t, req, map[string]any{
		"source": "unit-test",
		"rows":   rows,
	})
	setAdminToken(req)
	response := executeTestRequest(t, req)
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())

	var summary struct {
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &summary))
	require.Equal(t, len(rows), summary.Succeeded, response.Body.String())
	require.Zero(t, summary.Failed)
}

// approvePart marks one part approved and usable through the PATCH route.
func approvePart(t *testing.T, partID string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPatch, "/parts/"+partID, nil)
	setRequestBodyAndHeader(t, req, `{"approved": true, "usable": true}`)
	setAdminToken(req)
	response := executeTestRequest(t, req)
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())
}
