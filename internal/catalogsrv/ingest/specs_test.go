package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSpecsGeneral(t *testing.T) {
	specs := ExtractSpecs(map[string]string{
		"cores":   "6",
		"threads": "12",
		"socket":  " AM4 ",
		"tdp":     "65W",
	}, "cpu")

	assert.Equal(t, "6", specs["cores"])
	assert.Equal(t, "12", specs["threads"])
	assert.Equal(t, "AM4", specs["socket"])
	assert.Equal(t, "65W", specs["tdp"])

	// Storage keys never appear on a non-storage category.
	_, ok := specs["capacityGb"]
	assert.False(t, ok)
}

func TestExtractSpecsNoInventedDefaults(t *testing.T) {
	specs := ExtractSpecs(map[string]string{"name": "x"}, "cpu")
	assert.Empty(t, specs)

	specs = ExtractSpecs(map[string]string{"name": "x"}, "storage")
	assert.Empty(t, specs)
}

func TestExtractSpecsCapacity(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"2 TB", 2048},
		{"2TB", 2048},
		{"1.5 tb", 1536},
		{"500 GB", 500},
		{"500GB", 500},
		{"500", 500},
		{"250 GB 7200 RPM", 250},
	}
	for _, tt := range tests {
		specs := ExtractSpecs(map[string]string{"capacity": tt.raw}, "storage")
		require.Contains(t, specs, "capacityGb", "capacity %q", tt.raw)
		assert.InDelta(t, tt.want, specs["capacityGb"], 0.0001, "capacity %q", tt.raw)
		assert.Equal(t, tt.raw, specs["capacityRaw"])
	}

	// Unparsable capacity keeps the raw text and omits the number.
	specs := ExtractSpecs(map[string]string{"capacity": "large"}, "storage")
	assert.Equal(t, "large", specs["capacityRaw"])
	_, ok := specs["capacityGb"]
	assert.False(t, ok)
}

func TestExtractSpecsStorageType(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"SSD", "ssd"},
		{"NVMe SSD", "ssd"},
		{"Hybrid SSHD", "hybrid"},
		{"7200 RPM", "hdd"},
		{"5400rpm", "hdd"},
		{"flash", "flash"},
	}
	for _, tt := range tests {
		specs := ExtractSpecs(map[string]string{"type": tt.raw, "capacity": "1 TB"}, "storage")
		assert.Equal(t, tt.want, specs["storageType"], "type %q", tt.raw)
	}
}

func TestExtractSpecsRpm(t *testing.T) {
	// Dedicated column wins.
	specs := ExtractSpecs(map[string]string{"rpm": "5400 RPM", "type": "7200 RPM"}, "storage")
	assert.Equal(t, 5400, specs["rpm"])

	// Fallback: RPM figure inside the type column.
	specs = ExtractSpecs(map[string]string{"type": "7200 RPM"}, "storage")
	assert.Equal(t, 7200, specs["rpm"])
	assert.Equal(t, "hdd", specs["storageType"])

	specs = ExtractSpecs(map[string]string{"type": "SSD"}, "storage")
	_, ok := specs["rpm"]
	assert.False(t, ok)
}

func TestExtractSpecsStorageDetails(t *testing.T) {
	specs := ExtractSpecs(map[string]string{
		"capacity":     "2 TB",
		"type":         "SSD",
		"cache":        "64MB",
		"form_factor":  "2.5\"",
		"interface":    "PCIe 4.0 x4",
		"price_per_gb": "$0.05",
		"rating_count": "1,234",
	}, "storage")

	assert.InDelta(t, 64.0, specs["cacheMb"], 0.0001)
	assert.Equal(t, "2.5\"", specs["formFactor"])
	assert.Equal(t, "PCIe 4.0 x4", specs["interface"])
	assert.Equal(t, true, specs["isNvme"])
	assert.InDelta(t, 0.05, specs["pricePerGb"], 0.0001)
	assert.Equal(t, 1234, specs["ratingCount"])
}

func TestExtractSpecsNvmeFlag(t *testing.T) {
	specs := ExtractSpecs(map[string]string{"interface": "SATA III"}, "storage")
	assert.Equal(t, false, specs["isNvme"])

	specs = ExtractSpecs(map[string]string{"capacity": "1 TB"}, "storage")
	_, ok := specs["isNvme"]
	assert.False(t, ok)
}
