package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		name         string
		row          map[string]string
		batchDefault string
		want         string
	}{
		{
			name: "explicit category column",
			row:  map[string]string{"category": "GPU", "name": "RTX 4070"},
			want: "gpu",
		},
		{
			name:         "explicit beats batch default",
			row:          map[string]string{"category": "psu"},
			batchDefault: "cpu",
			want:         "psu",
		},
		{
			name: "type column with category vocabulary",
			row:  map[string]string{"type": "Motherboard"},
			want: "motherboard",
		},
		{
			name: "type column with drive vocabulary is not a category",
			row:  map[string]string{"type": "SSD"},
			want: "unknown",
		},
		{
			name: "storage signature",
			row: map[string]string{
				"capacity": "2 TB", "type": "SSD",
				"form_factor": "2.5", "interface": "SATA III",
			},
			want: "storage",
		},
		{
			name: "storage signature overrides batch default",
			row: map[string]string{
				"capacity": "500 GB", "type": "7200 RPM",
				"form_factor": "3.5", "interface": "SATA",
			},
			batchDefault: "cpu",
			want:         "storage",
		},
		{
			name:         "batch default when row has no signal",
			row:          map[string]string{"name": "Test RAM 16GB"},
			batchDefault: "memory",
			want:         "memory",
		},
		{
			name:         "batch default is lowercased",
			row:          map[string]string{"name": "x"},
			batchDefault: " CPU ",
			want:         "cpu",
		},
		{
			name: "heuristic needs capacity plus one companion",
			row:  map[string]string{"capacity": "1 TB", "interface": "SATA"},
			want: "storage",
		},
		{
			name: "capacity alone is not enough",
			row:  map[string]string{"capacity": "1 TB"},
			want: "unknown",
		},
		{
			name: "no signal at all",
			row:  map[string]string{"name": "mystery item"},
			want: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveCategory(tt.row, tt.batchDefault))
		})
	}
}

func TestResolveCategorySignatureNeedsAllColumns(t *testing.T) {
	// Three of four signature columns: not storage by signature, but the
	// heuristic still fires because capacity has companions.
	row := map[string]string{"capacity": "2 TB", "type": "SSD", "interface": "NVMe PCIe"}
	assert.Equal(t, "storage", ResolveCategory(row, ""))

	// With a batch default the incomplete signature must not override it.
	assert.Equal(t, "gpu", ResolveCategory(row, "gpu"))
}
