package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringifyCell(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "AM5", "AM5"},
		{"price", float64(229.99), "229.99"},
		{"whole number", float64(65), "65"},
		{"bool", true, "true"},
		{"object", map[string]any{"a": float64(1)}, `{"a":1}`},
		{"array", []any{"x", "y"}, `["x","y"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stringifyCell(tt.in))
		})
	}
}

func TestParseImportYAMLMultiDoc(t *testing.T) {
	data := []byte(`source: seedfile
defaultCategory: cpu
rows:
  - id: amd-ryzen-5-7600
    name: AMD Ryzen 5 7600
    price: 229.99
    cores: 6
---
source: storefront
rows:
  - id: wd-black-sn850x-1tb
    name: WD_BLACK SN850X 1TB
    category: storage
---
`)

	docs, err := parseImportYAML(data)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "seedfile", docs[0].Source)
	assert.Equal(t, "cpu", docs[0].DefaultCategory)
	require.Len(t, docs[0].Rows, 1)

	rows := stringifyRows(docs[0].Rows)
	assert.Equal(t, "229.99", rows[0]["price"])
	assert.Equal(t, "6", rows[0]["cores"])
	assert.Equal(t, "AMD Ryzen 5 7600", rows[0]["name"])

	assert.Equal(t, "storefront", docs[1].Source)
	assert.Empty(t, docs[1].DefaultCategory)
}

func TestParseImportYAMLEmpty(t *testing.T) {
	for _, data := range []string{"", "   \n", "---\n", "---\n---\n"} {
		docs, err := parseImportYAML([]byte(data))
		require.NoError(t, err)
		assert.Empty(t, docs)
	}
}

func TestParseImportYAMLNotARequest(t *testing.T) {
	_, err := parseImportYAML([]byte("- one\n- two\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an import request")
}

func TestLoadImportDocsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.json")
	content := `{"source": "seedfile", "rows": [{"id": "a", "name": "A", "price": 10.5}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	docs, err := loadImportDocs(path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "seedfile", docs[0].Source)

	rows := stringifyRows(docs[0].Rows)
	assert.Equal(t, "10.5", rows[0]["price"])
}

func TestLoadImportDocsEnvTemplate(t *testing.T) {
	t.Setenv("RIGCTL_TEST_SOURCE", "envsource")

	path := filepath.Join(t.TempDir(), "parts.yaml")
	content := "source: {{ .ENV.RIGCTL_TEST_SOURCE }}\nrows:\n  - id: a\n    name: A\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	docs, err := loadImportDocs(path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "envsource", docs[0].Source)
}

func TestLoadImportDocsMissingEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.yaml")
	content := "source: {{ .ENV.RIGCTL_TEST_UNSET_VARIABLE }}\nrows: []\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	_, err := loadImportDocs(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RIGCTL_TEST_UNSET_VARIABLE")
}

func TestLoadImportDocsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rows: ["), 0600))

	_, err := loadImportDocs(path)
	require.Error(t, err)
}
