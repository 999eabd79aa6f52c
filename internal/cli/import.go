package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/rigforge/rigforge/internal/common/httpclient"
	"github.com/rigforge/rigforge/pkg/api"
)

var (
	// Import command flags
	importSource       string
	importCategory     string
	importIgnoreErrors bool
)

var partialLabel = color.New(color.FgYellow)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import FILE [flags]",
	Short: "Import part listings from a CSV, JSON, or YAML file",
	Long: `Import part listings into the catalog. The file format is taken from
the extension:

  .csv           uploaded as-is to the CSV import endpoint
  .json          a single import request with source, defaultCategory, rows
  .yaml, .yml    one import request per YAML document

YAML files may contain multiple documents separated by ---, each imported
as its own batch. {{ .ENV.VAR }} placeholders are expanded from the
environment or a .env file before parsing.

Examples:
  # Import a storefront price list
  rigctl import listings.csv --source storefront

  # Import scraped rows with a fallback category
  rigctl import gpus.yaml --category gpu

  # Keep going when one document of many is rejected
  rigctl import seed.yaml -i`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importSource, "source", "", "Source label recorded with the import run")
	importCmd.Flags().StringVar(&importCategory, "category", "", "Default category for rows that carry none")
	importCmd.Flags().BoolVarP(&importIgnoreErrors, "ignore-errors", "i", false, "Continue with the next document when one is rejected")

	rootCmd.AddCommand(importCmd)
}

// importFile is the on-disk shape of a JSON or YAML import document. Row
// values may be any scalar; they are stringified before upload.
type importFile struct {
	Source          string           `json:"source"`
	DefaultCategory string           `json:"defaultCategory"`
	Rows            []map[string]any `json:"rows"`
}

// importResult is the per-document outcome reported in JSON mode.
type importResult struct {
	Document int                `json:"document"`
	Summary  *api.ImportSummary `json:"summary,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func runImport(cmd *cobra.Command, args []string) error {
	filename := args[0]

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return importCSVFile(filename)
	case ".json", ".yaml", ".yml":
		return importDocFile(filename)
	default:
		return fmt.Errorf("unsupported file type %q: expected .csv, .json, or .yaml", filepath.Ext(filename))
	}
}

// importCSVFile uploads the raw file to the CSV import endpoint.
func importCSVFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	queryParams := map[string]string{}
	if importSource != "" {
		queryParams["source"] = importSource
	}
	if importCategory != "" {
		queryParams["defaultCategory"] = importCategory
	}

	body, _, err := newClient().DoRequest(httpclient.RequestOptions{
		Method:      http.MethodPost,
		Path:        "imports/csv",
		QueryParams: queryParams,
		Body:        data,
		ContentType: "text/csv",
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	var summary api.ImportSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return fmt.Errorf("failed to parse import summary: %w", err)
	}

	if jsonOutput {
		printJSON([]importResult{{Document: 1, Summary: &summary}})
	} else {
		printSummary(summary)
	}
	return nil
}

// importDocFile sends each document of a JSON or YAML file as one import
// batch.
func importDocFile(filename string) error {
	docs, err := loadImportDocs(filename)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no import documents found in %s", filename)
	}

	client := newClient()
	var results []importResult
	var rejected bool

	for i, doc := range docs {
		req := api.ImportRequest{
			Source:          importSource,
			DefaultCategory: importCategory,
			Rows:            stringifyRows(doc.Rows),
		}
		if req.Source == "" {
			req.Source = doc.Source
		}
		if req.DefaultCategory == "" {
			req.DefaultCategory = doc.DefaultCategory
		}

		reqBody, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("failed to encode import request: %w", err)
		}

		body, _, err := client.Post("imports", reqBody, nil)
		if err != nil {
			rejected = true
			results = append(results, importResult{Document: i + 1, Error: err.Error()})
			if !jsonOutput {
				errorLabel.Fprintf(os.Stderr, "[ERROR] ")
				fmt.Fprintf(os.Stderr, "document %d: %v\n", i+1, err)
			}
			if !importIgnoreErrors {
				if jsonOutput {
					printJSON(results)
				}
				return ErrAlreadyHandled
			}
			continue
		}

		var summary api.ImportSummary
		if err := json.Unmarshal(body, &summary); err != nil {
			return fmt.Errorf("failed to parse import summary: %w", err)
		}
		results = append(results, importResult{Document: i + 1, Summary: &summary})
		if !jsonOutput {
			printSummary(summary)
		}
	}

	if jsonOutput {
		printJSON(results)
	}
	if rejected && !importIgnoreErrors {
		return ErrAlreadyHandled
	}
	return nil
}

// loadImportDocs reads the file and returns its import documents. JSON
// files hold exactly one document; YAML files may hold several.
func loadImportDocs(filename string) ([]importFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if strings.ToLower(filepath.Ext(filename)) == ".json" {
		var doc importFile
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("unable to parse %s: %w", filename, err)
		}
		return []importFile{doc}, nil
	}

	data = replaceTabsWithSpaces(data)
	data, err = PreprocessYAML(data)
	if err != nil {
		return nil, err
	}
	return parseImportYAML(data)
}

// parseImportYAML splits a multi-document YAML stream and converts each
// document to the import request shape by round-tripping through JSON.
func parseImportYAML(data []byte) ([]importFile, error) {
	content := strings.TrimSpace(string(data))
	if len(content) == 0 || strings.Trim(content, "- \n\t") == "" {
		return nil, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	var docs []importFile

	for {
		var node yaml.Node
		if err := decoder.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
		if node.Kind == 0 {
			// Empty document, common with trailing ---
			continue
		}

		raw, err := yaml.Marshal(&node)
		if err != nil {
			return nil, fmt.Errorf("failed to re-encode YAML document: %w", err)
		}
		jsonBytes, err := sigsyaml.YAMLToJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML document: %w", err)
		}
		if string(jsonBytes) == "null" {
			continue
		}

		var doc importFile
		if err := json.Unmarshal(jsonBytes, &doc); err != nil {
			return nil, fmt.Errorf("document is not an import request: %w", err)
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// stringifyRows converts decoded row values to the raw string columns the
// server expects.
func stringifyRows(rows []map[string]any) []map[string]string {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		conv := make(map[string]string, len(row))
		for k, v := range row {
			conv[k] = stringifyCell(v)
		}
		out = append(out, conv)
	}
	return out
}

// stringifyCell renders a decoded scalar as a raw column string. Composite
// values are re-encoded as JSON and left for the server to interpret.
func stringifyCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// printSummary writes one batch outcome in human-readable form.
func printSummary(s api.ImportSummary) {
	label := okLabel
	if s.Failed > 0 {
		label = partialLabel
	}
	label.Fprintf(os.Stdout, "[OK] ")

	source := s.Source
	if source == "" {
		source = "import"
	}
	fmt.Printf("%s: %d attempted, %d succeeded, %d failed", source, s.Attempted, s.Succeeded, s.Failed)
	if s.RunID != "" {
		fmt.Printf(" (run %s)", s.RunID)
	}
	fmt.Println()

	for _, rowErr := range s.Errors {
		errorLabel.Fprintf(os.Stdout, "  row %d: ", rowErr.Index)
		fmt.Printf("%s\n", rowErr.Message)
	}
}
