package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rigforge/rigforge/internal/common/httpclient"
	"github.com/rigforge/rigforge/pkg/api"
)

var (
	// List command flags
	listCategory string
	listVendor   string
	listSearch   string
	listLimit    int
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list RESOURCE_TYPE [flags]",
	Short: "List resources of a specific type",
	Long: `List resources of a specific type. Supported resource types:
  - parts
  - runs
  - builds
  - categories

Examples:
  # List all catalog parts
  rigctl list parts

  # List CPUs only
  rigctl list parts --category cpu

  # Search parts by name
  rigctl list parts --search "990 pro"

  # List the most recent import runs
  rigctl list runs --limit 10

  # List builds in JSON format
  rigctl list builds -j`,
	Args: cobra.ExactArgs(1),
	RunE: listResources,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Filter parts by category")
	listCmd.Flags().StringVarP(&listVendor, "vendor", "v", "", "Filter parts by vendor")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Filter parts by name substring")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 0, "Maximum number of entries to return")
}

// listResources dispatches on the resource type argument.
func listResources(cmd *cobra.Command, args []string) error {
	client := newClient()

	switch args[0] {
	case "parts":
		return listParts(client)
	case "runs":
		return listRuns(client)
	case "builds":
		return listBuilds(client)
	case "categories":
		return listCategories(client)
	default:
		return fmt.Errorf("unknown resource type %q: expected parts, runs, builds, or categories", args[0])
	}
}

func listParts(client httpclient.HTTPClientInterface) error {
	queryParams := map[string]string{}
	if listCategory != "" {
		queryParams["category"] = listCategory
	}
	if listVendor != "" {
		queryParams["vendor"] = listVendor
	}
	if listSearch != "" {
		queryParams["q"] = listSearch
	}
	if listLimit > 0 {
		queryParams["limit"] = strconv.Itoa(listLimit)
	}

	response, err := client.Get("parts", queryParams)
	if err != nil {
		return err
	}

	var list api.PartList
	if err := json.Unmarshal(response, &list); err != nil {
		return fmt.Errorf("failed to parse part list: %v", err)
	}

	if jsonOutput {
		return printResourceJSON(list)
	}

	printListHeader("parts")
	for _, p := range list.Parts {
		fmt.Printf("- %-32s %-10s %10s  %s%s\n", p.ID, p.Category, formatPrice(p.Price), p.Name, partMarkers(p))
	}
	fmt.Printf("Total: %d\n", list.Total)
	return nil
}

func listRuns(client httpclient.HTTPClientInterface) error {
	queryParams := map[string]string{}
	if listLimit > 0 {
		queryParams["limit"] = strconv.Itoa(listLimit)
	}

	response, err := client.Get("imports", queryParams)
	if err != nil {
		return err
	}

	var runs []api.ImportRun
	if err := json.Unmarshal(response, &runs); err != nil {
		return fmt.Errorf("failed to parse import runs: %v", err)
	}

	if jsonOutput {
		return printResourceJSON(runs)
	}

	printListHeader("import runs")
	for _, run := range runs {
		fmt.Printf("- %s %-14s %d attempted, %d succeeded, %d failed (run %s)\n",
			run.StartedAt.Format(time.RFC3339), run.Source, run.Attempted, run.Succeeded, run.Failed, run.RunID)
	}
	return nil
}

func listBuilds(client httpclient.HTTPClientInterface) error {
	response, err := client.Get("builds", nil)
	if err != nil {
		return err
	}

	var builds []api.Build
	if err := json.Unmarshal(response, &builds); err != nil {
		return fmt.Errorf("failed to parse builds: %v", err)
	}

	if jsonOutput {
		return printResourceJSON(builds)
	}

	printListHeader("builds")
	for _, b := range builds {
		fmt.Printf("- %-38s %-10s %-28s %d parts\n", b.BuildID, b.Status, b.Name, len(b.Parts))
	}
	return nil
}

func listCategories(client httpclient.HTTPClientInterface) error {
	response, err := client.Get("categories", nil)
	if err != nil {
		return err
	}

	var counts []api.CategoryCount
	if err := json.Unmarshal(response, &counts); err != nil {
		return fmt.Errorf("failed to parse categories: %v", err)
	}

	if jsonOutput {
		return printResourceJSON(counts)
	}

	printListHeader("categories")
	for _, c := range counts {
		fmt.Printf("- %s (%d)\n", c.Category, c.Count)
	}
	return nil
}

// printListHeader prints the title-cased section header.
func printListHeader(resourceType string) {
	fmt.Printf("%s:\n", cases.Title(language.English).String(resourceType))
}

// printResourceJSON wraps the decoded value in the CLI's JSON envelope.
func printResourceJSON(value any) error {
	output := map[string]any{
		"result": 1,
		"value":  value,
	}

	jsonBytes, err := json.MarshalIndent(output, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to format JSON output: %v", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

// formatPrice renders a nullable price for table output.
func formatPrice(price *float64) string {
	if price == nil {
		return "-"
	}
	return strconv.FormatFloat(*price, 'f', 2, 64)
}

// partMarkers renders the curation flags that matter at a glance.
func partMarkers(p api.Part) string {
	var marks []string
	if p.Approved != nil && *p.Approved {
		marks = append(marks, "approved")
	}
	if p.Usable != nil && !*p.Usable {
		marks = append(marks, "disabled")
	}
	if !p.InStock {
		marks = append(marks, "out of stock")
	}
	if len(marks) == 0 {
		return ""
	}
	return " [" + strings.Join(marks, ", ") + "]"
}
