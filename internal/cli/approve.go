package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

// approveCmd marks parts approved and usable so builds can reference them.
var approveCmd = &cobra.Command{
	Use:   "approve PART_ID...",
	Short: "Approve parts for use in builds",
	Long: `Approve one or more catalog parts. An approved part is also marked
usable, which is what the build publish gate checks.

Examples:
  rigctl approve amd-ryzen-5-7600
  rigctl approve amd-ryzen-5-7600 asus-b650-plus`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return patchParts(args, map[string]any{"approved": true, "usable": true}, "approved")
	},
}

// disableCmd marks parts unusable without deleting them.
var disableCmd = &cobra.Command{
	Use:   "disable PART_ID...",
	Short: "Mark parts unusable for builds",
	Long: `Mark one or more catalog parts unusable. Disabled parts stay in the
catalog but block any build that references them from publishing.

Example:
  rigctl disable wd-black-sn850x-1tb`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return patchParts(args, map[string]any{"usable": false}, "disabled")
	},
}

func init() {
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(disableCmd)
}

// patchParts applies the same curation patch to every named part, reporting
// per-part outcomes. A failed part does not stop the rest.
func patchParts(ids []string, patch map[string]any, verb string) error {
	patchBody, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to encode patch: %w", err)
	}

	client := newClient()
	var statusValues []map[string]any
	failed := false

	for _, id := range ids {
		_, err := client.Patch("parts/"+url.PathEscape(id), patchBody)
		if err != nil {
			failed = true
			statusValues = append(statusValues, map[string]any{
				"id":    id,
				verb:    false,
				"error": err.Error(),
			})
			if !jsonOutput {
				errorLabel.Fprintf(os.Stderr, "[ERROR] ")
				fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
			}
			continue
		}

		statusValues = append(statusValues, map[string]any{
			"id": id,
			verb: true,
		})
		if !jsonOutput {
			okLabel.Fprintf(os.Stdout, "[OK] ")
			fmt.Printf("%s %s\n", verb, id)
		}
	}

	if jsonOutput {
		printJSON(statusValues)
	}
	if failed {
		return ErrAlreadyHandled
	}
	return nil
}
