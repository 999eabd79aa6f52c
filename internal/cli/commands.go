// Package cli implements the rigctl command tree: admin login, catalog file
// imports, listings, and part curation against a running catalog server.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rigforge/rigforge/internal/common/httpclient"
)

var (
	// Global flags
	jsonOutput bool
	configFile string
)

// ErrAlreadyHandled signals that the command already printed its error and
// Execute should only set the exit code.
var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rigctl [command] [flags]",
	Short: "rigctl - command line interface for the rigforge catalog server",
	Long: `rigctl is the admin command line interface for the rigforge catalog
server. It imports part listings from CSV, JSON, or YAML files, lists and
curates catalog parts, and inspects import runs and builds.

Examples:
  # Authenticate against the server
  rigctl login

  # Import a CSV price list
  rigctl import listings.csv --source storefront

  # List catalog parts
  rigctl list parts --category cpu

  # Approve a part for use in builds
  rigctl approve amd-ryzen-5-7600`,
	PersistentPreRun: preRunHandlePersistents,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newLoginCmd())
}

// Execute runs the root command. It is called once from main.
func Execute() {
	rootCmd.SilenceErrors = true // Prevent Cobra from printing the error
	rootCmd.SilenceUsage = true  // Prevent Cobra from printing usage on error

	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		if jsonOutput {
			kv := map[string]string{
				"error": err.Error(),
			}
			printJSON(kv)
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// preRunHandlePersistents resolves the config file path and loads it before
// command execution. Commands that manage or report configuration run
// without a loaded config.
func preRunHandlePersistents(cmd *cobra.Command, args []string) {
	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	exempt := false
	c := cmd
	for c != nil {
		if c.Name() == "config" || c.Name() == "version" {
			exempt = true
			break
		}
		c = c.Parent()
	}

	if !exempt {
		if err := LoadConfig(configFile); err != nil {
			if os.IsNotExist(err) {
				fmt.Println("rigctl config file not found. Configure the server with \"rigctl config --server <host:port>\" first.")
				os.Exit(1)
			}
			fmt.Printf("%s\n", err.Error())
			os.Exit(1)
		}
	}
}

// newClientFn builds the HTTP client commands use. Tests swap it for an
// in-process client against a freshly mounted server.
var newClientFn = func(config httpclient.Configurator) httpclient.HTTPClientInterface {
	return httpclient.NewClient(config)
}

func newClient() httpclient.HTTPClientInterface {
	return newClientFn(GetConfig())
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of rigctl",
		Run: func(cmd *cobra.Command, args []string) {
			configPath, err := GetDefaultConfigPath()
			if err != nil {
				configPath = "unknown"
			}

			if jsonOutput {
				kv := map[string]string{
					"version":     getCLIVersion(),
					"config_file": configPath,
				}
				printJSON(kv)
			} else {
				cmd.Printf("rigctl %s\n", getCLIVersion())
				cmd.Printf("Config file: %s\n", configPath)
			}
		},
	}
}

// printJSON prints the given value as indented JSON to stdout
func printJSON(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(jsonData))
}

// getCLIVersion returns the current CLI version
func getCLIVersion() string {
	return "v0.1.0"
}
