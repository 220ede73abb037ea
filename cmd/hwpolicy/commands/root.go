package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	baseURL string
	apiKey  string
	format  string
	quiet   bool
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hwpolicy",
	Short: "CLI tool for managing hardware policy rules",
	Long: `hwpolicy is a command-line tool for the hardware policy service.

It validates and pushes policy documents, inspects the active policy set,
and evaluates hardware descriptions against it.

Examples:
  hwpolicy validate policy.json
  hwpolicy push policy.json --api-key secret
  hwpolicy show --format json
  hwpolicy check --os linux --vendor-id 0x10de`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Base URL of the hwpolicy API")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for admin operations")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
}
