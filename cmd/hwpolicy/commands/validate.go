package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dstepanov/hwpolicy/internal/document"
	"github.com/dstepanov/hwpolicy/internal/policy"
)

var validateAppVersion string

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a policy document locally",
	Long: `Validate a policy document without contacting a server.

The exit code is non-zero when the document fails to load. Unknown fields
and unknown feature names are tolerated by the loader; they are reported
here as a warning because they usually mean the document targets a newer
engine.

Examples:
  hwpolicy validate policy.json
  hwpolicy validate policy.json --app-version 10.6`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		opts := document.BuildOptions{}
		if validateAppVersion != "" {
			v, ok := policy.ParseVersion(validateAppVersion)
			if !ok {
				return fmt.Errorf("invalid --app-version %q", validateAppVersion)
			}
			opts.BrowserVersion = v
		}

		set, err := document.Build(raw, opts)
		if err != nil {
			return fmt.Errorf("document is invalid: %w", err)
		}

		if !quiet {
			fmt.Printf("OK: format %s, %d rules, max rule id %d\n",
				set.FormatVersion(), set.NumRules(), set.MaxRuleID())
			if set.ContainsUnknownFields() {
				fmt.Println("Warning: document contains unknown fields or feature names")
			}
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateAppVersion, "app-version", "", "Application version for browser_version gates")
	rootCmd.AddCommand(validateCmd)
}
