package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dstepanov/hwpolicy/internal/cli"
	"github.com/dstepanov/hwpolicy/internal/client"
	"github.com/dstepanov/hwpolicy/internal/document"
)

var pushSkipValidation bool

var pushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "Push a policy document to the server",
	Long: `Validate a policy document locally, then upload it.

The document is checked with the same loader the server uses, so most
problems surface before anything leaves the machine.

Examples:
  hwpolicy push policy.json --api-key secret
  hwpolicy push policy.json --skip-validation`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		if !pushSkipValidation {
			if _, err := document.Build(raw, document.BuildOptions{}); err != nil {
				return fmt.Errorf("document is invalid: %w", err)
			}
			if verbose {
				fmt.Println("Document validated locally")
			}
		}

		cfg, err := cli.ResolveConfig(baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(cfg.BaseURL, cfg.APIKey)
		result, err := c.PushPolicy(context.Background(), raw)
		if err != nil {
			return fmt.Errorf("failed to push policy: %w", err)
		}

		if !quiet {
			return cli.PrintPushResult(result, cli.OutputFormat(format))
		}
		return nil
	},
}

func init() {
	pushCmd.Flags().BoolVar(&pushSkipValidation, "skip-validation", false, "Skip local validation before uploading")
	rootCmd.AddCommand(pushCmd)
}
