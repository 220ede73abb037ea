package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dstepanov/hwpolicy/internal/cli"
	"github.com/dstepanov/hwpolicy/internal/client"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active policy set",
	Long: `Show metadata about the policy set currently served.

Examples:
  hwpolicy show
  hwpolicy show --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.ResolveConfig(baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(cfg.BaseURL, cfg.APIKey)
		meta, err := c.GetPolicy(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get policy: %w", err)
		}

		if !quiet {
			return cli.PrintPolicyMeta(meta, cli.OutputFormat(format))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
