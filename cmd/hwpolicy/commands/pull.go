package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dstepanov/hwpolicy/internal/cli"
	"github.com/dstepanov/hwpolicy/internal/client"
)

var pullOutput string

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download the active policy document",
	Long: `Download the raw policy document currently served.

Examples:
  hwpolicy pull
  hwpolicy pull --output policy.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.ResolveConfig(baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(cfg.BaseURL, cfg.APIKey)
		doc, err := c.GetDocument(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get document: %w", err)
		}

		if pullOutput != "" {
			if err := os.WriteFile(pullOutput, doc, 0644); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			if verbose {
				fmt.Printf("Wrote %d bytes to %s\n", len(doc), pullOutput)
			}
			return nil
		}

		_, err = os.Stdout.Write(doc)
		return err
	},
}

func init() {
	pullCmd.Flags().StringVar(&pullOutput, "output", "", "Write the document to a file instead of stdout")
	rootCmd.AddCommand(pullCmd)
}
