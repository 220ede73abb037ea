package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dstepanov/hwpolicy/internal/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save base URL and API key to the config file",
	Long: `Save connection settings to ~/.hwpolicy/config.yaml.

Examples:
  hwpolicy config set --base-url http://localhost:8080 --api-key secret`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return err
		}
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		if apiKey != "" {
			cfg.APIKey = apiKey
		}
		if err := cli.SaveConfig(cfg); err != nil {
			return err
		}
		if !quiet {
			path, _ := cli.GetConfigPath()
			fmt.Printf("Saved %s\n", path)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective CLI configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.ResolveConfig(baseURL, apiKey)
		if err != nil {
			return err
		}
		fmt.Printf("base_url: %s\n", cfg.BaseURL)
		if cfg.APIKey != "" {
			fmt.Println("api_key: (set)")
		} else {
			fmt.Println("api_key: (not set)")
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
