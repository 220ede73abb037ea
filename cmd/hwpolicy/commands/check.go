package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dstepanov/hwpolicy/internal/cli"
	"github.com/dstepanov/hwpolicy/internal/client"
)

var (
	checkOs            string
	checkOsVersion     string
	checkVendorID      string
	checkDeviceID      string
	checkDriverVendor  string
	checkDriverVersion string
	checkDriverDate    string
	checkGLVendor      string
	checkGLRenderer    string
	checkOptimus       bool
	checkAmdSwitchable bool
	checkPerfGraphics  float32
	checkPerfGaming    float32
	checkPerfOverall   float32
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate a hardware description against the active policy",
	Long: `Evaluate a hardware description against the policy set currently
served, printing which features get disabled and why.

Examples:
  hwpolicy check --os linux --vendor-id 0x10de
  hwpolicy check --os macosx --os-version 10.6.4 --vendor-id 0x8086 --device-id 0x27ae
  hwpolicy check --os win --driver-version 8.15.11.8593 --vendor-id 0x10de --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.ResolveConfig(baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		req := client.EvaluateRequest{
			Hardware: client.Hardware{
				VendorID:      checkVendorID,
				DeviceID:      checkDeviceID,
				DriverVendor:  checkDriverVendor,
				DriverVersion: checkDriverVersion,
				DriverDate:    checkDriverDate,
				GLVendor:      checkGLVendor,
				GLRenderer:    checkGLRenderer,
				Optimus:       checkOptimus,
				AmdSwitchable: checkAmdSwitchable,
				PerfGraphics:  checkPerfGraphics,
				PerfGaming:    checkPerfGaming,
				PerfOverall:   checkPerfOverall,
			},
		}
		if checkOs != "" {
			req.Platform = &client.Platform{Os: checkOs, OsVersion: checkOsVersion}
		}

		c := client.NewClient(cfg.BaseURL, cfg.APIKey)
		result, err := c.Evaluate(context.Background(), req)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}

		if !quiet {
			return cli.PrintEvaluateResult(result, cli.OutputFormat(format))
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkOs, "os", "", "OS type (win, macosx, linux, chromeos); defaults to the server host")
	checkCmd.Flags().StringVar(&checkOsVersion, "os-version", "", "OS version")
	checkCmd.Flags().StringVar(&checkVendorID, "vendor-id", "", "PCI vendor id (hex, e.g. 0x10de)")
	checkCmd.Flags().StringVar(&checkDeviceID, "device-id", "", "PCI device id (hex)")
	checkCmd.Flags().StringVar(&checkDriverVendor, "driver-vendor", "", "Driver vendor string")
	checkCmd.Flags().StringVar(&checkDriverVersion, "driver-version", "", "Driver version string")
	checkCmd.Flags().StringVar(&checkDriverDate, "driver-date", "", "Driver date (mm-dd-yyyy)")
	checkCmd.Flags().StringVar(&checkGLVendor, "gl-vendor", "", "GL vendor string")
	checkCmd.Flags().StringVar(&checkGLRenderer, "gl-renderer", "", "GL renderer string")
	checkCmd.Flags().BoolVar(&checkOptimus, "optimus", false, "Machine uses nvidia Optimus")
	checkCmd.Flags().BoolVar(&checkAmdSwitchable, "amd-switchable", false, "Machine uses AMD switchable graphics")
	checkCmd.Flags().Float32Var(&checkPerfGraphics, "perf-graphics", 0, "Graphics performance score (0 = unmeasured)")
	checkCmd.Flags().Float32Var(&checkPerfGaming, "perf-gaming", 0, "Gaming performance score (0 = unmeasured)")
	checkCmd.Flags().Float32Var(&checkPerfOverall, "perf-overall", 0, "Overall performance score (0 = unmeasured)")
	rootCmd.AddCommand(checkCmd)
}
