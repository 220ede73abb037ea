package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/dstepanov/hwpolicy/internal/client"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// PrintPolicyMeta outputs policy set metadata in the specified format
func PrintPolicyMeta(meta *client.PolicyMeta, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(meta)
	case FormatYAML:
		return printYAML(meta)
	case FormatTable:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Format", "Rules", "Max Rule ID", "Unknown Fields", "ETag", "Loaded At")
		table.Append(
			meta.FormatVersion,
			fmt.Sprintf("%d", meta.NumRules),
			fmt.Sprintf("%d", meta.MaxRuleID),
			fmt.Sprintf("%v", meta.ContainsUnknownFields),
			meta.ETag,
			meta.LoadedAt,
		)
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintEvaluateResult outputs an evaluation decision in the specified format
func PrintEvaluateResult(result *client.EvaluateResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(result)
	case FormatYAML:
		return printYAML(result)
	case FormatTable:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Rule", "Description", "Bugs")
		for _, p := range result.Problems {
			table.Append(
				fmt.Sprintf("%d", p.ID),
				truncate(p.Description, 60),
				formatBugs(p.CrBugs, p.WebkitBugs),
			)
		}
		fmt.Printf("Disabled features: %s\n", joinOrNone(result.Features))
		if len(result.Problems) == 0 {
			return nil
		}
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintPushResult outputs a push acknowledgement in the specified format
func PrintPushResult(result *client.PushResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(result)
	case FormatYAML:
		return printYAML(result)
	case FormatTable:
		fmt.Printf("Pushed policy: %d rules, etag %s\n", result.NumRules, result.ETag)
		if result.ContainsUnknownFields {
			fmt.Println("Warning: document contains fields unknown to the server")
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func printYAML(data interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(data)
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

func formatBugs(crBugs, webkitBugs []int) string {
	var parts []string
	for _, b := range crBugs {
		parts = append(parts, fmt.Sprintf("cr:%d", b))
	}
	for _, b := range webkitBugs {
		parts = append(parts, fmt.Sprintf("webkit:%d", b))
	}
	return joinOrNone(parts)
}

func joinOrNone(parts []string) string {
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
