package fleetpull

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"

	matchUsage       = "comma-separated glob patterns; only repositories whose name or path matches are processed"
	concurrencyUsage = "max repositories processed in parallel (0 = config default, which is unbounded; negative = unbounded)"
)

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "o", formatText, "output format: text, json, yaml")
}

func addMatchFlag(cmd *cobra.Command) {
	cmd.Flags().String("match", "", matchUsage)
}

func addConcurrencyFlag(cmd *cobra.Command) {
	cmd.Flags().Int("concurrency", 0, concurrencyUsage)
}

func addSyncFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-fetch", false, "only switch branches, do not pull from upstream")
	cmd.Flags().Int("timeout", 0, "per git command timeout in seconds (0 = config default)")
	cmd.Flags().Bool("strict", false, "exit with status 1 when any repository is left untouched")
	addConcurrencyFlag(cmd)
	addMatchFlag(cmd)
	addFormatFlag(cmd)
}

// outputFormat validates --format before any repository is touched.
func outputFormat(cmd *cobra.Command) (string, error) {
	raw, _ := cmd.Flags().GetString("format")
	format := strings.ToLower(strings.TrimSpace(raw))
	switch format {
	case formatText, formatJSON, formatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected text, json or yaml)", raw)
	}
}
