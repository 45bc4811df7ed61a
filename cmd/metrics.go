package cmd

import (
	"github.com/huangsam/peerscore/core"
	"github.com/huangsam/peerscore/internal/contract"
	"github.com/spf13/cobra"
)

// metricsCmd displays the metric configuration of every status.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display the metrics, themes and weights used for each status",
	Long: `Show the metrics that feed the score of each company status.

Each row lists the theme, metric key, label, weight and whether a higher value
is better. Weights include overrides from .peerscore.yaml and --metric-weights.

No companies are loaded - this is purely informational.

Examples:
  # Show every status
  peerscore metrics

  # Check an override before scoring with it
  peerscore metrics --status producer --metric-weights producer.operations.costs.aisc_last_year:25`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
