package cmd

import (
	"github.com/huangsam/peerscore/core"
	"github.com/huangsam/peerscore/internal/contract"
	"github.com/spf13/cobra"
)

// scoreCmd ranks companies by peer-relative score.
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Show the top companies ranked by peer-relative score.",
	Long: `Score every company against its status, valuation and operational peers.

Each metric is turned into a percentile within each peer group. The three
percentiles are blended with the peer-group weights and the metric scores are
combined with the per-status metric weights into a final 0-100 score.

Examples:
  # Rank the whole universe
  peerscore score --source companies.yaml

  # Only producers and developers, top 10
  peerscore score --source companies.yaml --status producer,developer --limit 10

  # Lean on valuation peers and show the top contributing metrics
  peerscore score --peer-weights status:20,valuation:60,operational:20 --explain --detail

  # Export to Parquet for analysis
  peerscore score --output parquet --output-file scores.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteScore(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run scoring", err)
		}
	},
}
