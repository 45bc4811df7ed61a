package cmd

import (
	"github.com/huangsam/peerscore/core"
	"github.com/huangsam/peerscore/internal/contract"
	"github.com/spf13/cobra"
)

// tuneCmd starts an interactive weight-tuning session.
var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Adjust weights interactively and watch the ranking update.",
	Long: `Read weight edits from stdin and re-score after each quiet period.

Companies are loaded and precomputed once. Each edit restarts the --debounce
timer and only the newest edit is scored.

Commands:
  peer status=50 valuation=25 operational=25
  weight producer.operations.costs.aisc_last_year=10
  show
  quit

Examples:
  peerscore tune --source companies.yaml --limit 10
  echo "peer status=100" | peerscore tune --debounce 0s`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTune(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run tuning session", err)
		}
	},
}
