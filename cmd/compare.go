package cmd

import (
	"errors"

	"github.com/huangsam/peerscore/core"
	"github.com/huangsam/peerscore/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// compareCmd scores the universe under two peer-weight profiles.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare rankings under two peer-group weight profiles.",
	Long: `Score every company twice, once with --peer-weights and once with
--compare-peer-weights, and show how scores and ranks move.

Ideal for:
- Checking how sensitive a ranking is to the peer-group blend
- Finding companies that only look good against one kind of peer

Examples:
  # Status peers only versus the default blend
  peerscore compare --compare-peer-weights status:100

  # Two custom profiles as JSON
  peerscore compare --peer-weights valuation:100 --compare-peer-weights operational:100 --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if viper.GetString("compare-peer-weights") == "" {
			contract.LogFatal("Cannot run comparison", errors.New("--compare-peer-weights must be provided"))
		}
		if err := core.ExecuteCompare(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run comparison", err)
		}
	},
}
