package cmd

import (
	"github.com/huangsam/peerscore/core"
	"github.com/huangsam/peerscore/internal/contract"
	"github.com/spf13/cobra"
)

// peersCmd shows the peer groups each company is compared against.
var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Show the status, valuation and operational peers of each company.",
	Long: `List the peer groups used when scoring a company.

Status peers share the company's status. Valuation peers are the nearest
companies by market cap. Operational peers share the company's scale tier.

Examples:
  # Peers of a single company by ID, name or ticker
  peerscore peers --company P02

  # Peers of every developer as CSV
  peerscore peers --status developer --output csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePeers(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot show peer groups", err)
		}
	},
}
