package cmd

import (
	"github.com/huangsam/peerscore/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Peerscore MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents score companies,
inspect peer groups, list metrics and compare weight profiles.

The flags and config file set the defaults that every tool call starts from.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
