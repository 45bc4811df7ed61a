// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/peerscore/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var statusEnum = []string{"producer", "developer", "explorer", "royalty", "other"}

// NewMCPServer initializes and configures the peerscore MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Peerscore Scoring Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: score_companies ---
	s.AddTool(mcp.NewTool("score_companies",
		mcp.WithDescription("Rank companies by peer-relative score. Each result carries its final score, label, metric breakdown and status, valuation and operational ranks."),
		mcp.WithString("status", mcp.Description("Comma-separated statuses to keep (producer, developer, explorer, royalty, other).")),
		mcp.WithString("ids", mcp.Description("Comma-separated company IDs to load instead of the whole universe.")),
		mcp.WithString("peer_weights", mcp.Description("Peer-group weights such as 'status:40,valuation:30,operational:30'.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleScoreCompanies)

	// --- 2. Tool: get_peer_groups ---
	s.AddTool(mcp.NewTool("get_peer_groups",
		mcp.WithDescription("Show the status, valuation and operational peer groups of one company or of every company."),
		mcp.WithString("company", mcp.Description("Company ID, name or ticker. Omit for every company.")),
		mcp.WithString("status", mcp.Description("Comma-separated statuses to keep.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of companies returned.")),
	), h.handleGetPeerGroups)

	// --- 3. Tool: list_metrics ---
	s.AddTool(mcp.NewTool("list_metrics",
		mcp.WithDescription("List the configured metrics per status with theme, weight and direction."),
		mcp.WithString("status", mcp.Description("Only list metrics of this status."), mcp.Enum(statusEnum...)),
	), h.handleListMetrics)

	// --- 4. Tool: compare_weights ---
	s.AddTool(mcp.NewTool("compare_weights",
		mcp.WithDescription("Score the universe under two peer-group weight profiles and report score and rank deltas."),
		mcp.WithString("compare_peer_weights", mcp.Description("Target peer-group weights such as 'status:100'."), mcp.Required()),
		mcp.WithString("peer_weights", mcp.Description("Base peer-group weights. Defaults to the server configuration.")),
		mcp.WithString("status", mcp.Description("Comma-separated statuses to keep.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of companies returned.")),
	), h.handleCompareWeights)

	return s
}

// StartMCPServer starts the peerscore MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
