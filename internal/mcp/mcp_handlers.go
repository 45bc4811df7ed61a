package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/peerscore/core"
	"github.com/huangsam/peerscore/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// applyFilters copies the shared status and limit arguments onto cfg.
func applyFilters(cfg *contract.Config, request mcp.CallToolRequest) error {
	if s := request.GetString("status", ""); s != "" {
		statuses, err := contract.ParseStatusList(s)
		if err != nil {
			return err
		}
		cfg.Statuses = statuses
	}
	if l := request.GetInt("limit", 0); l != 0 {
		if l < 0 || l > contract.MaxResultLimit {
			return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", contract.MaxResultLimit, l)
		}
		cfg.ResultLimit = l
	}
	return nil
}

// applyPeerWeights parses a peer-weight argument into dst when it is present.
func applyPeerWeights(request mcp.CallToolRequest, name string, dst *contract.Config, target bool) error {
	raw := strings.TrimSpace(request.GetString(name, ""))
	if raw == "" {
		return nil
	}
	pw, err := contract.ParsePeerWeights(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if target {
		dst.ComparePeerWeights = pw
	} else {
		dst.PeerWeights = pw
	}
	return nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleScoreCompanies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyFilters(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if err := applyPeerWeights(request, "peer_weights", cfg, false); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if ids := request.GetString("ids", ""); ids != "" {
		cfg.CompanyIDs = contract.ParseList(ids)
	}

	results, total, err := core.GetScoreResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"total_companies": total,
		"peer_weights":    cfg.PeerWeights,
		"results":         results,
	})
}

func (h *toolHandler) handleGetPeerGroups(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyFilters(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	cfg.Company = strings.TrimSpace(request.GetString("company", ""))

	views, err := core.GetPeerViews(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("peer lookup failed: %v", err)), nil
	}
	return jsonResult(views)
}

func (h *toolHandler) handleListMetrics(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.Statuses = nil
	if err := applyFilters(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	return jsonResult(core.GetMetricDefinitions(cfg))
}

func (h *toolHandler) handleCompareWeights(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if strings.TrimSpace(request.GetString("compare_peer_weights", "")) == "" {
		return mcp.NewToolResultError("invalid parameters: compare_peer_weights is required"), nil
	}
	if err := applyFilters(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if err := applyPeerWeights(request, "peer_weights", cfg, false); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if err := applyPeerWeights(request, "compare_peer_weights", cfg, true); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	result, err := core.GetCompareResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}
	return jsonResult(result)
}
