package core

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/peerscore/core/algo"
	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/schema"
)

// GetScoreResults scores the universe and returns the top results along with
// the number of companies scored. Every scored company is recorded in history.
func GetScoreResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.EnrichedResult, int, error) {
	start := time.Now()
	engine, pre, err := preparePrecompute(ctx, cfg, mgr)
	if err != nil {
		return nil, 0, err
	}

	results := engine.ApplyWeights(pre, cfg.ScoringConfigs, cfg.PeerWeights)
	if err := checkScorable(results); err != nil {
		return nil, 0, err
	}

	enriched := schema.EnrichResults(results)
	recordHistory(cfg, mgr, start, enriched)

	return topN(enriched, cfg.ResultLimit), len(enriched), nil
}

// GetPeerViews returns peer groups built over the scorable companies. When
// cfg.Company is set only that company is returned.
func GetPeerViews(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.PeerView, error) {
	_, pre, err := preparePrecompute(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}

	views := make([]schema.PeerView, 0, len(pre.Results))
	for _, r := range pre.Results {
		views = append(views, schema.PeerView{
			CompanyID:  r.Company.ID,
			Name:       r.Company.Name,
			Status:     algo.StatusOf(r.Company),
			PeerGroups: pre.RankingGroups[r.Company.ID],
		})
	}

	if cfg.Company != "" {
		for _, v := range views {
			if matchesCompany(v, pre, cfg.Company) {
				return []schema.PeerView{v}, nil
			}
		}
		return nil, fmt.Errorf("company '%s' is not among the scorable companies", cfg.Company)
	}

	slices.SortStableFunc(views, func(a, b schema.PeerView) int {
		return cmp.Or(
			cmp.Compare(slices.Index(schema.AllStatuses, a.Status), slices.Index(schema.AllStatuses, b.Status)),
			cmp.Compare(a.CompanyID, b.CompanyID),
		)
	})
	return topN(views, cfg.ResultLimit), nil
}

// matchesCompany matches an ID exactly, or a name or ticker ignoring case.
func matchesCompany(v schema.PeerView, pre schema.Precomputed, query string) bool {
	if v.CompanyID == query || strings.EqualFold(v.Name, query) {
		return true
	}
	for _, r := range pre.Results {
		if r.Company.ID == v.CompanyID {
			return r.Company.Ticker != "" && strings.EqualFold(r.Company.Ticker, query)
		}
	}
	return false
}

// GetMetricDefinitions lists every configured metric per status, in status
// display order and then by theme and key.
func GetMetricDefinitions(cfg *contract.Config) []schema.MetricDefinition {
	var defs []schema.MetricDefinition
	for _, status := range schema.AllStatuses {
		if len(cfg.Statuses) > 0 && !slices.Contains(cfg.Statuses, status) {
			continue
		}
		statusCfg, resolved := algo.ResolveStatusConfig(cfg.ScoringConfigs, status)
		for _, theme := range statusCfg.SortedThemes() {
			weights := statusCfg[theme]
			for _, key := range weights.SortedKeys() {
				rationale, scored := algo.ResolveRationale(cfg.Rationales, resolved, key)
				label := rationale.Label
				if label == "" {
					label = schema.HumanizeKey(key)
				}
				defs = append(defs, schema.MetricDefinition{
					Status:         status,
					Theme:          theme,
					Key:            key,
					Label:          label,
					HigherIsBetter: rationale.HigherIsBetter,
					Weight:         weights[key],
					Scored:         scored,
				})
			}
		}
	}
	return defs
}
