package core

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/schema"
	"golang.org/x/sync/errgroup"
)

// scoreDeltaEpsilon is the smallest score change reported as movement.
const scoreDeltaEpsilon = 1e-9

// GetCompareResults scores one shared precompute under the base and compare
// peer-weight profiles concurrently and returns the per-company deltas.
func GetCompareResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.ComparisonResult, error) {
	engine, pre, err := preparePrecompute(ctx, cfg, mgr)
	if err != nil {
		return schema.ComparisonResult{}, err
	}

	var base, target []schema.ScoringResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		base = engine.ApplyWeights(pre, cfg.ScoringConfigs, cfg.PeerWeights)
		return gctx.Err()
	})
	g.Go(func() error {
		target = engine.ApplyWeights(pre, cfg.ScoringConfigs, cfg.ComparePeerWeights)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return schema.ComparisonResult{}, err
	}
	if err := checkScorable(base); err != nil {
		return schema.ComparisonResult{}, err
	}

	result := compareResults(base, target, cfg.ResultLimit)
	result.BaseWeights = cfg.PeerWeights
	result.TargetWeights = cfg.ComparePeerWeights
	return result, nil
}

// compareResults matches companies across two sorted result lists. Details
// are ordered by target rank and cut to limit, while the summary covers
// every company.
func compareResults(base, target []schema.ScoringResult, limit int) schema.ComparisonResult {
	baseRank := make(map[string]int, len(base))
	baseScore := make(map[string]float64, len(base))
	for i, r := range base {
		baseRank[r.CompanyID] = i + 1
		baseScore[r.CompanyID] = r.FinalScore
	}

	details := make([]schema.ComparisonDetail, 0, len(target))
	var summary schema.ComparisonSummary
	for i, r := range target {
		bRank, ok := baseRank[r.CompanyID]
		if !ok {
			continue
		}
		d := schema.ComparisonDetail{
			CompanyID:   r.CompanyID,
			Name:        r.Name,
			Status:      r.Status,
			BaseScore:   baseScore[r.CompanyID],
			TargetScore: r.FinalScore,
			BaseRank:    bRank,
			TargetRank:  i + 1,
		}
		d.DeltaScore = d.TargetScore - d.BaseScore
		d.DeltaRank = d.BaseRank - d.TargetRank

		switch {
		case d.DeltaRank > 0:
			summary.MovedUp++
		case d.DeltaRank < 0:
			summary.MovedDown++
		default:
			summary.Unchanged++
		}
		if math.Abs(d.DeltaScore) > scoreDeltaEpsilon {
			summary.NetScoreDelta += d.DeltaScore
			summary.MaxAbsDelta = max(summary.MaxAbsDelta, math.Abs(d.DeltaScore))
		}
		details = append(details, d)
	}

	slices.SortStableFunc(details, func(a, b schema.ComparisonDetail) int {
		return cmp.Compare(a.TargetRank, b.TargetRank)
	})

	return schema.ComparisonResult{Details: topN(details, limit), Summary: summary}
}
