package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/peerscore/core/algo"
	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/internal/source"
	"github.com/huangsam/peerscore/schema"
	"go.uber.org/zap"
)

// ErrNoScorableCompanies is returned when filtering leaves nothing to score.
var ErrNoScorableCompanies = errors.New("no scorable companies after filtering")

// openSource is swapped in tests.
var openSource = source.New

// newEngine builds the scoring engine for one command run.
func newEngine(cfg *contract.Config) *algo.Engine {
	return algo.NewEngine(
		algo.WithLogger(zap.L().Named("engine")),
		algo.WithWorkers(cfg.Workers),
	)
}

// loadCompanies reads the company universe from the configured source.
func loadCompanies(ctx context.Context, cfg *contract.Config) ([]schema.Company, error) {
	src, err := openSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	companies, err := src.Load(ctx, cfg.CompanyIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load companies: %w", err)
	}
	zap.L().Debug("Loaded companies", zap.Int("count", len(companies)))
	return companies, nil
}

// preparePrecompute performs the common load, precompute and filter steps.
func preparePrecompute(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*algo.Engine, schema.Precomputed, error) {
	companies, err := loadCompanies(ctx, cfg)
	if err != nil {
		return nil, schema.Precomputed{}, err
	}

	engine := newEngine(cfg)
	pre := cachedPrecompute(engine, companies, cfg, mgr)
	if len(cfg.Statuses) > 0 {
		pre = algo.FilterPrecomputed(pre, algo.ByStatus(cfg.Statuses...))
	}
	if pre.Empty() {
		return nil, schema.Precomputed{}, fmt.Errorf("%w: %d companies loaded, at least %d with scorable metrics are required",
			ErrNoScorableCompanies, len(companies), schema.MinPeerGroupSize)
	}
	return engine, pre, nil
}

// checkScorable reports ErrNoScorableCompanies when every metric weight is zero.
func checkScorable(results []schema.ScoringResult) error {
	for _, r := range results {
		if r.TotalWeight > 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: every metric weight is zero", ErrNoScorableCompanies)
}

// historyConfigParams describes a run for the history store. The source DSN is left out.
func historyConfigParams(cfg *contract.Config) map[string]any {
	statuses := make([]string, len(cfg.Statuses))
	for i, s := range cfg.Statuses {
		statuses[i] = string(s)
	}
	src := cfg.SourcePath
	if cfg.SourceDSN != "" {
		src = "postgres:" + cfg.SourceTable
	}
	return map[string]any{
		"source":       src,
		"statuses":     strings.Join(statuses, ","),
		"company_ids":  len(cfg.CompanyIDs),
		"peer_weights": cfg.PeerWeights,
		"result_limit": cfg.ResultLimit,
		"workers":      cfg.Workers,
	}
}

// recordHistory stores one run and every scored company. Failures are logged
// and never fail the command.
func recordHistory(cfg *contract.Config, mgr contract.CacheManager, start time.Time, results []schema.EnrichedResult) {
	if mgr == nil {
		return
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return
	}

	runID, err := store.BeginRun(start, historyConfigParams(cfg))
	if err != nil {
		contract.LogWarn("History tracking initialization failed", err)
		return
	}
	if runID == 0 {
		return // Disabled backend
	}

	for _, r := range results {
		if err := store.RecordScore(runID, r); err != nil {
			contract.LogWarn("Failed to record company score", err)
		}
	}
	if err := store.EndRun(runID, time.Now(), len(results)); err != nil {
		contract.LogWarn("Failed to finalize history tracking", err)
	}
}
