// Package core has the command orchestration for scoring, peer groups,
// metric definitions, comparisons and interactive tuning.
package core

import (
	"context"
	"os"
	"time"

	"github.com/huangsam/peerscore/internal/contract"
)

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteScore ranks the company universe and writes the results.
// It serves as the main entry point for the 'score' command.
func ExecuteScore(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	results, total, err := GetScoreResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return Writer.WriteScores(results, total, cfg, time.Since(start))
}

// ExecutePeers writes the peer groups of one company or of every company.
func ExecutePeers(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	views, err := GetPeerViews(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return Writer.WritePeers(views, cfg)
}

// ExecuteMetrics displays the metric configuration per status.
// This is a static display that does not load any companies.
func ExecuteMetrics(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	return Writer.WriteMetrics(GetMetricDefinitions(cfg), cfg)
}

// ExecuteCompare scores the universe under two peer-weight profiles and
// writes the score and rank deltas.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := GetCompareResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return Writer.WriteComparison(result, cfg, time.Since(start))
}

// ExecuteTune starts an interactive weight-tuning session on stdin and stdout.
func ExecuteTune(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return RunTune(ctx, cfg, mgr, os.Stdin, os.Stdout)
}
