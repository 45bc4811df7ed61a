// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/schema"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

var _ contract.OutputWriter = &OutWriter{} // Compile-time check

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteScores prints ranked scoring results using the configured output format.
func (ow *OutWriter) WriteScores(results []schema.EnrichedResult, total int, cfg *contract.Config, duration time.Duration) error {
	return WriteScoreResults(results, total, cfg, duration)
}

// WritePeers prints peer groups using the configured output format.
func (ow *OutWriter) WritePeers(views []schema.PeerView, cfg *contract.Config) error {
	return WritePeerViews(views, cfg)
}

// WriteMetrics prints metric definitions using the configured output format.
func (ow *OutWriter) WriteMetrics(defs []schema.MetricDefinition, cfg *contract.Config) error {
	return WriteMetricDefinitions(defs, cfg)
}

// WriteComparison prints a peer-weight comparison using the configured output format.
func (ow *OutWriter) WriteComparison(result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	return WriteComparisonResults(result, cfg, duration)
}
