// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/peerscore/schema"
)

// CompanySource supplies the company universe to score.
// This allows the core scoring flow to be tested without files or databases.
type CompanySource interface {
	// Load returns the companies with the given IDs, or every company when ids is empty.
	Load(ctx context.Context, ids []string) ([]schema.Company, error)

	// Close releases any underlying connection.
	Close() error
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetCacheStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking scoring runs and storing per-company results.
type HistoryStore interface {
	// BeginRun creates a new scoring run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalCompanies int) error

	// RecordScore stores the final result of one company
	RecordScore(runID int64, result schema.EnrichedResult) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllScores returns every recorded company score ordered by run and company
	GetAllScores() ([]schema.ScoreRecord, error)

	// Close closes the underlying connection
	Close() error
}

// OutputWriter renders command results in the configured output format.
type OutputWriter interface {
	WriteScores(results []schema.EnrichedResult, total int, cfg *Config, duration time.Duration) error
	WritePeers(views []schema.PeerView, cfg *Config) error
	WriteMetrics(defs []schema.MetricDefinition, cfg *Config) error
	WriteComparison(result schema.ComparisonResult, cfg *Config, duration time.Duration) error
}
