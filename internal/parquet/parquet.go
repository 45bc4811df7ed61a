// Package parquet provides data structures and functions for exporting peerscore
// results and scoring history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/peerscore/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single scoring run with metadata.
// This struct maps to the peerscore_runs database table.
type Run struct {
	// RunID is the store-assigned identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is stable across backends and exports
	RunUUID string `parquet:"run_uuid,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalCompanies is the number of companies scored in this run
	TotalCompanies int32 `parquet:"total_companies,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// CompanyScore represents the final result of one company in one run.
// This struct maps to the peerscore_company_scores database table.
type CompanyScore struct {
	RunID           int64   `parquet:"run_id,snappy"`
	CompanyID       string  `parquet:"company_id,snappy"`
	Name            string  `parquet:"name,snappy"`
	Status          string  `parquet:"status,snappy"`
	FinalScore      float64 `parquet:"final_score,snappy"`
	Label           string  `parquet:"score_label,snappy"`
	StatusRank      int32   `parquet:"status_rank,snappy"`
	ValuationRank   int32   `parquet:"valuation_rank,snappy"`
	OperationalRank int32   `parquet:"operational_rank,snappy"`
	MetricCount     int32   `parquet:"metric_count,snappy"`
}

// Result is one row of `score --output parquet`.
type Result struct {
	Rank             int32   `parquet:"rank,snappy"`
	CompanyID        string  `parquet:"company_id,snappy"`
	Name             string  `parquet:"name,snappy"`
	Ticker           *string `parquet:"ticker,optional,snappy"`
	Status           string  `parquet:"status,snappy"`
	FinalScore       float64 `parquet:"final_score,snappy"`
	Label            string  `parquet:"score_label,snappy"`
	TotalWeight      float64 `parquet:"total_weight,snappy"`
	StatusRank       int32   `parquet:"status_rank,snappy"`
	StatusTotal      int32   `parquet:"status_total,snappy"`
	ValuationRank    int32   `parquet:"valuation_rank,snappy"`
	ValuationTotal   int32   `parquet:"valuation_total,snappy"`
	OperationalRank  int32   `parquet:"operational_rank,snappy"`
	OperationalTotal int32   `parquet:"operational_total,snappy"`
	MetricCount      int32   `parquet:"metric_count,snappy"`
}

// write encodes rows of any struct type to a Parquet file.
// The schema is derived from the struct tags of T.
func write[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteRunsParquet writes scoring runs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return write(data, outputPath)
}

// WriteCompanyScoresParquet writes per-company history rows to a Parquet file.
func WriteCompanyScoresParquet(data []CompanyScore, outputPath string) error {
	return write(data, outputPath)
}

// WriteResultsParquet writes ranked results to a Parquet file.
func WriteResultsParquet(data []Result, outputPath string) error {
	return write(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:          record.RunID,
			RunUUID:        record.RunUUID,
			StartTime:      record.StartTime,
			EndTime:        record.EndTime,
			RunDurationMs:  record.RunDurationMs,
			TotalCompanies: record.TotalCompanies,
			ConfigParams:   record.ConfigParams,
		}
	}
	return result
}

// ConvertScoreRecords converts schema.ScoreRecord to CompanyScore for Parquet export.
func ConvertScoreRecords(records []schema.ScoreRecord) []CompanyScore {
	result := make([]CompanyScore, len(records))
	for i, record := range records {
		result[i] = CompanyScore{
			RunID:           record.RunID,
			CompanyID:       record.CompanyID,
			Name:            record.Name,
			Status:          record.Status,
			FinalScore:      record.FinalScore,
			Label:           record.Label,
			StatusRank:      record.StatusRank,
			ValuationRank:   record.ValuationRank,
			OperationalRank: record.OperationalRank,
			MetricCount:     record.MetricCount,
		}
	}
	return result
}

// ConvertResults converts ranked results to Result rows.
func ConvertResults(results []schema.EnrichedResult) []Result {
	rows := make([]Result, len(results))
	for i, r := range results {
		var ticker *string
		if r.Ticker != "" {
			t := r.Ticker
			ticker = &t
		}
		rows[i] = Result{
			Rank:             int32(r.Rank),
			CompanyID:        r.CompanyID,
			Name:             r.Name,
			Ticker:           ticker,
			Status:           string(r.Status),
			FinalScore:       r.FinalScore,
			Label:            r.Label,
			TotalWeight:      r.TotalWeight,
			StatusRank:       int32(r.StatusRank.Rank),
			StatusTotal:      int32(r.StatusRank.Total),
			ValuationRank:    int32(r.ValuationRank.Rank),
			ValuationTotal:   int32(r.ValuationRank.Total),
			OperationalRank:  int32(r.OperationalRank.Rank),
			OperationalTotal: int32(r.OperationalRank.Total),
			MetricCount:      int32(len(r.Breakdown)),
		}
	}
	return rows
}
