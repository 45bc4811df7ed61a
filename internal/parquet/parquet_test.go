package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/peerscore/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readBack[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"run", new(Run), []string{"run_id", "run_uuid", "start_time", "end_time", "run_duration_ms", "total_companies", "config_params"}},
		{"company score", new(CompanyScore), []string{"run_id", "company_id", "name", "status", "final_score", "score_label", "status_rank", "valuation_rank", "operational_rank", "metric_count"}},
		{"result", new(Result), []string{"rank", "company_id", "ticker", "final_score", "status_total", "operational_total", "metric_count"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteRunsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.parquet")
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	duration := int32(1500)
	params := `{"peer_weights":{"status":40}}`

	records := []schema.RunRecord{
		{RunID: 1, RunUUID: "0b4e6f7e-1c1e-4b7a-9f2c-1a2b3c4d5e6f", StartTime: start, EndTime: &end, RunDurationMs: &duration, TotalCompanies: 12, ConfigParams: &params},
		{RunID: 2, RunUUID: "7d1c2b3a-0000-4000-8000-000000000002", StartTime: start.Add(time.Hour)},
	}
	require.NoError(t, WriteRunsParquet(ConvertRunRecords(records), path))

	rows := readBack[Run](t, path)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(1), rows[0].RunID)
	assert.Equal(t, records[0].RunUUID, rows[0].RunUUID)
	assert.Equal(t, int32(12), rows[0].TotalCompanies)
	require.NotNil(t, rows[0].EndTime)
	assert.WithinDuration(t, end, *rows[0].EndTime, time.Nanosecond)
	require.NotNil(t, rows[0].ConfigParams)
	assert.Equal(t, params, *rows[0].ConfigParams)

	assert.Nil(t, rows[1].EndTime)
	assert.Nil(t, rows[1].RunDurationMs)
	assert.Nil(t, rows[1].ConfigParams)
}

func TestWriteCompanyScoresParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.parquet")
	records := []schema.ScoreRecord{
		{RunID: 1, CompanyID: "p01", Name: "Alpha", Status: "producer", FinalScore: 81.25, Label: schema.LeaderLabel, StatusRank: 1, ValuationRank: 2, OperationalRank: 1, MetricCount: 9},
		{RunID: 1, CompanyID: "e01", Name: "Beta", Status: "explorer", FinalScore: 12.5, Label: schema.LaggardLabel, StatusRank: 4, ValuationRank: 3, OperationalRank: 2, MetricCount: 4},
	}
	require.NoError(t, WriteCompanyScoresParquet(ConvertScoreRecords(records), path))

	rows := readBack[CompanyScore](t, path)
	require.Len(t, rows, 2)
	for i, r := range rows {
		assert.Equal(t, records[i].CompanyID, r.CompanyID)
		assert.InDelta(t, records[i].FinalScore, r.FinalScore, 1e-9)
		assert.Equal(t, records[i].Label, r.Label)
		assert.Equal(t, records[i].MetricCount, r.MetricCount)
	}
}

func TestWriteResultsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.parquet")
	results := schema.EnrichResults([]schema.ScoringResult{
		{
			CompanyID: "p01", Name: "Alpha", Ticker: "ALP", Status: schema.ProducerStatus, FinalScore: 72,
			Breakdown:     []schema.MetricBreakdown{{Key: schema.KeyCash}, {Key: schema.KeyAISC}},
			StatusRank:    schema.RankTuple{Rank: 1, Total: 6},
			ValuationRank: schema.RankTuple{Rank: 2, Total: 6},
		},
		{CompanyID: "p02", Name: "Bravo", Status: schema.ProducerStatus, FinalScore: 30},
	})
	require.NoError(t, WriteResultsParquet(ConvertResults(results), path))

	rows := readBack[Result](t, path)
	require.Len(t, rows, 2)

	assert.Equal(t, int32(1), rows[0].Rank)
	require.NotNil(t, rows[0].Ticker)
	assert.Equal(t, "ALP", *rows[0].Ticker)
	assert.Equal(t, schema.StrongLabel, rows[0].Label)
	assert.Equal(t, int32(6), rows[0].StatusTotal)
	assert.Equal(t, int32(2), rows[0].MetricCount)

	assert.Equal(t, int32(2), rows[1].Rank)
	assert.Nil(t, rows[1].Ticker)
	assert.Equal(t, schema.LaggardLabel, rows[1].Label)
}

func TestWriteEmptyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteRunsParquet([]Run{}, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size(), "file should contain a schema even if empty")
}

func TestWriteInvalidPath(t *testing.T) {
	err := WriteCompanyScoresParquet([]CompanyScore{{RunID: 1}}, "/nonexistent/directory/output.parquet")
	require.Error(t, err)
}
