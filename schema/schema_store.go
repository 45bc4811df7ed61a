package schema

import "time"

// RunRecord represents a row from the peerscore_runs table.
type RunRecord struct {
	RunID          int64
	RunUUID        string
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	TotalCompanies int32
	ConfigParams   *string
}

// ScoreRecord represents a row from the peerscore_company_scores table.
type ScoreRecord struct {
	RunID           int64
	CompanyID       string
	Name            string
	Status          string
	FinalScore      float64
	Label           string
	StatusRank      int32
	ValuationRank   int32
	OperationalRank int32
	MetricCount     int32
}
