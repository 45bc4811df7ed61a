package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/internal/parquet"
)

// ExportHistory writes every run and company score to two Parquet files
// named <outputFile>.runs.parquet and <outputFile>.scores.parquet.
func ExportHistory(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no scoring history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	scores, err := store.GetAllScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve company scores: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	scoresFile := outputFile + ".scores.parquet"
	if err := parquet.WriteCompanyScoresParquet(parquet.ConvertScoreRecords(scores), scoresFile); err != nil {
		return fmt.Errorf("failed to write company scores: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d company scores to: %s\n", len(scores), scoresFile)

	return nil
}
