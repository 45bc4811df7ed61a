package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/internal/parquet"
	"github.com/huangsam/peerscore/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteScoreResults outputs ranked results, dispatching based on the output format configured.
func WriteScoreResults(results []schema.EnrichedResult, total int, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, results)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoreCSV(w, results, cfg)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if err := parquet.WriteResultsParquet(parquet.ConvertResults(results), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoreTable(w, results, total, cfg, duration)
		}, "Wrote table")
	}
}

// writeScoreTable generates and writes the human-readable table.
func writeScoreTable(w io.Writer, results []schema.EnrichedResult, total int, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	nameWidth := getMaxTableNameWidth(cfg)

	table := tablewriter.NewWriter(w)
	headers := []string{"Rank", "Company", "Status", "Score", "Label"}
	if cfg.Detail {
		headers = append(headers, "Status #", "Valuation #", "Operational #")
	}
	if cfg.Explain {
		headers = append(headers, "Explain")
	}
	table.Header(headers)
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(results))
	for _, r := range results {
		row := []string{
			strconv.Itoa(r.Rank),
			schema.TruncateName(r.Name, nameWidth),
			string(r.Status),
			fmtFloat(r.FinalScore),
			labelFor(r.FinalScore, cfg.UseColors),
		}
		if cfg.Detail {
			row = append(row, formatRank(r.StatusRank), formatRank(r.ValuationRank), formatRank(r.OperationalRank))
		}
		if cfg.Explain {
			row = append(row, formatTopContributors(r.ScoringResult))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing top %d of %d companies (peer weights %s)\n", len(results), total, formatPeerWeights(cfg.PeerWeights)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Scored in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend)
	return err
}

// writeScoreCSV writes ranked results in CSV format.
func writeScoreCSV(w io.Writer, results []schema.EnrichedResult, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)
	header := []string{
		"rank", "company_id", "name", "ticker", "status", "score", "label", "total_weight",
		"status_rank", "status_total", "valuation_rank", "valuation_total", "operational_rank", "operational_total",
		"metric_count",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			rec := []string{
				strconv.Itoa(r.Rank),
				r.CompanyID,
				r.Name,
				r.Ticker,
				string(r.Status),
				fmtFloat(r.FinalScore),
				r.Label,
				fmtFloat(r.TotalWeight),
				strconv.Itoa(r.StatusRank.Rank),
				strconv.Itoa(r.StatusRank.Total),
				strconv.Itoa(r.ValuationRank.Rank),
				strconv.Itoa(r.ValuationRank.Total),
				strconv.Itoa(r.OperationalRank.Rank),
				strconv.Itoa(r.OperationalRank.Total),
				strconv.Itoa(len(r.Breakdown)),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
