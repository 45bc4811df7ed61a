package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteComparisonResults outputs a peer-weight comparison, dispatching based on the output format configured.
func WriteComparisonResults(result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComparisonCSV(w, result, cfg)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComparisonTable(w, result, cfg, duration)
		}, "Wrote table")
	}
}

// formatRankDelta renders a rank movement where positive means moved up.
func formatRankDelta(delta int) string {
	switch {
	case delta > 0:
		return fmt.Sprintf("▲%d", delta)
	case delta < 0:
		return fmt.Sprintf("▼%d", -delta)
	default:
		return "="
	}
}

// writeComparisonTable writes base and target scores side by side.
func writeComparisonTable(w io.Writer, result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	nameWidth := getMaxTableNameWidth(cfg)

	table := tablewriter.NewWriter(w)

	table.Header([]string{"Rank", "Company", "Status", "Base", "Target", "Delta", "Move"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	red, green, yellow := fmt.Sprint, fmt.Sprint, fmt.Sprint
	if cfg.UseColors {
		red = color.New(color.FgRed).SprintFunc()
		green = color.New(color.FgGreen).SprintFunc()
		yellow = color.New(color.FgYellow).SprintFunc()
	}

	data := make([][]string, 0, len(result.Details))
	for _, d := range result.Details {
		var deltaStr string
		switch {
		case d.DeltaScore > 0:
			deltaStr = green(fmt.Sprintf("+%.*f ▲", cfg.Precision, d.DeltaScore))
		case d.DeltaScore < 0:
			deltaStr = red(fmt.Sprintf("%.*f ▼", cfg.Precision, d.DeltaScore))
		default:
			deltaStr = yellow(fmt.Sprintf("%.*f", cfg.Precision, 0.0))
		}
		data = append(data, []string{
			strconv.Itoa(d.TargetRank),
			schema.TruncateName(d.Name, nameWidth),
			string(d.Status),
			fmt.Sprintf("%.*f", cfg.Precision, d.BaseScore),
			fmt.Sprintf("%.*f", cfg.Precision, d.TargetScore),
			deltaStr,
			formatRankDelta(d.DeltaRank),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	s := result.Summary
	lines := []string{
		fmt.Sprintf("Base weights: %s, Target weights: %s", formatPeerWeights(result.BaseWeights), formatPeerWeights(result.TargetWeights)),
		fmt.Sprintf("Moved up: %d, Moved down: %d, Unchanged: %d", s.MovedUp, s.MovedDown, s.Unchanged),
		fmt.Sprintf("Net score delta: %.*f, Max absolute delta: %.*f", cfg.Precision, s.NetScoreDelta, cfg.Precision, s.MaxAbsDelta),
		fmt.Sprintf("Compared in %v with %d workers. Cache backend: %s", duration, cfg.Workers, cfg.CacheBackend),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// writeComparisonCSV writes one row per company with base, target and delta values.
func writeComparisonCSV(w io.Writer, result schema.ComparisonResult, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)
	header := []string{"company_id", "name", "status", "base_score", "target_score", "delta_score", "base_rank", "target_rank", "delta_rank"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, d := range result.Details {
			rec := []string{
				d.CompanyID,
				d.Name,
				string(d.Status),
				fmtFloat(d.BaseScore),
				fmtFloat(d.TargetScore),
				fmtFloat(d.DeltaScore),
				strconv.Itoa(d.BaseRank),
				strconv.Itoa(d.TargetRank),
				strconv.Itoa(d.DeltaRank),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
