package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteMetricDefinitions outputs the metric configuration, dispatching based on the output format configured.
func WriteMetricDefinitions(defs []schema.MetricDefinition, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, defs)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsCSV(w, defs)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsTable(w, defs)
		}, "Wrote table")
	}
}

func direction(higherIsBetter bool) string {
	if higherIsBetter {
		return "↑ higher"
	}
	return "↓ lower"
}

// writeMetricsTable renders metrics grouped by status, with a weight total per status.
func writeMetricsTable(w io.Writer, defs []schema.MetricDefinition) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Status", "Theme", "Metric", "Key", "Better", "Weight", "Scored"})

	data := make([][]string, 0, len(defs))
	totals := map[schema.CompanyStatus]float64{}
	var order []schema.CompanyStatus
	for _, d := range defs {
		if !slices.Contains(order, d.Status) {
			order = append(order, d.Status)
		}
		scored := "no"
		if d.Scored {
			scored = "yes"
			totals[d.Status] += d.Weight
		}
		data = append(data, []string{
			string(d.Status),
			d.Theme,
			d.Label,
			d.Key,
			direction(d.HigherIsBetter),
			strconv.FormatFloat(d.Weight, 'f', -1, 64),
			scored,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	for _, status := range order {
		if _, err := fmt.Fprintf(w, "%s: total scored weight %g\n", status, totals[status]); err != nil {
			return err
		}
	}
	return nil
}

// writeMetricsCSV writes one row per configured metric.
func writeMetricsCSV(w io.Writer, defs []schema.MetricDefinition) error {
	header := []string{"status", "theme", "key", "label", "higher_is_better", "weight", "scored"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, d := range defs {
			rec := []string{
				string(d.Status),
				d.Theme,
				d.Key,
				d.Label,
				strconv.FormatBool(d.HigherIsBetter),
				strconv.FormatFloat(d.Weight, 'f', -1, 64),
				strconv.FormatBool(d.Scored),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
