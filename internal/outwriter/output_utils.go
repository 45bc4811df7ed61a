package outwriter

import (
	"cmp"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		_, _ = fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader creates a CSV writer, writes a header and then the data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// createFormatter returns a float formatter honoring the configured precision.
func createFormatter(precision int) func(float64) string {
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
}

// labelFor returns a colored or plain label for a score.
func labelFor(score float64, useColors bool) string {
	if useColors {
		return contract.GetColorLabel(score)
	}
	return schema.GetPlainLabel(score)
}

// formatRank renders a rank tuple as "rank/total".
func formatRank(r schema.RankTuple) string {
	return fmt.Sprintf("%d/%d", r.Rank, r.Total)
}

// formatPeerWeights renders weights in the same form the flags accept.
func formatPeerWeights(w schema.PeerGroupWeights) string {
	return fmt.Sprintf("status:%g,valuation:%g,operational:%g", w.Status, w.Valuation, w.Operational)
}

const (
	contributionMinimum = 0.5
	topNMetrics         = 3
)

// formatTopContributors lists the metrics contributing most to the final score.
func formatTopContributors(r schema.ScoringResult) string {
	var top []schema.MetricBreakdown
	for _, b := range r.Breakdown {
		if b.Contribution >= contributionMinimum {
			top = append(top, b)
		}
	}
	if len(top) == 0 {
		return "Not applicable"
	}

	slices.SortStableFunc(top, func(a, b schema.MetricBreakdown) int {
		return cmp.Compare(b.Contribution, a.Contribution)
	})

	parts := make([]string, 0, topNMetrics)
	for _, b := range top[:min(len(top), topNMetrics)] {
		parts = append(parts, b.Label)
	}
	return strings.Join(parts, " > ")
}
