package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/schema"
	"github.com/olekukonko/tablewriter"
)

// peerDisplayLimit caps how many IDs are shown per table cell.
const peerDisplayLimit = 5

// errParquetUnsupported is returned for commands without a Parquet layout.
var errParquetUnsupported = errors.New("parquet output is only supported by the score command")

// WritePeerViews outputs peer groups, dispatching based on the output format configured.
func WritePeerViews(views []schema.PeerView, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, views)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePeersCSV(w, views, cfg)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePeersTable(w, views, cfg)
		}, "Wrote table")
	}
}

func formatTier(tier int) string {
	if tier == 0 {
		return "-"
	}
	return strconv.Itoa(tier)
}

// writePeersTable writes one row per company with its three peer groups.
func writePeersTable(w io.Writer, views []schema.PeerView, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)
	nameWidth := getMaxTableNameWidth(cfg)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Company", "Status", "Tier", "Scale", "Valuation", "Status Peers", "Valuation Peers", "Operational Peers"})

	data := make([][]string, 0, len(views))
	for _, v := range views {
		data = append(data, []string{
			schema.TruncateName(v.Name, nameWidth),
			string(v.Status),
			formatTier(v.PeerGroups.Tier),
			fmtFloat(v.PeerGroups.OperationalScale),
			fmtFloat(v.PeerGroups.BlendedValuation),
			strconv.Itoa(len(v.PeerGroups.Status)),
			schema.FormatPeers(v.PeerGroups.Valuation, peerDisplayLimit),
			schema.FormatPeers(v.PeerGroups.Operational, peerDisplayLimit),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing peer groups for %d companies\n", len(views))
	return err
}

// writePeersCSV writes peer groups with pipe-separated member lists.
func writePeersCSV(w io.Writer, views []schema.PeerView, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)
	header := []string{"company_id", "name", "status", "tier", "operational_scale", "blended_valuation", "status_peers", "valuation_peers", "operational_peers"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, v := range views {
			rec := []string{
				v.CompanyID,
				v.Name,
				string(v.Status),
				strconv.Itoa(v.PeerGroups.Tier),
				fmtFloat(v.PeerGroups.OperationalScale),
				fmtFloat(v.PeerGroups.BlendedValuation),
				strings.Join(v.PeerGroups.Status, "|"),
				strings.Join(v.PeerGroups.Valuation, "|"),
				strings.Join(v.PeerGroups.Operational, "|"),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
