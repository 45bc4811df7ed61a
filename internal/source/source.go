// Package source loads company universes from files or PostgreSQL.
package source

import (
	"context"
	"slices"
	"strings"

	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/schema"
	"github.com/rotisserie/eris"
)

// ErrNoSource is returned when neither a file nor a DSN is configured.
var ErrNoSource = eris.New("no company source configured: use --source or --source-dsn")

// New returns the company source selected by the config.
func New(ctx context.Context, cfg *contract.Config) (contract.CompanySource, error) {
	switch {
	case cfg.SourceDSN != "":
		return NewPostgresSource(ctx, cfg.SourceDSN, cfg.SourceTable)
	case cfg.SourcePath != "":
		return NewFileSource(cfg.SourcePath), nil
	default:
		return nil, ErrNoSource
	}
}

// companyRecord is the serialized form of a company.
type companyRecord struct {
	ID     string         `json:"id" yaml:"id"`
	Name   string         `json:"name" yaml:"name"`
	Ticker string         `json:"ticker" yaml:"ticker"`
	Status string         `json:"status" yaml:"status"`
	Data   map[string]any `json:"data" yaml:"data"`
}

func (r companyRecord) toCompany() schema.Company {
	return schema.Company{
		ID:     strings.TrimSpace(r.ID),
		Name:   r.Name,
		Ticker: r.Ticker,
		Status: schema.NormalizeStatus(r.Status),
		Data:   r.Data,
	}
}

// filterByID keeps companies whose ID is listed, preserving their order.
func filterByID(companies []schema.Company, ids []string) []schema.Company {
	if len(ids) == 0 {
		return companies
	}
	out := make([]schema.Company, 0, len(ids))
	for _, c := range companies {
		if slices.Contains(ids, c.ID) {
			out = append(out, c)
		}
	}
	return out
}
