package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/huangsam/peerscore/schema"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool used by PostgresSource.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// tableNamePattern allows an optional schema qualifier.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PostgresSource reads companies from a table with the columns
// id, name, ticker, status and data (jsonb).
type PostgresSource struct {
	pool  Pool
	table string
}

// NewPostgresSource connects to PostgreSQL and returns a source for the table.
func NewPostgresSource(ctx context.Context, dsn, table string) (*PostgresSource, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, eris.Errorf("source: invalid table name %q", table)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "source: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "source: ping")
	}
	return &PostgresSource{pool: pool, table: table}, nil
}

// NewPostgresSourceWithPool wraps an existing pool.
func NewPostgresSourceWithPool(pool Pool, table string) (*PostgresSource, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, eris.Errorf("source: invalid table name %q", table)
	}
	return &PostgresSource{pool: pool, table: table}, nil
}

func (s *PostgresSource) query(filtered bool) string {
	where := ""
	if filtered {
		where = " WHERE id = ANY($1)"
	}
	return fmt.Sprintf(
		"SELECT id, COALESCE(name, ''), COALESCE(ticker, ''), COALESCE(status, ''), COALESCE(data, '{}'::jsonb) FROM %s%s ORDER BY id",
		s.table, where)
}

// Load queries the companies matching ids, or all of them.
func (s *PostgresSource) Load(ctx context.Context, ids []string) ([]schema.Company, error) {
	var args []any
	if len(ids) > 0 {
		args = append(args, ids)
	}

	rows, err := s.pool.Query(ctx, s.query(len(ids) > 0), args...)
	if err != nil {
		return nil, eris.Wrapf(err, "source: query %s", s.table)
	}
	defer rows.Close()

	var companies []schema.Company
	for rows.Next() {
		var r companyRecord
		var data []byte
		if err := rows.Scan(&r.ID, &r.Name, &r.Ticker, &r.Status, &data); err != nil {
			return nil, eris.Wrap(err, "source: scan company")
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&r.Data); err != nil {
			return nil, eris.Wrapf(err, "source: decode data of %s", r.ID)
		}
		companies = append(companies, r.toCompany())
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "source: iterate rows")
	}
	return companies, nil
}

// Close closes the pool.
func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}
