//go:build database

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/peerscore/schema"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gopkg.in/yaml.v3"
)

// startPostgres starts a PostgreSQL container and returns a key=value connection string.
func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
}

// runStoreLifecycle clears, scores into and inspects both stores.
func runStoreLifecycle(t *testing.T, env map[string]string) {
	t.Helper()

	_, err := runPeerscore(t, cliRun{args: []string{"cache", "clear"}, env: env})
	require.NoError(t, err)
	_, err = runPeerscore(t, cliRun{args: []string{"history", "clear"}, env: env})
	require.NoError(t, err)

	// The second run is served from the precompute cache
	for range 2 {
		_, err = runPeerscore(t, cliRun{args: []string{"score", "--limit", "5"}, env: env})
		require.NoError(t, err)
	}

	out, err := runPeerscore(t, cliRun{args: []string{"cache", "status"}, env: env})
	require.NoError(t, err)
	assert.Contains(t, out, "Connected: true")
	assert.Contains(t, out, "Total Entries: 1")

	out, err = runPeerscore(t, cliRun{args: []string{"history", "status"}, env: env})
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 2")

	exportBase := filepath.Join(t.TempDir(), "history")
	_, err = runPeerscore(t, cliRun{args: []string{"history", "export", "--output-file", exportBase}, env: env})
	require.NoError(t, err)
	assert.FileExists(t, exportBase+".scores.parquet")
}

// TestPeerscoreWithMySQL tests the peerscore CLI with MySQL cache and history stores.
func TestPeerscoreWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "peerscore",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/peerscore", host, port.Port())

	runStoreLifecycle(t, map[string]string{
		"PEERSCORE_CACHE_BACKEND":      "mysql",
		"PEERSCORE_CACHE_DB_CONNECT":   connStr,
		"PEERSCORE_HISTORY_BACKEND":    "mysql",
		"PEERSCORE_HISTORY_DB_CONNECT": connStr,
	})
}

// TestPeerscoreWithPostgres tests the peerscore CLI with PostgreSQL cache and history stores.
func TestPeerscoreWithPostgres(t *testing.T) {
	ctx := context.Background()
	connStr := startPostgres(ctx, t)

	runStoreLifecycle(t, map[string]string{
		"PEERSCORE_CACHE_BACKEND":      "postgresql",
		"PEERSCORE_CACHE_DB_CONNECT":   connStr,
		"PEERSCORE_HISTORY_BACKEND":    "postgresql",
		"PEERSCORE_HISTORY_DB_CONNECT": connStr,
	})
}

// TestPostgresCompanySource seeds a companies table from the sample file and
// checks that scoring from PostgreSQL matches scoring from the file.
func TestPostgresCompanySource(t *testing.T) {
	ctx := context.Background()
	connStr := startPostgres(ctx, t)
	seedCompanies(ctx, t, connStr)

	fromFile, err := runPeerscore(t, cliRun{args: []string{"score", "--output", "json", "--limit", "100"}})
	require.NoError(t, err)

	fromDB, err := runPeerscore(t, cliRun{
		args: []string{"score", "--output", "json", "--limit", "100", "--source-dsn", connStr},
		env:  map[string]string{"PEERSCORE_SOURCE": ""},
	})
	require.NoError(t, err)

	var fileResults, dbResults []schema.EnrichedResult
	require.NoError(t, json.Unmarshal([]byte(fromFile), &fileResults))
	require.NoError(t, json.Unmarshal([]byte(fromDB), &dbResults))
	require.Len(t, dbResults, len(fileResults))
	for i := range fileResults {
		assert.Equal(t, fileResults[i].CompanyID, dbResults[i].CompanyID)
		assert.InDelta(t, fileResults[i].FinalScore, dbResults[i].FinalScore, 1e-9)
	}

	// Loading a subset by ID only scores those companies
	out, err := runPeerscore(t, cliRun{
		args: []string{"score", "--output", "json", "--source-dsn", connStr, "--ids", "P01,P02,D01"},
		env:  map[string]string{"PEERSCORE_SOURCE": ""},
	})
	require.NoError(t, err)
	var subset []schema.EnrichedResult
	require.NoError(t, json.Unmarshal([]byte(out), &subset))
	require.NotEmpty(t, subset)
	for _, r := range subset {
		assert.Contains(t, []string{"P01", "P02", "D01"}, r.CompanyID)
	}
}

func seedCompanies(ctx context.Context, t *testing.T, connStr string) {
	t.Helper()

	raw, err := os.ReadFile(filepath.Join("..", sampleSource))
	require.NoError(t, err)
	var doc struct {
		Companies []schema.Company `yaml:"companies"`
	}
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	require.NotEmpty(t, doc.Companies)

	conn, err := pgx.Connect(ctx, connStr)
	require.NoError(t, err)
	defer func() { _ = conn.Close(ctx) }()

	_, err = conn.Exec(ctx, `CREATE TABLE companies (
		id TEXT PRIMARY KEY,
		name TEXT,
		ticker TEXT,
		status TEXT,
		data JSONB
	)`)
	require.NoError(t, err)

	for _, c := range doc.Companies {
		data, err := json.Marshal(c.Data)
		require.NoError(t, err)
		_, err = conn.Exec(ctx,
			"INSERT INTO companies (id, name, ticker, status, data) VALUES ($1, $2, $3, $4, $5)",
			c.ID, c.Name, c.Ticker, string(c.Status), data)
		require.NoError(t, err)
	}
}
