package iocache

import (
	"bytes"
	"testing"
	"time"

	"github.com/huangsam/peerscore/schema"
	"github.com/stretchr/testify/assert"
)

func TestPrintCacheStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "sqlite", Connected: true, TotalEntries: 2, LastEntryTime: ts, OldestEntryTime: ts, TableSizeBytes: 4096})
	assert.Contains(t, buf.String(), "Total Entries: 2")
	assert.Contains(t, buf.String(), "Last Entry: 2026-01-02 03:04:05")
	assert.Contains(t, buf.String(), "Table Size: 4096 bytes")
}

func TestPrintHistoryStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintHistoryStatus(&buf, schema.HistoryStatus{
		Backend: "sqlite", Connected: true, TotalRuns: 3, LastRunID: 3, TotalCompanies: 30,
		TableSizes: map[string]int64{companyScoresTable: 30, runsTable: 3},
	})
	out := buf.String()
	assert.Contains(t, out, "Total Runs: 3")
	assert.Contains(t, out, "Total Companies Scored: 30")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(companyScoresTable)), bytes.Index(buf.Bytes(), []byte(runsTable+":")))
}
