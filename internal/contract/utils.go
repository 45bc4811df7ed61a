package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/peerscore/schema"
	"go.uber.org/zap"
)

// Color variables for console output.
var (
	LeaderColor  = color.New(color.FgGreen, color.Bold) // LeaderColor marks clear outperformers.
	StrongColor  = color.New(color.FgCyan, color.Bold)  // StrongColor marks above-average companies.
	AverageColor = color.New(color.FgYellow)            // AverageColor marks the middle of the pack.
	LaggardColor = color.New(color.FgRed)               // LaggardColor marks underperformers.
)

// GetColorLabel returns a colored text label for console output (table).
// It uses schema.GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(score float64) string {
	text := schema.GetPlainLabel(score)

	switch text {
	case schema.LeaderLabel:
		return LeaderColor.Sprint(text)
	case schema.StrongLabel:
		return StrongColor.Sprint(text)
	case schema.AverageLabel:
		return AverageColor.Sprint(text)
	default: // "Laggard"
		return LaggardColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ParseList splits a comma-separated list, trimming blanks and dropping duplicates.
func ParseList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		p := strings.TrimSpace(part)
		if p == "" || slices.Contains(out, p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ParseStatusList parses a comma-separated list of company statuses.
func ParseStatusList(s string) ([]schema.CompanyStatus, error) {
	var out []schema.CompanyStatus
	for _, p := range ParseList(strings.ToLower(s)) {
		status := schema.CompanyStatus(p)
		if _, ok := schema.ValidStatuses[status]; !ok {
			return nil, fmt.Errorf("invalid status '%s'. must be producer, developer, explorer, royalty, other", p)
		}
		out = append(out, status)
	}
	return out, nil
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	zap.L().Fatal(msg, zap.Error(err))
}

// LogWarn logs a warning message.
func LogWarn(msg string, err error) {
	zap.L().Warn(msg, zap.Error(err))
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".peerscore_cache.db"
	}
	return filepath.Join(homeDir, ".peerscore_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for scoring history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".peerscore_history.db"
	}
	return filepath.Join(homeDir, ".peerscore_history.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
