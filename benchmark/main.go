// Package main provides a performance benchmarking tool for the peerscore CLI.
// It generates synthetic company universes of increasing size, runs each command
// multiple times, treats the first successful cached run as cold and averages the
// rest as warm, and writes a CSV summary for performance analysis and documentation.
//
// Prerequisites:
// - peerscore binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the generated universes and SQLite cache
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/peerscore/schema"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Universe    string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Sizes       []int
	Commands    map[string][]string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Sizes:       []int{100, 1000, 5000},
		Commands: map[string][]string{
			"score":   {"score", "--limit", "25"},
			"compare": {"compare", "--compare-peer-weights", "status:100", "--limit", "25"},
		},
	}

	if _, err := exec.LookPath("peerscore"); err != nil {
		fmt.Printf("Prerequisites check failed: peerscore binary not found in PATH\n")
		os.Exit(1)
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		fmt.Printf("Failed to create work dir: %v\n", err)
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks executes every command against every generated universe.
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d universes, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Sizes), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, size := range config.Sizes {
		name := fmt.Sprintf("universe-%d", size)
		source := filepath.Join(config.WorkDir, name+".json")
		if err := writeUniverse(source, size); err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", name, err)
		}
		fmt.Printf("Benchmarking %s\n", name)

		for _, command := range []string{"score", "compare"} {
			results = append(results, runBenchmarkSuite(config, name, source, command))
		}
	}

	return results, nil
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command.
func runBenchmarkSuite(config BenchmarkConfig, universe, source, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, universe)

	cacheDB := filepath.Join(config.WorkDir, universe+"-cache.db")
	_ = os.Remove(cacheDB)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, source, command, cacheBackend, cacheDB, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Universe:    universe,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a peerscore command multiple times and returns the cold time and warm times.
func runBenchmark(config BenchmarkConfig, source, command, cacheBackend, cacheDB string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, config.Commands[command]...)
	args = append(args,
		"--source", source,
		"--workers", fmt.Sprint(config.Workers),
		"--cache-backend", cacheBackend,
		"--color", "no",
	)
	if cacheBackend == "sqlite" {
		args = append(args, "--cache-db-connect", cacheDB)
	}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("peerscore", args...)
		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion.
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)

	completionPhrase := "Scored in"
	if command == "compare" {
		completionPhrase = "Compared in"
	}

	return strings.Contains(outputStr, completionPhrase) && strings.Contains(outputStr, "workers")
}

// writeUniverse writes size synthetic companies spread across every status.
func writeUniverse(path string, size int) error {
	rng := rand.New(rand.NewPCG(42, uint64(size)))
	companies := make([]schema.Company, 0, size)
	for i := range size {
		status := schema.AllStatuses[i%len(schema.AllStatuses)]
		companies = append(companies, schema.Company{
			ID:     fmt.Sprintf("C%05d", i),
			Name:   fmt.Sprintf("Company %d", i),
			Status: status,
			Data:   syntheticData(rng, status),
		})
	}

	raw, err := json.Marshal(map[string]any{"companies": companies})
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func syntheticData(rng *rand.Rand, status schema.CompanyStatus) map[string]any {
	marketCap := 5e6 * (1 + rng.ExpFloat64()*40)
	data := map[string]any{
		"financials": map[string]any{
			"market_cap_value":       marketCap,
			"enterprise_value_value": marketCap * (0.8 + rng.Float64()*0.5),
			"cash_value":             marketCap * rng.Float64() * 0.2,
			"debt_value":             marketCap * rng.Float64() * 0.3,
		},
		"mineral_estimates": map[string]any{
			"resources_total_aueq_moz": rng.Float64() * 10,
			"reserves_total_aueq_moz":  rng.Float64() * 5,
		},
	}
	switch status {
	case schema.ProducerStatus, schema.RoyaltyStatus:
		fin := data["financials"].(map[string]any)
		fin["revenue_value"] = marketCap * (0.2 + rng.Float64()*0.6)
		fin["ebitda"] = marketCap * rng.Float64() * 0.25
		fin["free_cash_flow"] = marketCap * (rng.Float64() - 0.3) * 0.1
		data["production"] = map[string]any{
			"current_production_total_aueq_koz": 20 + rng.Float64()*800,
			"attributable_production_aueq_koz":  10 + rng.Float64()*200,
			"future_production_total_aueq_koz":  30 + rng.Float64()*900,
		}
		data["costs"] = map[string]any{"aisc_last_year": 900 + rng.Float64()*1400}
		data["royalty_portfolio"] = map[string]any{
			"producing_assets_count": 1 + rng.IntN(40),
			"total_assets_count":     5 + rng.IntN(200),
		}
	case schema.DeveloperStatus:
		data["production"] = map[string]any{
			"future_production_total_aueq_koz": 30 + rng.Float64()*400,
		}
	}
	return data
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("peerscore_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"universe", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Universe, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	printCommandSummary(results, "score", "Score:")
	printCommandSummary(results, "compare", "Compare:")
}

// printCommandSummary displays results for a specific command type.
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-14s: No-cache: %s, Cold: %s, Warm: %s\n", result.Universe, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
