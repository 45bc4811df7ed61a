package contract

import (
	"fmt"
	"maps"
	"math"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/peerscore/schema"
	"go.uber.org/zap"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 1
	DefaultSourceTable = "companies"
	DefaultDebounce    = 300 * time.Millisecond
	DefaultPeerWeights = "status:40,valuation:30,operational:30"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for scoring.
// This struct is the "final, validated" config.
type Config struct {
	SourcePath  string   // JSON or YAML company file
	SourceDSN   string   // PostgreSQL source, used instead of SourcePath
	SourceTable string   // Table read by the PostgreSQL source
	CompanyIDs  []string // Optional ID filter applied at load time
	Statuses    []schema.CompanyStatus
	Company     string // Single company focus for peers and tune

	PeerWeights        schema.PeerGroupWeights
	ComparePeerWeights schema.PeerGroupWeights

	// ScoringConfigs is defaults + config-file weights + --metric-weights overrides
	ScoringConfigs schema.ScoringConfigs
	Rationales     schema.RationaleTable

	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	Detail      bool
	Explain     bool
	UseColors   bool
	Debounce    time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Source           string `mapstructure:"source"`
	SourceDSN        string `mapstructure:"source-dsn"`
	SourceTable      string `mapstructure:"source-table"`
	IDs              string `mapstructure:"ids"`
	Status           string `mapstructure:"status"`
	PeerWeights      string `mapstructure:"peer-weights"`
	MetricWeights    string `mapstructure:"metric-weights"`
	OutputFile       string `mapstructure:"output-file"`
	Limit            int    `mapstructure:"limit"`
	Workers          int    `mapstructure:"workers"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from scoreCmd.Flags() ---
	Explain bool `mapstructure:"explain"`
	Detail  bool `mapstructure:"detail"`

	// --- Fields from peersCmd.Flags() and tuneCmd.Flags() ---
	Company  string `mapstructure:"company"`
	Debounce string `mapstructure:"debounce"`

	// --- Fields from compareCmd.Flags() ---
	ComparePeerWeights string `mapstructure:"compare-peer-weights"`

	// --- Custom weights from config file: status -> theme -> metric -> weight ---
	Weights map[string]map[string]map[string]any `mapstructure:"weights"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.CompanyIDs = slices.Clone(c.CompanyIDs)
	clone.Statuses = slices.Clone(c.Statuses)
	clone.ScoringConfigs = c.ScoringConfigs.Clone()
	if c.Rationales != nil {
		clone.Rationales = make(schema.RationaleTable, len(c.Rationales))
		for status, table := range c.Rationales {
			clone.Rationales[status] = maps.Clone(table)
		}
	}
	return &clone
}

// HasSource reports whether a company source is configured.
func (c *Config) HasSource() bool {
	return c.SourcePath != "" || c.SourceDSN != ""
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSource(cfg, input); err != nil {
		return err
	}
	if err := processPeerWeights(cfg, input); err != nil {
		return err
	}
	if err := processCustomWeights(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history: %w", err)
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-weight fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Explain = input.Explain
	cfg.Width = input.Width
	cfg.Company = strings.TrimSpace(input.Company)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 4. Debounce Validation ---
	cfg.Debounce = DefaultDebounce
	if input.Debounce != "" {
		d, err := time.ParseDuration(input.Debounce)
		if err != nil {
			return fmt.Errorf("invalid debounce '%s': %w", input.Debounce, err)
		}
		if d < 0 {
			return fmt.Errorf("debounce cannot be negative (received %s)", d)
		}
		cfg.Debounce = d
	}

	// --- 5. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processSource validates the company source selection and filters.
func processSource(cfg *Config, input *ConfigRawInput) error {
	cfg.SourcePath = strings.TrimSpace(input.Source)
	cfg.SourceDSN = strings.TrimSpace(input.SourceDSN)
	if cfg.SourcePath != "" && cfg.SourceDSN != "" {
		return fmt.Errorf("--source and --source-dsn cannot be used together")
	}
	if cfg.SourceDSN != "" {
		if err := ValidateDatabaseConnectionString(schema.PostgreSQLBackend, cfg.SourceDSN); err != nil {
			return fmt.Errorf("source: %w", err)
		}
	}

	cfg.SourceTable = strings.TrimSpace(input.SourceTable)
	if cfg.SourceTable == "" {
		cfg.SourceTable = DefaultSourceTable
	}

	cfg.CompanyIDs = ParseList(input.IDs)

	statuses, err := ParseStatusList(input.Status)
	if err != nil {
		return err
	}
	cfg.Statuses = statuses

	return nil
}

// processPeerWeights parses both peer-weight profiles. Profiles that do not
// sum to 100 are allowed and only logged.
func processPeerWeights(cfg *Config, input *ConfigRawInput) error {
	raw := input.PeerWeights
	if strings.TrimSpace(raw) == "" {
		raw = DefaultPeerWeights
	}
	pw, err := ParsePeerWeights(raw)
	if err != nil {
		return fmt.Errorf("invalid --peer-weights: %w", err)
	}
	cfg.PeerWeights = pw
	warnPeerWeightTotal("peer-weights", pw)

	cfg.ComparePeerWeights = pw
	if strings.TrimSpace(input.ComparePeerWeights) != "" {
		cpw, err := ParsePeerWeights(input.ComparePeerWeights)
		if err != nil {
			return fmt.Errorf("invalid --compare-peer-weights: %w", err)
		}
		cfg.ComparePeerWeights = cpw
		warnPeerWeightTotal("compare-peer-weights", cpw)
	}
	return nil
}

func warnPeerWeightTotal(name string, pw schema.PeerGroupWeights) {
	if math.Abs(pw.Total()-100) > 1e-9 {
		zap.L().Warn("Peer-group weights do not sum to 100; blended scores scale proportionally",
			zap.String("flag", name),
			zap.Float64("total", pw.Total()))
	}
}

// ParsePeerWeights parses "status:40,valuation:30,operational:30".
// Groups left out get a weight of 0.
func ParsePeerWeights(s string) (schema.PeerGroupWeights, error) {
	var pw schema.PeerGroupWeights
	seen := make(map[schema.PeerGroupKind]bool)

	for _, part := range ParseList(s) {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			return pw, fmt.Errorf("expected group:weight, got '%s'", part)
		}
		kind := schema.PeerGroupKind(strings.ToLower(strings.TrimSpace(name)))
		if _, valid := schema.ValidPeerGroupKinds[kind]; !valid {
			return pw, fmt.Errorf("unknown peer group '%s'. must be status, valuation, operational", name)
		}
		if seen[kind] {
			return pw, fmt.Errorf("peer group '%s' given more than once", kind)
		}
		seen[kind] = true

		w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(w) {
			return pw, fmt.Errorf("invalid weight '%s' for peer group '%s'", value, kind)
		}
		if w < 0 || w > 100 {
			return pw, fmt.Errorf("weight for peer group '%s' must be between 0 and 100 (received %g)", kind, w)
		}

		switch kind {
		case schema.StatusPeers:
			pw.Status = w
		case schema.ValuationPeers:
			pw.Valuation = w
		case schema.OperationalPeers:
			pw.Operational = w
		}
	}

	if len(seen) == 0 {
		return pw, fmt.Errorf("no peer-group weights given")
	}
	return pw, nil
}

// ParseMetricWeightOverride parses one "status.theme.metric:weight" entry.
// The metric key may itself contain dots.
func ParseMetricWeightOverride(entry string) (schema.CompanyStatus, string, string, float64, error) {
	idx := strings.LastIndex(entry, ":")
	if idx < 0 {
		return "", "", "", 0, fmt.Errorf("expected status.theme.metric:weight, got '%s'", entry)
	}
	path, value := strings.TrimSpace(entry[:idx]), strings.TrimSpace(entry[idx+1:])

	parts := strings.SplitN(path, ".", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", "", "", 0, fmt.Errorf("expected status.theme.metric, got '%s'", path)
	}
	status := schema.CompanyStatus(strings.ToLower(parts[0]))
	if _, ok := schema.ValidStatuses[status]; !ok {
		return "", "", "", 0, fmt.Errorf("unknown status '%s' in '%s'", parts[0], entry)
	}

	w, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return "", "", "", 0, fmt.Errorf("invalid weight '%s' in '%s'", value, entry)
	}
	if w < 0 {
		return "", "", "", 0, fmt.Errorf("weight in '%s' cannot be negative", entry)
	}
	return status, parts[1], parts[2], w, nil
}

// ParseMetricWeightOverrides parses a comma-separated list of metric weight overrides.
func ParseMetricWeightOverrides(s string) (schema.ScoringConfigs, error) {
	overrides := schema.ScoringConfigs{}
	for _, entry := range ParseList(s) {
		status, theme, key, w, err := ParseMetricWeightOverride(entry)
		if err != nil {
			return nil, err
		}
		overrides.Set(status, theme, key, w)
	}
	return overrides, nil
}

// ProcessWeightsRawInput converts the config-file weights block into scoring configs.
// Metric keys may be written dotted or as nested maps, since the config loader
// splits dotted keys into nesting.
func ProcessWeightsRawInput(weights map[string]map[string]map[string]any) (schema.ScoringConfigs, error) {
	result := schema.ScoringConfigs{}
	for rawStatus, themes := range weights {
		status := schema.CompanyStatus(strings.ToLower(rawStatus))
		if _, ok := schema.ValidStatuses[status]; !ok {
			return nil, fmt.Errorf("unknown status '%s' in weights", rawStatus)
		}
		for theme, metrics := range themes {
			if err := flattenWeights(result, status, theme, "", metrics); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

func flattenWeights(result schema.ScoringConfigs, status schema.CompanyStatus, theme, prefix string, node map[string]any) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			if err := flattenWeights(result, status, theme, key, val); err != nil {
				return err
			}
		default:
			w, ok := weightValue(val)
			if !ok {
				return fmt.Errorf("weight for %s.%s.%s must be a number", status, theme, key)
			}
			if w < 0 {
				return fmt.Errorf("weight for %s.%s.%s cannot be negative", status, theme, key)
			}
			result.Set(status, theme, key, w)
		}
	}
	return nil
}

func weightValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return 0, false
}

// processCustomWeights computes the final scoring configs from the built-in
// defaults, the config-file weights and the --metric-weights overrides, in that order.
func processCustomWeights(cfg *Config, input *ConfigRawInput) error {
	fileWeights, err := ProcessWeightsRawInput(input.Weights)
	if err != nil {
		return err
	}
	overrides, err := ParseMetricWeightOverrides(input.MetricWeights)
	if err != nil {
		return fmt.Errorf("invalid --metric-weights: %w", err)
	}

	cfg.ScoringConfigs = schema.GetDefaultScoringConfigs()
	cfg.ScoringConfigs.Merge(fileWeights)
	cfg.ScoringConfigs.Merge(overrides)
	cfg.Rationales = schema.GetDefaultRationales()
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
}
