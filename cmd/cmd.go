// Package cmd defines the command-line interface for peerscore.
package cmd

import (
	"github.com/huangsam/peerscore/internal/contract"
	"github.com/huangsam/peerscore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(peersCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(tuneCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("source", "s", "", "Path to a JSON or YAML company file")
	rootCmd.PersistentFlags().String("source-dsn", "", "PostgreSQL connection string to load companies from (e.g., host=localhost dbname=mining)")
	rootCmd.PersistentFlags().String("source-table", contract.DefaultSourceTable, "Table read when loading companies from PostgreSQL")
	rootCmd.PersistentFlags().String("ids", "", "Comma-separated list of company IDs to load")
	rootCmd.PersistentFlags().String("status", "", "Comma-separated statuses to keep: producer, developer, explorer, royalty, other")
	rootCmd.PersistentFlags().String("peer-weights", contract.DefaultPeerWeights, "Peer-group weights (format: 'status:40,valuation:30,operational:30')")
	rootCmd.PersistentFlags().String("metric-weights", "", "Metric weight overrides (format: 'producer.operations.costs.aisc_last_year:20,...')")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "History tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for history tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", contract.ConsoleLogFormat, "Log format: console or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of scoreCmd to Viper
	scoreCmd.Flags().Bool("explain", false, "Print the top contributing metrics per company")
	scoreCmd.Flags().Bool("detail", false, "Print status, ticker and peer-group ranks per company")
	if err := viper.BindPFlags(scoreCmd.Flags()); err != nil {
		contract.LogFatal("Error binding score flags", err)
	}

	// Bind all flags of peersCmd to Viper
	peersCmd.Flags().String("company", "", "Company ID, name or ticker to focus on")
	if err := viper.BindPFlags(peersCmd.Flags()); err != nil {
		contract.LogFatal("Error binding peers flags", err)
	}

	// Bind all flags of compareCmd to Viper
	compareCmd.Flags().String("compare-peer-weights", "", "Target peer-group weights to compare against --peer-weights")
	if err := viper.BindPFlags(compareCmd.Flags()); err != nil {
		contract.LogFatal("Error binding compare flags", err)
	}

	// Bind all flags of tuneCmd to Viper
	tuneCmd.Flags().String("debounce", contract.DefaultDebounce.String(), "Quiet period before an edit is re-scored")
	if err := viper.BindPFlags(tuneCmd.Flags()); err != nil {
		contract.LogFatal("Error binding tune flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
