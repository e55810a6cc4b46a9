// Package cmd defines the command-line interface for legacylens.
package cmd

import (
	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(suggestionsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(storeCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or json or csv or yaml or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().String("log-output", "stderr", "Log destination: stderr or stdout or a file path")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent analysis workers")
	rootCmd.PersistentFlags().Int("queue-size", contract.DefaultQueueSize, "Maximum number of queued analyses")
	rootCmd.PersistentFlags().String("db-backend", string(schema.SQLiteBackend), "Store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("content-dir", "", "Directory for uploaded content (default: ~/.legacylens/content)")
	rootCmd.PersistentFlags().String("content-fs", "os", "Content filesystem: os or mem")
	rootCmd.PersistentFlags().String("model-provider", string(schema.NoneProvider), "Model provider: ollama or openai or none")
	rootCmd.PersistentFlags().String("model-url", "", "Model endpoint URL")
	rootCmd.PersistentFlags().String("model-name", "", "Model name")
	rootCmd.PersistentFlags().String("model-api-key", "", "Model API key (prefer LEGACYLENS_MODEL_API_KEY)")
	rootCmd.PersistentFlags().String("model-timeout", contract.DefaultModelTimeout.String(), "Timeout for each model call")
	rootCmd.PersistentFlags().String("probe-timeout", contract.DefaultProbeTimeout.String(), "Timeout for the model availability probe")
	rootCmd.PersistentFlags().Bool("auto-analyze", true, "Queue analysis automatically after each new upload")
	rootCmd.PersistentFlags().String("stale-after", contract.DefaultStaleAfter.String(), "Age after which PROCESSING files are considered interrupted")
	rootCmd.PersistentFlags().String("fingerprint-algo", string(schema.SHA256Algo), "Content fingerprint: sha256 or blake3")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of ingestCmd to Viper
	ingestCmd.Flags().String("exclude", "", "Comma-separated list of path prefixes or patterns to ignore")
	ingestCmd.Flags().Bool("analyze", false, "Analyze each new upload right away")
	ingestCmd.Flags().String("name", "stdin", "Filename to record when reading from stdin")
	if err := viper.BindPFlags(ingestCmd.Flags()); err != nil {
		contract.LogFatal("Error binding ingest flags", err)
	}

	// Bind all flags of analyzeCmd to Viper
	analyzeCmd.Flags().Bool("force", false, "Re-analyze even when an analysis exists")
	analyzeCmd.Flags().Bool("async", false, "Queue the analysis and return immediately")
	if err := viper.BindPFlags(analyzeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analyze flags", err)
	}

	// Bind all flags of filesCmd to Viper
	filesCmd.Flags().String("status", "", "Only list files in this status")
	filesCmd.Flags().String("technology", "", "Only list files of this technology")
	if err := viper.BindPFlags(filesCmd.Flags()); err != nil {
		contract.LogFatal("Error binding files flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
