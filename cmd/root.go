package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/legacylens/core"
	"github.com/huangsam/legacylens/internal/blob"
	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/internal/llm"
	"github.com/huangsam/legacylens/internal/outwriter"
	"github.com/huangsam/legacylens/internal/persist"
	"github.com/huangsam/legacylens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// engine is the analysis engine built by sharedSetup.
var engine *core.Engine

// writer renders command results.
var writer = outwriter.NewOutWriter()

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "legacylens",
	Short:              "Analyze legacy Perl, TIBCO and Pentaho code for modernization.",
	Long:               `LegacyLens ingests legacy source files, scores their complexity and risk, and suggests how to modernize them.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigLocation()

	// Set environment variable prefix
	viper.SetEnvPrefix("LEGACYLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("queue-size", contract.DefaultQueueSize)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", "info")
	viper.SetDefault("log-format", "text")
	viper.SetDefault("db-backend", schema.SQLiteBackend)
	viper.SetDefault("db-connect", "")
	viper.SetDefault("content-fs", "os")
	viper.SetDefault("model-provider", schema.NoneProvider)
	viper.SetDefault("model-timeout", contract.DefaultModelTimeout.String())
	viper.SetDefault("probe-timeout", contract.DefaultProbeTimeout.String())
	viper.SetDefault("stale-after", contract.DefaultStaleAfter.String())
	viper.SetDefault("fingerprint-algo", schema.SHA256Algo)
	viper.SetDefault("auto-analyze", true)
}

// setConfigLocation points viper at --config or the default search paths.
func setConfigLocation() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".legacylens") // Name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	setConfigLocation()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// sharedSetup resolves the configuration and wires the engine.
func sharedSetup(ctx context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	contract.InitLogger(cfg.LogLevel, cfg.LogFormat, viper.GetString("log-output"))

	// 4. Initialize persistence and content storage with validated config
	if err := persist.InitStores(cfg.DBBackend, cfg.DBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	blobs, err := blob.FromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize content store: %w", err)
	}

	// 5. Build the model client and the engine
	client, err := llm.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize model client: %w", err)
	}
	engine = core.NewEngine(cfg, persist.Manager, blobs, client)
	engine.Start(ctx)
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Shutdown drains the engine and closes the stores. It is safe to call when
// no command set them up.
func Shutdown() {
	if engine != nil {
		engine.Close()
	}
	persist.CloseStores()
}
