package contract

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/legacylens/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit  = 25
	MaxResultLimit      = 1000
	DefaultPrecision    = 1
	DefaultQueueSize    = 64
	DefaultModelTimeout = 30 * time.Second
	DefaultProbeTimeout = 3 * time.Second
	DefaultStaleAfter   = 30 * time.Minute
	DefaultOllamaURL    = "http://localhost:11434"
	DefaultOllamaModel  = "codellama"
	DefaultOpenAIModel  = "gpt-4o-mini"
	MaxContentBytes     = 10 << 20
	AnalyzerVersion     = "legacylens-1"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the runtime configuration.
// This struct is the "final, validated" config.
type Config struct {
	ResultLimit int
	Workers     int
	QueueSize   int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	DBBackend schema.DatabaseBackend
	DBConnect string // Please use env var as this is plaintext

	ContentDir   string
	ContentInMem bool

	ModelProvider schema.ModelProvider
	ModelURL      string
	ModelName     string
	ModelAPIKey   string // Please use env var as this is plaintext
	ModelTimeout  time.Duration
	ProbeTimeout  time.Duration

	AutoAnalyze     bool
	StaleAfter      time.Duration
	FingerprintAlgo schema.FingerprintAlgo

	LogLevel  string
	LogFormat string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Limit      int    `mapstructure:"limit"`
	Workers    int    `mapstructure:"workers"`
	QueueSize  int    `mapstructure:"queue-size"`
	Precision  int    `mapstructure:"precision"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`
	LogLevel   string `mapstructure:"log-level"`
	LogFormat  string `mapstructure:"log-format"`

	DBBackend string `mapstructure:"db-backend"`
	DBConnect string `mapstructure:"db-connect"`

	ContentDir string `mapstructure:"content-dir"`
	ContentFS  string `mapstructure:"content-fs"`

	ModelProvider string `mapstructure:"model-provider"`
	ModelURL      string `mapstructure:"model-url"`
	ModelName     string `mapstructure:"model-name"`
	ModelAPIKey   string `mapstructure:"model-api-key"`
	ModelTimeout  string `mapstructure:"model-timeout"`
	ProbeTimeout  string `mapstructure:"probe-timeout"`

	AutoAnalyze     bool   `mapstructure:"auto-analyze"`
	StaleAfter      string `mapstructure:"stale-after"`
	FingerprintAlgo string `mapstructure:"fingerprint-algo"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate fills cfg from input, validating every field.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processModelConfig(cfg, input); err != nil {
		return err
	}
	return processWorkerConfig(cfg, input)
}

// ValidateDatabaseConnectionString checks the connection string shape for the backend.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") && !strings.HasPrefix(connStr, "postgres") {
			return fmt.Errorf("PostgreSQL connection string must be a postgres:// URL or contain 'host=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the persistence and content store settings.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.DBBackend = schema.DatabaseBackend(strings.ToLower(input.DBBackend))
	if cfg.DBBackend == "" {
		cfg.DBBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidBackends[cfg.DBBackend]; !ok {
		return fmt.Errorf("invalid db backend '%s'. must be sqlite, mysql, postgresql, none", input.DBBackend)
	}
	cfg.DBConnect = input.DBConnect
	if err := ValidateDatabaseConnectionString(cfg.DBBackend, cfg.DBConnect); err != nil {
		return err
	}

	switch strings.ToLower(input.ContentFS) {
	case "", "os":
		cfg.ContentInMem = false
	case "mem":
		cfg.ContentInMem = true
	default:
		return fmt.Errorf("invalid content-fs '%s'. must be os or mem", input.ContentFS)
	}
	cfg.ContentDir = input.ContentDir
	if cfg.ContentDir == "" {
		cfg.ContentDir = GetContentDir()
	}
	return nil
}

// validateSimpleInputs processes and validates output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.LogLevel = input.LogLevel
	cfg.LogFormat = input.LogFormat

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json, csv, yaml, parquet", input.Output)
	}
	return nil
}

// processModelConfig resolves the model provider and its defaults.
func processModelConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.ModelProvider = schema.ModelProvider(strings.ToLower(input.ModelProvider))
	if cfg.ModelProvider == "" {
		cfg.ModelProvider = schema.NoneProvider
	}
	if _, ok := schema.ValidProviders[cfg.ModelProvider]; !ok {
		return fmt.Errorf("invalid model provider '%s'. must be ollama, openai, none", input.ModelProvider)
	}
	cfg.ModelURL = input.ModelURL
	cfg.ModelName = input.ModelName
	cfg.ModelAPIKey = input.ModelAPIKey

	switch cfg.ModelProvider {
	case schema.OllamaProvider:
		if cfg.ModelURL == "" {
			cfg.ModelURL = DefaultOllamaURL
		}
		if cfg.ModelName == "" {
			cfg.ModelName = DefaultOllamaModel
		}
	case schema.OpenAIProvider:
		if cfg.ModelAPIKey == "" {
			return fmt.Errorf("model-api-key is required when using %s provider", cfg.ModelProvider)
		}
		if cfg.ModelName == "" {
			cfg.ModelName = DefaultOpenAIModel
		}
	}

	var err error
	if cfg.ModelTimeout, err = parseDurationOr(input.ModelTimeout, DefaultModelTimeout); err != nil {
		return fmt.Errorf("invalid model-timeout: %w", err)
	}
	if cfg.ProbeTimeout, err = parseDurationOr(input.ProbeTimeout, DefaultProbeTimeout); err != nil {
		return fmt.Errorf("invalid probe-timeout: %w", err)
	}
	return nil
}

// processWorkerConfig validates the background analysis settings.
func processWorkerConfig(cfg *Config, input *ConfigRawInput) error {
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	cfg.QueueSize = input.QueueSize
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	cfg.AutoAnalyze = input.AutoAnalyze

	var err error
	if cfg.StaleAfter, err = parseDurationOr(input.StaleAfter, DefaultStaleAfter); err != nil {
		return fmt.Errorf("invalid stale-after: %w", err)
	}

	cfg.FingerprintAlgo = schema.FingerprintAlgo(strings.ToLower(input.FingerprintAlgo))
	switch cfg.FingerprintAlgo {
	case "":
		cfg.FingerprintAlgo = schema.SHA256Algo
	case schema.SHA256Algo, schema.BLAKE3Algo:
	default:
		return fmt.Errorf("invalid fingerprint-algo '%s'. must be sha256 or blake3", input.FingerprintAlgo)
	}
	return nil
}

// parseDurationOr parses s, returning def for an empty string. Durations must be positive.
func parseDurationOr(s string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive (received %s)", s)
	}
	return d, nil
}
