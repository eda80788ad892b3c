// Package config provides application configuration with multi-source
// priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (DATABASE_URL, TABLE_NAME, ...)
//  2. Config file (~/.kbvec/config.yaml or ./config.yaml)
//  3. Default values
//
// DATABASE_URL is required: both tools talk to an external pgvector store
// and refuse to start without a connection string. Everything else has a
// sensible default.
//
// Error Handling:
//   - Sentinel errors for Go-idiomatic checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrMissingDatabaseURL indicates DATABASE_URL is not set.
	ErrMissingDatabaseURL = errors.New("DATABASE_URL not set")

	// ErrInvalidDatabaseURL indicates DATABASE_URL could not be parsed.
	ErrInvalidDatabaseURL = errors.New("invalid DATABASE_URL")

	// ErrInvalidTableName indicates the table name is not a valid SQL identifier.
	ErrInvalidTableName = errors.New("invalid table name")

	// ErrInvalidEmbedderModel indicates the embedder model name is empty.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidChunkSize indicates the chunk size is out of range.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidPause indicates a pacing duration is negative.
	ErrInvalidPause = errors.New("invalid pause duration")
)

const (
	// DefaultTableName is the vector table used when TABLE_NAME is unset.
	DefaultTableName = "documents"

	// DefaultEmbedderModel is the default Gemini embedder model.
	// gemini-embedding-001 outputs 3072 dimensions by default but supports
	// truncation to 768; the documents table schema uses 768.
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultChunkSize is the number of words per text chunk.
	DefaultChunkSize = 100

	// DefaultIngestPause spaces out ingestion steps in --all mode to stay
	// under the embedding API's rate limits.
	DefaultIngestPause = 10 * time.Second

	// DefaultQueryPause spaces out CSV-driven queries for the same reason.
	DefaultQueryPause = 5 * time.Second
)

// Config stores application configuration. It is constructed once at process
// start and threaded through explicitly; workflows never re-read the
// environment.
type Config struct {
	// PostgreSQL connection, populated from DATABASE_URL (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE: never logged
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// Vector store
	TableName     string `mapstructure:"table_name"`
	EmbedderModel string `mapstructure:"embedder_model"`

	// Ingestion
	ChunkSize  int    `mapstructure:"chunk_size"`
	SampleCSV  string `mapstructure:"sample_csv"`
	SampleText string `mapstructure:"sample_text"`

	// Pacing between external API calls
	IngestPause time.Duration `mapstructure:"ingest_pause"`
	QueryPause  time.Duration `mapstructure:"query_pause"`

	// Observability (optional tracing, see observability.go)
	Datadog DatadogConfig `mapstructure:"datadog"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	v := viper.New()

	// Configuration directory: ~/.kbvec/ (optional; missing home is fine
	// for containerized runs)
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".kbvec"))
	}
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL is required and overrides any postgres_* file settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("postgres_ssl_mode", "disable")

	v.SetDefault("table_name", DefaultTableName)
	v.SetDefault("embedder_model", DefaultEmbedderModel)

	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("sample_csv", "data/sample.csv")
	v.SetDefault("sample_text", "data/sample.txt")

	v.SetDefault("ingest_pause", DefaultIngestPause.String())
	v.SetDefault("query_pause", DefaultQueryPause.String())

	v.SetDefault("datadog.agent_host", "localhost:4318")
	v.SetDefault("datadog.environment", "dev")
	v.SetDefault("datadog.service_name", "kbvec")
}

// bindEnvVariables binds environment variables explicitly.
// DATABASE_URL is read separately in parseDatabaseURL.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a failure here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("table_name", "TABLE_NAME")
	mustBind("embedder_model", "KBVEC_EMBEDDER_MODEL")
	mustBind("datadog.api_key", "DD_API_KEY")

	// NOTE: GEMINI_API_KEY is read directly by the Genkit GoogleAI plugin,
	// not via Viper. The CLI checks its presence before starting work.
}
