package config

import (
	"fmt"
	"regexp"
)

// identifierRe matches a plain PostgreSQL identifier. The table name is
// interpolated into DDL-free statements after sanitization, but it must
// still be a bare identifier to begin with.
var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,62}$`)

// Validate checks all configuration values and fails fast with a clear
// error. Called once from Load.
func (c *Config) Validate() error {
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidDatabaseURL)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: missing database name", ErrInvalidDatabaseURL)
	}
	if c.PostgresPort <= 0 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidDatabaseURL, c.PostgresPort)
	}

	if !identifierRe.MatchString(c.TableName) {
		return fmt.Errorf("%w: %q is not a valid SQL identifier", ErrInvalidTableName, c.TableName)
	}

	if c.EmbedderModel == "" {
		return ErrInvalidEmbedderModel
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: %d, must be positive", ErrInvalidChunkSize, c.ChunkSize)
	}

	if c.IngestPause < 0 {
		return fmt.Errorf("%w: ingest_pause %s", ErrInvalidPause, c.IngestPause)
	}
	if c.QueryPause < 0 {
		return fmt.Errorf("%w: query_pause %s", ErrInvalidPause, c.QueryPause)
	}

	return nil
}
