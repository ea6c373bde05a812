// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the consultation backend configuration. Variables are
// read with the CONSULT_ prefix (e.g. CONSULT_HTTP_PORT).
type Config struct {
	// HTTP configuration
	HTTPPort int    `envconfig:"HTTP_PORT" default:"8080"`
	APIKey   string `envconfig:"API_KEY" default:""`

	// Models
	ChatModel       string `envconfig:"CHAT_MODEL" default:"gpt-4o"`
	TranslatorModel string `envconfig:"TRANSLATOR_MODEL" default:"gpt-4o"`

	// Catalog
	CatalogStore string `envconfig:"CATALOG_STORE" default:"memory"` // memory | postgres
	CatalogSeed  string `envconfig:"CATALOG_SEED" default:"programs.yaml"`
	CatalogWatch bool   `envconfig:"CATALOG_WATCH" default:"true"`
	ResultLimit  int    `envconfig:"RESULT_LIMIT" default:"25"`

	// Sessions
	SessionStore string `envconfig:"SESSION_STORE" default:"memory"` // memory | postgres
	PostgresDSN  string `envconfig:"POSTGRES_DSN" default:""`

	// Janitor: administrative closure of idle sessions
	JanitorSchedule    string        `envconfig:"JANITOR_SCHEDULE" default:"@hourly"`
	SessionIdleTimeout time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"24h"`

	// Transcript archive (optional; empty bucket disables it)
	ArchiveBucket string `envconfig:"ARCHIVE_BUCKET" default:""`
	ArchivePrefix string `envconfig:"ARCHIVE_PREFIX" default:"transcripts/"`

	// Voice
	TTSVoice string `envconfig:"TTS_VOICE" default:"alloy"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("consult", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.CatalogStore {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unsupported CONSULT_CATALOG_STORE: %s", c.CatalogStore)
	}
	switch c.SessionStore {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unsupported CONSULT_SESSION_STORE: %s", c.SessionStore)
	}
	if (c.CatalogStore == "postgres" || c.SessionStore == "postgres") && c.PostgresDSN == "" {
		return fmt.Errorf("CONSULT_POSTGRES_DSN is required for the postgres stores")
	}
	return nil
}
