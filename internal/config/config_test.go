package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("HTTPPort = %d, want 8080", cfg.HTTPPort)
	}
	if cfg.CatalogStore != "memory" || cfg.SessionStore != "memory" {
		t.Errorf("stores = %s/%s, want memory/memory", cfg.CatalogStore, cfg.SessionStore)
	}
	if cfg.SessionIdleTimeout != 24*time.Hour {
		t.Errorf("SessionIdleTimeout = %s, want 24h", cfg.SessionIdleTimeout)
	}
	if cfg.TTSVoice != "alloy" {
		t.Errorf("TTSVoice = %q, want alloy", cfg.TTSVoice)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CONSULT_HTTP_PORT", "9090")
	t.Setenv("CONSULT_CHAT_MODEL", "claude-sonnet-4-20250514")
	t.Setenv("CONSULT_SESSION_STORE", "postgres")
	t.Setenv("CONSULT_POSTGRES_DSN", "postgres://localhost/consult")
	t.Setenv("CONSULT_SESSION_IDLE_TIMEOUT", "90m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("HTTPPort = %d", cfg.HTTPPort)
	}
	if cfg.ChatModel != "claude-sonnet-4-20250514" {
		t.Errorf("ChatModel = %q", cfg.ChatModel)
	}
	if cfg.SessionIdleTimeout != 90*time.Minute {
		t.Errorf("SessionIdleTimeout = %s", cfg.SessionIdleTimeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad catalog store", func(c *Config) { c.CatalogStore = "mongo" }, true},
		{"bad session store", func(c *Config) { c.SessionStore = "redis" }, true},
		{"postgres without dsn", func(c *Config) { c.SessionStore = "postgres" }, true},
		{"postgres with dsn", func(c *Config) {
			c.SessionStore = "postgres"
			c.PostgresDSN = "postgres://localhost/consult"
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{CatalogStore: "memory", SessionStore: "memory"}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
