// Package config provides configuration loading for stockdeck.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration for the stockdeck client.
type Config struct {
	Backend BackendConfig `koanf:"backend"`
	State   StateConfig   `koanf:"state"`
	Logging LoggingConfig `koanf:"logging"`
}

// BackendConfig points the client at the inventory REST service.
type BackendConfig struct {
	// Host is the base URL of the backend, e.g. http://localhost:8080.
	Host string `koanf:"host"`
	// Timeout bounds each HTTP request issued by the API client.
	Timeout Duration `koanf:"timeout"`
}

// StateConfig controls where durable client state lives.
type StateConfig struct {
	// Dir holds the session record, the stock snapshot, and the log file.
	Dir string `koanf:"dir"`
}

// LoggingConfig controls the zap logger backing the TUI.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	// File is the log destination. The TUI owns stdout, so logs never go there.
	File string `koanf:"file"`
}

// Validate checks the configuration for values that cannot work at runtime.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.Host)
	if err != nil {
		return fmt.Errorf("backend host is not a valid URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("backend host must be an absolute URL, got %q", c.Backend.Host)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend timeout cannot be negative: %s", c.Backend.Timeout.Duration())
	}
	if c.State.Dir == "" {
		return fmt.Errorf("state dir is required")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// SessionPath returns the location of the persisted session record.
func (c *Config) SessionPath() string {
	return filepath.Join(c.State.Dir, "session.json")
}

// SnapshotPath returns the location of the persisted stock snapshot.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.State.Dir, "stocks.json")
}

// LogPath returns the log file destination, defaulting into the state dir.
func (c *Config) LogPath() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(c.State.Dir, "stockdeck.log")
}

// EnsureStateDir creates the state directory if it does not exist.
// The directory is created with 0700 permissions (owner only).
func (c *Config) EnsureStateDir() error {
	if err := os.MkdirAll(c.State.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", c.State.Dir, err)
	}
	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Backend.Host == "" {
		cfg.Backend.Host = "http://localhost:8080"
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = Duration(30 * time.Second)
	}
	if cfg.State.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.State.Dir = filepath.Join(home, ".config", "stockdeck")
		}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}
