// Package config loads server configuration from built-in defaults, an
// optional YAML file and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"tangled.org/arabica.social/dialin/internal/database"
	"tangled.org/arabica.social/dialin/internal/validation"
)

// Storage backends.
const (
	StorageBolt   = "bolt"
	StorageSQLite = "sqlite"
)

// Config is the complete server configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Storage  StorageConfig  `koanf:"storage"`
	Grinders GrindersConfig `koanf:"grinders"`
	History  HistoryConfig  `koanf:"history"`
	Tracing  TracingConfig  `koanf:"tracing"`
}

type ServerConfig struct {
	Port int `koanf:"port" validate:"min=1,max=65535"`

	// PublicURL is the externally visible root URL when running behind a
	// reverse proxy, e.g. https://dialin.example.com.
	PublicURL string `koanf:"public_url" validate:"omitempty,url"`

	// RateLimit is requests per minute per client IP. Zero disables limiting.
	RateLimit int `koanf:"rate_limit" validate:"gte=0"`

	// TrustProxy takes the client address from X-Forwarded-For. Enable only
	// behind a reverse proxy that sets the header.
	TrustProxy bool `koanf:"trust_proxy"`

	MaxBodyBytes    int64         `koanf:"max_body_bytes" validate:"gt=0"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

type StorageConfig struct {
	Backend string `koanf:"backend" validate:"oneof=bolt sqlite"`
	Path    string `koanf:"path" validate:"required"`
}

// GrindersConfig points at an optional YAML grinder table that replaces or
// extends the built-in one.
type GrindersConfig struct {
	Path  string `koanf:"path"`
	Watch bool   `koanf:"watch"`
}

type HistoryConfig struct {
	// DefaultLimit is used when a history request carries no limit.
	DefaultLimit int `koanf:"default_limit" validate:"min=1,max=100"`
}

type TracingConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Endpoint string `koanf:"endpoint" validate:"omitempty,hostname_port"`
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Server.Port)
}

// TrustedOrigins returns the origin of the public URL, if one is set, in
// scheme://host form.
func (c *Config) TrustedOrigins() []string {
	if c.Server.PublicURL == "" {
		return nil
	}
	u, err := url.Parse(c.Server.PublicURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil
	}
	return []string{u.Scheme + "://" + u.Host}
}

// Validate checks the configuration against its validate tags and the
// cross-field rules the tags can't express.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if c.Grinders.Watch && c.Grinders.Path == "" {
		return fmt.Errorf("grinders.watch requires grinders.path")
	}
	return nil
}

// DefaultDBPath returns the database location used when none is configured.
// It lives under the XDG data directory (or ~/.local/share) so the server
// can run from read-only locations.
func DefaultDBPath(backend string) string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "dialin.db"
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	name := "dialin.db"
	if backend == StorageSQLite {
		name = "dialin.sqlite"
	}
	return filepath.Join(dataDir, "dialin", name)
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            18920,
			RateLimit:       120,
			MaxBodyBytes:    64 << 10,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Storage: StorageConfig{
			Backend: StorageBolt,
		},
		History: HistoryConfig{
			DefaultLimit: database.DefaultHistoryLimit,
		},
		Tracing: TracingConfig{
			Endpoint: "localhost:4318",
		},
	}
}
