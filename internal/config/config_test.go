package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tangled.org/arabica.social/dialin/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable the loader reads so the host environment
// can't leak into a test. Values are restored on cleanup.
func clearEnv(t *testing.T) {
	t.Helper()
	for key := range envMappings {
		name := strings.ToUpper(key)
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Setenv(ConfigPathEnvVar, "")
	os.Unsetenv(ConfigPathEnvVar)
	t.Setenv("XDG_DATA_HOME", t.TempDir())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dialin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, 18920, cfg.Server.Port)
	assert.Equal(t, 120, cfg.Server.RateLimit)
	assert.False(t, cfg.Server.TrustProxy)
	assert.Equal(t, int64(64<<10), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, StorageBolt, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_DATA_HOME"), "dialin", "dialin.db"), cfg.Storage.Path)
	assert.Equal(t, 20, cfg.History.DefaultLimit)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "localhost:4318", cfg.Tracing.Endpoint)
	assert.Equal(t, "0.0.0.0:18920", cfg.Addr())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
server:
  port: 9000
  rate_limit: 0
  write_timeout: 1m
logging:
  level: debug
  format: json
storage:
  backend: sqlite
grinders:
  path: /etc/dialin/grinders.yaml
  watch: true
history:
  default_limit: 50
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 0, cfg.Server.RateLimit)
	assert.Equal(t, time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, StorageSQLite, cfg.Storage.Backend)
	assert.True(t, strings.HasSuffix(cfg.Storage.Path, "dialin.sqlite"))
	assert.Equal(t, "/etc/dialin/grinders.yaml", cfg.Grinders.Path)
	assert.True(t, cfg.Grinders.Watch)
	assert.Equal(t, 50, cfg.History.DefaultLimit)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "server:\n  port: 9000\nlogging:\n  level: debug\n")
	t.Setenv("PORT", "9100")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DIALIN_DB_PATH", "/tmp/custom.db")
	t.Setenv("DIALIN_WATCH_GRINDERS", "true")
	t.Setenv("DIALIN_TRUST_PROXY", "true")
	t.Setenv("DIALIN_GRINDERS_PATH", "grinders.yaml")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("SOME_UNRELATED_VAR", "ignored")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "/tmp/custom.db", cfg.Storage.Path)
	assert.True(t, cfg.Grinders.Watch)
	assert.True(t, cfg.Server.TrustProxy)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "collector:4318", cfg.Tracing.Endpoint)
}

func TestConfig_TrustedOrigins(t *testing.T) {
	tests := []struct {
		name      string
		publicURL string
		want      []string
	}{
		{"unset", "", nil},
		{"path is dropped", "https://dialin.example.com/app/", []string{"https://dialin.example.com"}},
		{"port is kept", "http://localhost:8080", []string{"http://localhost:8080"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Server.PublicURL = tt.publicURL
			assert.Equal(t, tt.want, cfg.TrustedOrigins())
		})
	}
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "server:\n  port: 9200\n")
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"bad log level", "logging:\n  level: loud\n", "level"},
		{"bad backend", "storage:\n  backend: postgres\n", "backend"},
		{"port out of range", "server:\n  port: 70000\n", "port"},
		{"history limit too large", "history:\n  default_limit: 500\n", "default_limit"},
		{"bad public url", "server:\n  public_url: not a url\n", "public_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)

			_, err := LoadFile(writeConfig(t, tt.content))
			require.Error(t, err)

			var verr *validation.RequestValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Equal(t, tt.field, verr.FirstField())
		})
	}
}

func TestLoad_WatchWithoutPath(t *testing.T) {
	clearEnv(t)

	_, err := LoadFile(writeConfig(t, "grinders:\n  watch: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grinders.watch requires grinders.path")
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	assert.Equal(t, filepath.Join(dir, "dialin", "dialin.db"), DefaultDBPath(StorageBolt))
	assert.Equal(t, filepath.Join(dir, "dialin", "dialin.sqlite"), DefaultDBPath(StorageSQLite))
}
