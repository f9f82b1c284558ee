package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shelby/internal/store"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestLoadFrom_File(t *testing.T) {
	path := writeFile(t, "shelby.yaml", `
database:
  path: /var/lib/shelby/archive.db
  decode_policy: fail
log:
  level: debug
  format: json
listing:
  default_limit: 25
  query_timeout: 2s
`)

	cfg, err := LoadFrom(path, noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/shelby/archive.db", cfg.Database.Path)
	assert.Equal(t, store.FailFast, cfg.DecodePolicy())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 25, cfg.Listing.DefaultLimit)
	assert.Equal(t, 2*time.Second, cfg.QueryTimeout())
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, "shelby.yaml", "log:\n  level: warn\n")

	cfg, err := LoadFrom(path, noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "shelby.db", cfg.Database.Path)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
	assert.Equal(t, store.SkipInvalidRows, cfg.DecodePolicy())
	assert.Equal(t, 10, cfg.Listing.DefaultLimit)
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"), noEnvFile(t))
	assert.ErrorContains(t, err, "read config")
}

func TestLoadFrom_EnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "shelby.yaml", "database:\n  path: from-file.db\n")
	t.Setenv(EnvDatabasePath, "from-env.db")
	t.Setenv(EnvDefaultLimit, "50")

	cfg, err := LoadFrom(path, noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "from-env.db", cfg.Database.Path)
	assert.Equal(t, 50, cfg.Listing.DefaultLimit)
}

func TestLoadFrom_DotEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "SHELBY_LOG_LEVEL=error\nSHELBY_DATABASE_PATH=dotenv.db\n")
	t.Setenv(EnvDatabasePath, "process.db")

	cfg, err := LoadFrom("", envFile)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelError, cfg.SlogLevel())
	// The process environment wins over .env.
	assert.Equal(t, "process.db", cfg.Database.Path)
	_, set := os.LookupEnv(EnvLogLevel)
	assert.False(t, set, ".env must not leak into the process environment")
}

func TestLoadFrom_BadEnvironmentNumber(t *testing.T) {
	t.Setenv(EnvDefaultLimit, "many")

	_, err := LoadFrom("", noEnvFile(t))
	assert.ErrorContains(t, err, EnvDefaultLimit)
}

func TestValidate_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"unknown decode policy", func(c *Config) { c.Database.DecodePolicy = "maybe" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
		{"limit too small", func(c *Config) { c.Listing.DefaultLimit = 0 }},
		{"limit too large", func(c *Config) { c.Listing.DefaultLimit = 101 }},
		{"bad timeout", func(c *Config) { c.Listing.QueryTimeout = "soon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestLoadFrom_InvalidFileFailsValidation(t *testing.T) {
	path := writeFile(t, "shelby.yaml", "log:\n  format: xml\n")

	_, err := LoadFrom(path, noEnvFile(t))
	assert.ErrorContains(t, err, "invalid config")
}
