// Package config loads shelby's settings.
//
// Settings come from, in increasing priority:
//  1. built-in defaults
//  2. a YAML file (--config, or ./shelby.yaml when present)
//  3. a .env file next to the working directory
//  4. SHELBY_* environment variables
//
// The merged result is checked against a CUE schema before use.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/shelby/internal/pagination"
	"github.com/roach88/shelby/internal/store"
)

// DefaultPath is the config file picked up when none is given.
const DefaultPath = "shelby.yaml"

// Environment variables that override the config file.
const (
	EnvDatabasePath = "SHELBY_DATABASE_PATH"
	EnvLogLevel     = "SHELBY_LOG_LEVEL"
	EnvLogFormat    = "SHELBY_LOG_FORMAT"
	EnvDecodePolicy = "SHELBY_DECODE_POLICY"
	EnvDefaultLimit = "SHELBY_DEFAULT_LIMIT"
)

// Config holds every setting.
type Config struct {
	Database DatabaseConfig `yaml:"database" json:"database"`
	Log      LogConfig      `yaml:"log" json:"log"`
	Listing  ListingConfig  `yaml:"listing" json:"listing"`
}

// DatabaseConfig selects the database file and how reads treat bad rows.
type DatabaseConfig struct {
	Path         string `yaml:"path" json:"path"`
	DecodePolicy string `yaml:"decode_policy" json:"decode_policy"`
}

// LogConfig configures the slog handler installed by the CLI.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// ListingConfig configures the list command.
type ListingConfig struct {
	DefaultLimit int    `yaml:"default_limit" json:"default_limit"`
	QueryTimeout string `yaml:"query_timeout" json:"query_timeout"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "shelby.db", DecodePolicy: store.SkipInvalidRows.String()},
		Log:      LogConfig{Level: "info", Format: "text"},
		Listing:  ListingConfig{DefaultLimit: pagination.DefaultLimit, QueryTimeout: "30s"},
	}
}

// Load reads the config file at path, or DefaultPath if path is empty and
// that file exists, then applies .env and environment overrides.
func Load(path string) (*Config, error) {
	return LoadFrom(path, ".env")
}

// LoadFrom is Load with an explicit .env file. A missing .env file is not
// an error.
func LoadFrom(path, envFile string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", envFile, err)
	}
	if err := cfg.applyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDatabasePath); ok {
		c.Database.Path = v
	}
	if v, ok := lookup(EnvDecodePolicy); ok {
		c.Database.DecodePolicy = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		c.Log.Format = v
	}
	if v, ok := lookup(EnvDefaultLimit); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvDefaultLimit, err)
		}
		c.Listing.DefaultLimit = n
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// DecodePolicy returns the configured select-all policy.
func (c *Config) DecodePolicy() store.DecodePolicy {
	policy, err := store.ParseDecodePolicy(c.Database.DecodePolicy)
	if err != nil {
		return store.SkipInvalidRows
	}
	return policy
}

// QueryTimeout returns the per-query timeout of listings, zero for none.
func (c *Config) QueryTimeout() time.Duration {
	d, err := time.ParseDuration(c.Listing.QueryTimeout)
	if err != nil {
		return 0
	}
	return d
}
