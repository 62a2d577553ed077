// Package config loads service settings from defaults, a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"todoapi/internal/logging"
	"todoapi/internal/store"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "todoapi.toml"

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds the service settings.
type Config struct {
	Addr            string        `toml:"addr"`
	Env             string        `toml:"env"`
	Store           string        `toml:"store"`
	DBPath          string        `toml:"db_path"`
	LogLevel        string        `toml:"log_level"`
	LogFormat       string        `toml:"log_format"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Default returns the built-in settings: an in-memory store served on :8080
// in development mode.
func Default() *Config {
	return &Config{
		Addr:            ":8080",
		Env:             EnvDevelopment,
		Store:           store.KindMemory,
		DBPath:          ":memory:",
		LogLevel:        "info",
		LogFormat:       "text",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds a Config in priority order:
// 1. Defaults
// 2. Config file (path, or todoapi.toml in the working directory if present)
// 3. Environment variables
//
// CLI flags are applied on top by the caller.
func Load(path string) (*Config, error) {
	cfg := Default()

	file := path
	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}
	if file != "" {
		if err := loadFile(cfg, file); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", file, err)
		}
	}

	loadFromEnv(cfg)

	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	cfg.Addr = getEnv("ADDR", cfg.Addr)
	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.Store = getEnv("TODO_STORE", cfg.Store)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		errs = append(errs, fmt.Errorf("env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env))
	}
	switch c.Store {
	case store.KindMemory:
	case store.KindSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("db_path is required for the sqlite store"))
		}
	default:
		errs = append(errs, fmt.Errorf("store must be %q or %q, got %q", store.KindMemory, store.KindSQLite, c.Store))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseFormatter(c.LogFormat); err != nil {
		errs = append(errs, err)
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}

	return errors.Join(errs...)
}

// Development reports whether development-only routes should be served.
func (c *Config) Development() bool {
	return c.Env == EnvDevelopment
}
