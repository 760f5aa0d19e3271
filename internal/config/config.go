// Package config loads server configuration.
//
// Sources, lowest precedence first:
//
//  1. built-in defaults
//  2. an optional YAML file (explicit path or MUTUALAID_CONFIG)
//  3. environment variables, including any set by a .env file
//
// Command-line flags are applied on top by the binaries.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/mutualaid/internal/models"
	"github.com/mmynk/mutualaid/internal/token"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the full server configuration.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	Database Database `yaml:"database"`

	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	LogLevel string `yaml:"log_level"`

	// SweepInterval is how often overdue open requests are expired.
	// Zero disables the sweeper.
	SweepInterval time.Duration `yaml:"sweep_interval"`

	CORSOrigins []string `yaml:"cors_origins"`

	// DefaultLimits are materialized for a user on first access.
	DefaultLimits models.LimitValues `yaml:"default_limits"`
}

// Database selects and locates the store.
type Database struct {
	Driver string `yaml:"driver"`

	// Path is the SQLite database file.
	Path string `yaml:"path"`

	// URL is the PostgreSQL connection string.
	URL string `yaml:"url"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Addr: ":8080",
		Database: Database{
			Driver: DriverSQLite,
			Path:   "./data/mutualaid.db",
		},
		TokenTTL:      24 * time.Hour,
		LogLevel:      "info",
		SweepInterval: 5 * time.Minute,
		CORSOrigins:   []string{"*"},
		DefaultLimits: models.DefaultLimitValues(),
	}
}

// Load builds the configuration. path may be empty, in which case
// MUTUALAID_CONFIG is consulted; if neither is set only defaults and the
// environment apply.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("MUTUALAID_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set. Generating a random secret for development. Sessions will be invalid on restart. PLEASE SET JWT_SECRET IN PRODUCTION!")
		secret, err := token.NewRandom().Generate()
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWTSecret = secret
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() error {
	setString(&c.Addr, "ADDR")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.Path, "DB_PATH")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	var errs []error
	errs = append(errs,
		setDuration(&c.TokenTTL, "TOKEN_TTL"),
		setDuration(&c.SweepInterval, "SWEEP_INTERVAL"),
		setInt(&c.DefaultLimits.MaxOpenRequests, "DEFAULT_MAX_OPEN_REQUESTS"),
		setInt(&c.DefaultLimits.MaxGroupsCreated, "DEFAULT_MAX_GROUPS_CREATED"),
		setInt(&c.DefaultLimits.MaxGroupsJoined, "DEFAULT_MAX_GROUPS_JOINED"),
	)
	return errors.Join(errs...)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, fmt.Errorf("addr is required"))
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, fmt.Errorf("database.path is required for sqlite"))
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, fmt.Errorf("database.url is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Database.Driver))
	}

	if c.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("jwt_secret is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token_ttl must be positive"))
	}
	if c.SweepInterval < 0 {
		errs = append(errs, fmt.Errorf("sweep_interval must not be negative"))
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	l := c.DefaultLimits
	if l.MaxOpenRequests < 0 || l.MaxGroupsCreated < 0 || l.MaxGroupsJoined < 0 {
		errs = append(errs, fmt.Errorf("default_limits must not be negative"))
	}

	return errors.Join(errs...)
}

// ParseLevel maps debug, info, warn and error to slog levels. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
