package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv unsets every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MUTUALAID_CONFIG", "ADDR", "DB_DRIVER", "DB_PATH", "DATABASE_URL",
		"JWT_SECRET", "TOKEN_TTL", "LOG_LEVEL", "SWEEP_INTERVAL", "CORS_ORIGINS",
		"DEFAULT_MAX_OPEN_REQUESTS", "DEFAULT_MAX_GROUPS_CREATED", "DEFAULT_MAX_GROUPS_JOINED",
	} {
		t.Setenv(key, "")
	}
	// Load looks for .env in the working directory.
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr: expected :8080, got %s", cfg.Addr)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Driver: expected sqlite, got %s", cfg.Database.Driver)
	}
	if cfg.DefaultLimits.MaxOpenRequests != 5 || cfg.DefaultLimits.MaxGroupsCreated != 3 || cfg.DefaultLimits.MaxGroupsJoined != 5 {
		t.Errorf("unexpected default limits: %+v", cfg.DefaultLimits)
	}
	if cfg.JWTSecret == "" {
		t.Error("expected a generated development secret")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "mutualaid.yaml")
	content := `
addr: ":9090"
database:
  driver: postgres
  url: postgres://localhost/aid
jwt_secret: from-file
token_ttl: 2h
sweep_interval: 30s
cors_origins: ["https://aid.example.com"]
default_limits:
  max_open_requests: 10
  max_groups_created: 1
  max_groups_joined: 4
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("ADDR", ":7070")
	t.Setenv("DEFAULT_MAX_GROUPS_JOINED", "8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Addr != ":7070" {
		t.Errorf("Addr: expected env override :7070, got %s", cfg.Addr)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.URL != "postgres://localhost/aid" {
		t.Errorf("unexpected database: %+v", cfg.Database)
	}
	if cfg.JWTSecret != "from-file" {
		t.Errorf("JWTSecret: expected from-file, got %s", cfg.JWTSecret)
	}
	if cfg.TokenTTL != 2*time.Hour || cfg.SweepInterval != 30*time.Second {
		t.Errorf("durations: expected 2h and 30s, got %v and %v", cfg.TokenTTL, cfg.SweepInterval)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://aid.example.com" {
		t.Errorf("CORSOrigins: got %v", cfg.CORSOrigins)
	}
	if cfg.DefaultLimits.MaxOpenRequests != 10 || cfg.DefaultLimits.MaxGroupsJoined != 8 {
		t.Errorf("unexpected limits: %+v", cfg.DefaultLimits)
	}
}

func TestLoad_ConfigFromEnvVar(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "mutualaid.yaml")
	if err := os.WriteFile(path, []byte("addr: \":6060\"\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("MUTUALAID_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":6060" {
		t.Errorf("Addr: expected :6060, got %s", cfg.Addr)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("SWEEP_INTERVAL")

	if err := os.WriteFile(".env", []byte("SWEEP_INTERVAL=1m\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SweepInterval != time.Minute {
		t.Errorf("SweepInterval: expected 1m from .env, got %v", cfg.SweepInterval)
	}
}

func TestLoad_BadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOKEN_TTL", "forever")

	if _, err := Load(""); err == nil {
		t.Error("expected invalid TOKEN_TTL to fail")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected missing config file to fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"postgres without url", func(c *Config) { c.Database.Driver = DriverPostgres }, true},
		{"negative limit", func(c *Config) { c.DefaultLimits.MaxOpenRequests = -1 }, true},
		{"negative sweep", func(c *Config) { c.SweepInterval = -time.Second }, true},
		{"zero sweep disables", func(c *Config) { c.SweepInterval = 0 }, false},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.JWTSecret = "secret"
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate: expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
