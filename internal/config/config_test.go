package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %q, want sqlite", cfg.DatabaseType)
	}
	if cfg.MigrationsPath != "" {
		t.Errorf("MigrationsPath = %q, want embedded migrations", cfg.MigrationsPath)
	}
	if cfg.RateLimitRequests != 60 || cfg.RateLimitWindow != time.Minute {
		t.Errorf("rate limit = %d per %v, want 60 per 1m", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	if cfg.SESFromEmail != "" {
		t.Errorf("SESFromEmail = %q, want disabled email", cfg.SESFromEmail)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/playtrack")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.DatabaseType != "postgres" || cfg.DatabaseURL != "postgres://localhost/playtrack" {
		t.Errorf("database = %s %s", cfg.DatabaseType, cfg.DatabaseURL)
	}
	if cfg.RateLimitWindow != 30*time.Second {
		t.Errorf("RateLimitWindow = %v, want 30s", cfg.RateLimitWindow)
	}
	if !cfg.Debug {
		t.Error("expected debug to be enabled")
	}
}

func TestLoadFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playtrack.yaml")
	content := "port: \"7070\"\ndb_path: /var/lib/playtrack.db\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.ServerPort != "7070" {
		t.Errorf("ServerPort = %q, want 7070 from file", cfg.ServerPort)
	}
	if cfg.DatabasePath != "/var/lib/playtrack.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, environment should win over the file", cfg.LogLevel)
	}
}

func TestLoadFromMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want default", cfg.ServerPort)
	}
}
