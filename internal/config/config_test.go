package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envVars = []string{
	"SCORECARD_PORT", "SCORECARD_METRICS_PORT", "SCORECARD_ADMIN_TOKEN",
	"SCORECARD_DATABASE_DRIVER", "SCORECARD_DATABASE_URL", "SCORECARD_HERMES_URL",
	"SCORECARD_BROKER_ENABLED", "SCORECARD_BROKER_WORKERS", "SCORECARD_MISSING_OBJECTIVE_POLICY", "SCORECARD_DEFAULT_PROFILE",
	"SCORECARD_MAX_BATCH_SIZE", "SCORECARD_LOG_LEVEL", "SCORECARD_LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8700 {
		t.Errorf("expected port 8700, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected metrics port 8701, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.RateLimitPerMinute != 120 {
		t.Errorf("expected rate limit 120, got %d", cfg.Server.RateLimitPerMinute)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("expected memory driver, got %s", cfg.Database.Driver)
	}
	if cfg.Hermes.URL != "nats://localhost:4222" {
		t.Errorf("expected nats URL, got %s", cfg.Hermes.URL)
	}
	if !cfg.Broker.Enabled {
		t.Error("expected broker enabled by default")
	}
	if cfg.Broker.Workers != 4 {
		t.Errorf("expected 4 broker workers, got %d", cfg.Broker.Workers)
	}
	if cfg.StatsInterval() != time.Minute {
		t.Errorf("expected StatsInterval 1m, got %v", cfg.StatsInterval())
	}
	if cfg.Scoring.MissingObjectivePolicy != "exclude" {
		t.Errorf("expected exclude policy, got %s", cfg.Scoring.MissingObjectivePolicy)
	}
	if cfg.Scoring.MaxBatchSize != 10000 {
		t.Errorf("expected max batch 10000, got %d", cfg.Scoring.MaxBatchSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format 'json', got '%s'", cfg.Logging.Format)
	}
	if cfg.ShutdownTimeout() != 10*time.Second {
		t.Errorf("expected ShutdownTimeout 10s, got %v", cfg.ShutdownTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCORECARD_PORT", "9000")
	t.Setenv("SCORECARD_METRICS_PORT", "9001")
	t.Setenv("SCORECARD_ADMIN_TOKEN", "secret-token")
	t.Setenv("SCORECARD_DATABASE_DRIVER", "postgres")
	t.Setenv("SCORECARD_DATABASE_URL", "postgres://localhost/scorecard_test")
	t.Setenv("SCORECARD_HERMES_URL", "nats://nats:4222")
	t.Setenv("SCORECARD_BROKER_ENABLED", "false")
	t.Setenv("SCORECARD_BROKER_WORKERS", "8")
	t.Setenv("SCORECARD_MISSING_OBJECTIVE_POLICY", "error")
	t.Setenv("SCORECARD_DEFAULT_PROFILE", "/etc/scorecard/profile.yaml")
	t.Setenv("SCORECARD_MAX_BATCH_SIZE", "50")
	t.Setenv("SCORECARD_LOG_LEVEL", "debug")
	t.Setenv("SCORECARD_LOG_FORMAT", "text")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 9001 {
		t.Errorf("expected metrics port 9001, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.AdminToken != "secret-token" {
		t.Errorf("expected admin token 'secret-token', got '%s'", cfg.Server.AdminToken)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected postgres driver, got '%s'", cfg.Database.Driver)
	}
	if cfg.Database.URL != "postgres://localhost/scorecard_test" {
		t.Errorf("expected database URL, got '%s'", cfg.Database.URL)
	}
	if cfg.Hermes.URL != "nats://nats:4222" {
		t.Errorf("expected hermes URL, got '%s'", cfg.Hermes.URL)
	}
	if cfg.Broker.Enabled {
		t.Error("expected broker disabled")
	}
	if cfg.Broker.Workers != 8 {
		t.Errorf("expected 8 broker workers, got %d", cfg.Broker.Workers)
	}
	if cfg.Scoring.MissingObjectivePolicy != "error" {
		t.Errorf("expected error policy, got '%s'", cfg.Scoring.MissingObjectivePolicy)
	}
	if cfg.Scoring.DefaultProfile != "/etc/scorecard/profile.yaml" {
		t.Errorf("expected default profile path, got '%s'", cfg.Scoring.DefaultProfile)
	}
	if cfg.Scoring.MaxBatchSize != 50 {
		t.Errorf("expected max batch 50, got %d", cfg.Scoring.MaxBatchSize)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.SlogLevel())
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected text format, got '%s'", cfg.Logging.Format)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "scorecard.yaml")
	data := []byte(`
server:
  port: 8800
database:
  driver: sqlite
  url: file:scorecard.db
scoring:
  missing_objective_policy: error
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8800 {
		t.Errorf("expected port 8800, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected default metrics port to survive, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.URL != "file:scorecard.db" {
		t.Errorf("unexpected database config %+v", cfg.Database)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"postgres without url", func(c *Config) { c.Database.Driver = "postgres" }},
		{"unknown policy", func(c *Config) { c.Scoring.MissingObjectivePolicy = "ignore" }},
		{"zero batch", func(c *Config) { c.Scoring.MaxBatchSize = 0 }},
		{"zero workers", func(c *Config) { c.Broker.Workers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
