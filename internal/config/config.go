package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Broker   BrokerConfig   `yaml:"broker"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port               int    `yaml:"port"`
	MetricsPort        int    `yaml:"metrics_port"`
	AdminToken         string `yaml:"admin_token"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	ShutdownTimeoutMs  int    `yaml:"shutdown_timeout_ms"`
}

// DatabaseConfig selects the profile store. Driver is one of memory,
// postgres, sqlite or mysql.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type BrokerConfig struct {
	Enabled          bool `yaml:"enabled"`
	Workers          int  `yaml:"workers"`
	ProfileCacheSize int  `yaml:"profile_cache_size"`
	StatsIntervalMs  int  `yaml:"stats_interval_ms"`
}

type ScoringConfig struct {
	// MissingObjectivePolicy is exclude or error.
	MissingObjectivePolicy string `yaml:"missing_objective_policy"`
	DefaultProfile         string `yaml:"default_profile"`
	MaxBatchSize           int    `yaml:"max_batch_size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutMs) * time.Millisecond
}

func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.Broker.StatsIntervalMs) * time.Millisecond
}

// SlogLevel maps Logging.Level onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "memory":
	case "postgres", "sqlite", "mysql":
		if c.Database.URL == "" {
			return fmt.Errorf("database driver %q requires a url", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Scoring.MissingObjectivePolicy {
	case "exclude", "error":
	default:
		return fmt.Errorf("unknown missing objective policy %q", c.Scoring.MissingObjectivePolicy)
	}
	if c.Broker.Workers <= 0 {
		return fmt.Errorf("broker workers must be positive, got %d", c.Broker.Workers)
	}
	if c.Scoring.MaxBatchSize <= 0 {
		return fmt.Errorf("max batch size must be positive, got %d", c.Scoring.MaxBatchSize)
	}
	return nil
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			RateLimitPerMinute: 120,
			ShutdownTimeoutMs:  10000,
		},
		Database: DatabaseConfig{
			Driver: "memory",
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Broker: BrokerConfig{
			Enabled:          true,
			Workers:          4,
			ProfileCacheSize: 64,
			StatsIntervalMs:  60000,
		},
		Scoring: ScoringConfig{
			MissingObjectivePolicy: "exclude",
			MaxBatchSize:           10000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SCORECARD_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("SCORECARD_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("SCORECARD_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("SCORECARD_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("SCORECARD_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("SCORECARD_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("SCORECARD_BROKER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Broker.Enabled = b
		}
	}
	if v := os.Getenv("SCORECARD_BROKER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Broker.Workers = n
		}
	}
	if v := os.Getenv("SCORECARD_MISSING_OBJECTIVE_POLICY"); v != "" {
		cfg.Scoring.MissingObjectivePolicy = v
	}
	if v := os.Getenv("SCORECARD_DEFAULT_PROFILE"); v != "" {
		cfg.Scoring.DefaultProfile = v
	}
	if v := os.Getenv("SCORECARD_MAX_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.MaxBatchSize = n
		}
	}
	if v := os.Getenv("SCORECARD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SCORECARD_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
