package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    slog.Level
	RawLogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	RedisURL   string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	// RecordTTL is how long Redis remembers a session after its last change.
	RecordTTL time.Duration `env:"SESSION_RECORD_TTL" envDefault:"24h"`

	// TimeScale multiplies every engine delay; 0.1 plays ten times faster.
	TimeScale float64 `env:"TIME_SCALE" envDefault:"1"`
	// ScriptFile replaces the embedded story content when set.
	ScriptFile string `env:"SCRIPT_FILE"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.RawLogLevel)

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.RecordTTL < cfg.SessionTTL {
		return nil, fmt.Errorf("SESSION_RECORD_TTL (%s) must not be shorter than SESSION_TTL (%s)", cfg.RecordTTL, cfg.SessionTTL)
	}
	if cfg.TimeScale <= 0 {
		return nil, fmt.Errorf("TIME_SCALE must be positive, got %g", cfg.TimeScale)
	}
	return &cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
