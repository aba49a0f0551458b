package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/joulebench/joulebench/internal/models"
)

// DefaultHarnessConfig returns a HarnessConfig with default values.
func DefaultHarnessConfig() models.HarnessConfig {
	return models.HarnessConfig{
		ResultsDir:           "results",
		Attempts:             5,
		BuildWorkers:         4,
		TimeoutMultiplier:    1.0,
		DefaultTimeoutSec:    60.0,
		SleepBetweenSec:      0,
		WarmupDiscard:        1,
		OutlierIQRMultiplier: 1.5,
	}
}

// LoadHarnessConfig loads and parses a harness.toml file.
func LoadHarnessConfig(path string) (models.HarnessConfig, error) {
	cfg := DefaultHarnessConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading harness config: %w", err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parsing harness config: %w", err)
	}

	// Apply defaults for zeroed values
	if cfg.ResultsDir == "" {
		cfg.ResultsDir = "results"
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 5
	}
	if cfg.BuildWorkers <= 0 {
		cfg.BuildWorkers = 4
	}
	if cfg.TimeoutMultiplier <= 0 {
		cfg.TimeoutMultiplier = 1.0
	}
	if cfg.DefaultTimeoutSec <= 0 {
		cfg.DefaultTimeoutSec = 60.0
	}
	if cfg.OutlierIQRMultiplier <= 0 {
		cfg.OutlierIQRMultiplier = 1.5
	}

	if cfg.WarmupDiscard < 0 {
		return cfg, fmt.Errorf("warmup_discard cannot be negative: %d", cfg.WarmupDiscard)
	}
	if cfg.SleepBetweenSec < 0 {
		return cfg, fmt.Errorf("sleep_between_sec cannot be negative: %d", cfg.SleepBetweenSec)
	}

	return cfg, nil
}

// ParseLogLevel maps the config's log_level string to a slog level.
// Empty or unrecognized values fall back to info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
