// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from PBFUND_* environment
// variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath   string `env:"PBFUND_DB_PATH" envDefault:"./data/pbfund.db"`
	Env      string `env:"PBFUND_ENV" envDefault:"development"`
	LogLevel string `env:"PBFUND_LOG_LEVEL" envDefault:"info"`

	// Scoring configuration
	ScoreThreshold float64 `env:"PBFUND_SCORE_THRESHOLD" envDefault:"65"` // Green cutoff, 0 < t <= 100

	// Seeding configuration
	DoSeed bool `env:"PBFUND_DO_SEED" envDefault:"true"` // Enable first-use demo seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.ScoreThreshold <= 0 || cfg.ScoreThreshold > 100 {
		return nil, fmt.Errorf("PBFUND_SCORE_THRESHOLD must be in (0, 100], got %v", cfg.ScoreThreshold)
	}

	return cfg, nil
}
