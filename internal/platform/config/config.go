// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/deliberation-tools/groundwork/internal/stats"
)

// Config is the full service configuration. The engine threshold fields
// mirror stats.Config; MIN_COMMON_GROUND_PROB left at zero lets each
// strategy apply its own default.
type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	MinVoteCount           int     `env:"MIN_VOTE_COUNT" default:"20"`
	MaxSampleSize          int     `env:"MAX_SAMPLE_SIZE" default:"12"`
	MinCommonGroundProb    float64 `env:"MIN_COMMON_GROUND_PROB" default:"0"`
	MinAgreeProbDifference float64 `env:"MIN_AGREE_PROB_DIFFERENCE" default:"0.3"`
	IncludePasses          bool    `env:"INCLUDE_PASSES" default:"false"`

	Engine stats.Config
}

// Load reads configuration from the environment, applying defaults and
// validating the engine overrides. DATABASE_URL is optional: without it the
// service only accepts inline analyses.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	cfg.Engine = stats.DefaultConfig()
	cfg.Engine.MinVoteCount = cfg.MinVoteCount
	cfg.Engine.MaxSampleSize = cfg.MaxSampleSize
	cfg.Engine.MinCommonGroundProb = cfg.MinCommonGroundProb
	cfg.Engine.MinAgreeProbDifference = cfg.MinAgreeProbDifference
	cfg.Engine.IncludePasses = cfg.IncludePasses

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.MinVoteCount < 1 {
		return fmt.Errorf("MIN_VOTE_COUNT must be at least 1, got %d", cfg.MinVoteCount)
	}
	if cfg.MaxSampleSize < 1 {
		return fmt.Errorf("MAX_SAMPLE_SIZE must be at least 1, got %d", cfg.MaxSampleSize)
	}
	if p := cfg.MinCommonGroundProb; p < 0 || p > 1 {
		return fmt.Errorf("MIN_COMMON_GROUND_PROB must be in [0,1], got %g", p)
	}
	if d := cfg.MinAgreeProbDifference; d < 0 || d > 1 {
		return fmt.Errorf("MIN_AGREE_PROB_DIFFERENCE must be in [0,1], got %g", d)
	}
	return nil
}
