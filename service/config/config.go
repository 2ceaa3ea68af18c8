package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	av "dealmetrics/service/api/alpha_vantage"
	y "dealmetrics/service/api/yahoo"
)

const (
	ProviderYahoo        = "yahoo"
	ProviderAlphaVantage = "alphavantage"
)

type Config struct {
	InputPath         string        `envconfig:"INPUT_PATH" default:"data/acquisitions_raw.csv" validate:"required"`
	OutputPath        string        `envconfig:"OUTPUT_PATH" default:"data/acquisitions_processed.csv" validate:"required"`
	Provider          string        `envconfig:"PROVIDER" default:"yahoo" validate:"oneof=yahoo alphavantage"`
	AlphaVantageKey   string        `envconfig:"ALPHAVANTAGE_API_KEY" validate:"required_if=Provider alphavantage"`
	BenchmarkTicker   string        `envconfig:"BENCHMARK_TICKER"`
	RequestTimeout    time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s" validate:"gt=0"`
	RequestsPerSecond float64       `envconfig:"REQUESTS_PER_SECOND" default:"2" validate:"gt=0"`
	Workers           int           `envconfig:"WORKERS" default:"1" validate:"min=1,max=64"`
	DatabaseUrl       string        `envconfig:"DATABASE_URL"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error fatal"`
}

// Load reads the environment, call godotenv first for .env support
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error loading config from env: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.BenchmarkTicker == "" {
		cfg.BenchmarkTicker = DefaultBenchmark(cfg.Provider)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

// DefaultBenchmark is the s&p 500 as each provider publishes it
func DefaultBenchmark(provider string) string {
	switch provider {
	case ProviderAlphaVantage:
		return av.BenchmarkDefault
	default:
		return y.BenchmarkDefault
	}
}

func (c *Config) PersistenceEnabled() bool {
	return c.DatabaseUrl != ""
}
