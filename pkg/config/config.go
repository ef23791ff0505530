package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the explorer settings read from the environment. Command line
// flags override every field.
type Config struct {
	BaseSource   string        `env:"LANDSCAPE_BASE_SOURCE"`
	FullSource   string        `env:"LANDSCAPE_FULL_SOURCE"   envDefault:"https://landscape.cncf.io/data/full.json"`
	GitHubToken  string        `env:"GITHUB_TOKEN"`
	SearchLimit  int           `env:"LANDSCAPE_SEARCH_LIMIT"  envDefault:"20"`
	FetchTimeout time.Duration `env:"LANDSCAPE_FETCH_TIMEOUT" envDefault:"1m"`
	Output       string        `env:"LANDSCAPE_OUTPUT"        envDefault:"json"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SearchLimit < 0 {
		return Config{}, fmt.Errorf("LANDSCAPE_SEARCH_LIMIT must not be negative, got %d", cfg.SearchLimit)
	}
	return cfg, nil
}
