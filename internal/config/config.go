// Package config loads AirdropRun configuration from YAML with defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Cache   CacheConfig   `yaml:"cache"`
	Llama   LlamaConfig   `yaml:"llama"`
	Scan    ScanConfig    `yaml:"scan"`
	Scoring ScoringConfig `yaml:"scoring"`
	Server  ServerConfig  `yaml:"server"`
}

// CacheConfig controls the file-backed response cache.
type CacheConfig struct {
	Dir        string `yaml:"dir"`
	TTLSeconds int64  `yaml:"ttl_seconds"`
}

// TTL returns the cache lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// LlamaConfig controls the DeFiLlama API client.
type LlamaConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	RatePerMinute  int    `yaml:"rate_per_minute"`
	MaxRetries     int    `yaml:"max_retries"`
}

// Timeout returns the per-request timeout as a duration.
func (c LlamaConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ScanConfig controls batch run defaults.
type ScanConfig struct {
	MinTVLUSD float64 `yaml:"min_tvl_usd"`
	TopN      int     `yaml:"top_n"`
}

// ScoringConfig carries the tunable thresholds of the scoring model.
// Criterion point values are part of the published ranking contract and
// live in the domain package; only thresholds and curves are
// configurable.
type ScoringConfig struct {
	FundingMinUSD     float64  `yaml:"funding_min_usd"`
	FundingCeilingUSD float64  `yaml:"funding_ceiling_usd"`
	HiddenGemTVLUSD   float64  `yaml:"hidden_gem_tvl_usd"`
	GrowthWindowDays  int      `yaml:"growth_window_days"`
	ClampTiers        bool     `yaml:"clamp_tiers"`
	HotCategories     []string `yaml:"hot_categories"`
}

// ServerConfig controls the local dashboard HTTP server.
type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

// ReadTimeout returns the server read timeout as a duration.
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the server write timeout as a duration.
func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// Default returns the built-in configuration used when no file is present.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Dir:        ".airdroprun/cache",
			TTLSeconds: 6 * 60 * 60,
		},
		Llama: LlamaConfig{
			BaseURL:        "https://api.llama.fi",
			TimeoutSeconds: 60,
			RatePerMinute:  30,
			MaxRetries:     3,
		},
		Scan: ScanConfig{
			MinTVLUSD: 100_000,
			TopN:      20,
		},
		Scoring: ScoringConfig{
			FundingMinUSD:     1_000_000,
			FundingCeilingUSD: 50_000_000,
			HiddenGemTVLUSD:   5_000_000,
			GrowthWindowDays:  7,
			ClampTiers:        false,
			HotCategories: []string{
				"dexs", "derivatives", "yield", "cdp", "perpetuals", "perps",
				"cross-chain", "privacy", "yield aggregator", "restaking", "bridge",
			},
		},
		Server: ServerConfig{
			Host:                "127.0.0.1",
			Port:                8084,
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 10,
		},
	}
}

// Load reads path and overlays it on the defaults. A missing file is not
// an error: the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be positive, got %d", c.Cache.TTLSeconds)
	}
	if c.Llama.BaseURL == "" {
		return fmt.Errorf("llama.base_url must not be empty")
	}
	if c.Llama.RatePerMinute <= 0 {
		return fmt.Errorf("llama.rate_per_minute must be positive, got %d", c.Llama.RatePerMinute)
	}
	if c.Scoring.FundingCeilingUSD <= c.Scoring.FundingMinUSD {
		return fmt.Errorf("scoring.funding_ceiling_usd (%.0f) must exceed funding_min_usd (%.0f)",
			c.Scoring.FundingCeilingUSD, c.Scoring.FundingMinUSD)
	}
	if c.Scoring.GrowthWindowDays <= 0 {
		return fmt.Errorf("scoring.growth_window_days must be positive, got %d", c.Scoring.GrowthWindowDays)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}
