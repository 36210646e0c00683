// Package config holds the settings of the analytics engines and the fin CLI.
//
// A configuration is read from a YAML (or JSON) file, then overridden by
// ANALYTICS_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/etnz/analytics"
	"github.com/etnz/analytics/eodhd"
	"github.com/etnz/analytics/performance"
	"github.com/etnz/analytics/reconstruct"
	"github.com/etnz/analytics/risk"
	"github.com/etnz/analytics/tax"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ANALYTICS_"

type Config struct {
	Log         LogConfig         `yaml:"log" json:"log" envPrefix:"LOG_"`
	Store       StoreConfig       `yaml:"store" json:"store" envPrefix:"STORE_"`
	Cache       CacheConfig       `yaml:"cache" json:"cache" envPrefix:"CACHE_"`
	Performance PerformanceConfig `yaml:"performance" json:"performance" envPrefix:"PERFORMANCE_"`
	Risk        RiskConfig        `yaml:"risk" json:"risk" envPrefix:"RISK_"`
	Tax         tax.Options       `yaml:"tax" json:"tax" envPrefix:"TAX_"`
	EODHD       EODHDConfig       `yaml:"eodhd" json:"eodhd" envPrefix:"EODHD_"`

	// Currency is the reporting currency used to display amounts.
	Currency string `yaml:"currency" json:"currency" env:"CURRENCY"`
	// Concurrency bounds every parallel loop, unbounded when 0.
	Concurrency int `yaml:"concurrency" json:"concurrency" env:"CONCURRENCY"`
}

type LogConfig struct {
	Level       string `yaml:"level" json:"level" env:"LEVEL"`
	Development bool   `yaml:"development" json:"development" env:"DEVELOPMENT"`
}

// StoreConfig locates the dataset: a .jsonl dataset or a SQLite database.
type StoreConfig struct {
	Path string `yaml:"path" json:"path" env:"PATH"`
}

// Kind is "sqlite" for .db/.sqlite paths, "jsonl" otherwise.
func (s StoreConfig) Kind() string {
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite"
	}
	return "jsonl"
}

// CacheConfig selects the benchmark cache: redis when RedisAddr is set, in memory otherwise.
type CacheConfig struct {
	MaxEntries  int           `yaml:"max_entries" json:"max_entries" env:"MAX_ENTRIES"`
	RedisAddr   string        `yaml:"redis_addr" json:"redis_addr" env:"REDIS_ADDR"`
	RedisPrefix string        `yaml:"redis_prefix" json:"redis_prefix" env:"REDIS_PREFIX"`
	TTL         time.Duration `yaml:"ttl" json:"ttl" env:"TTL"`
}

// EODHDConfig configures the eodhd.com price provider.
type EODHDConfig struct {
	Token   string `yaml:"token,omitempty" json:"token,omitempty" env:"TOKEN"`
	BaseURL string `yaml:"base_url" json:"base_url" env:"BASE_URL"`
}

type PerformanceConfig struct {
	RiskFreeRate float64 `yaml:"risk_free_rate" json:"risk_free_rate" env:"RISK_FREE_RATE"`
	// Tolerance is the relative tolerance used to trust a holding ledger.
	Tolerance float64 `yaml:"tolerance" json:"tolerance" env:"TOLERANCE"`
	// StepDays is the sampling interval of valuation series.
	StepDays int `yaml:"step_days" json:"step_days" env:"STEP_DAYS"`
}

type RiskConfig struct {
	Benchmark   string `yaml:"benchmark" json:"benchmark" env:"BENCHMARK"`
	TopHoldings int    `yaml:"top_holdings" json:"top_holdings" env:"TOP_HOLDINGS"`
	Window      int    `yaml:"window" json:"window" env:"WINDOW"`
	Every       int    `yaml:"every" json:"every" env:"EVERY"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log:   LogConfig{Level: "info"},
		Store: StoreConfig{Path: "dataset.jsonl"},
		Cache: CacheConfig{MaxEntries: 256, RedisPrefix: "analytics:", TTL: 24 * time.Hour},
		Performance: PerformanceConfig{
			RiskFreeRate: float64(performance.DefaultRiskFreeRate),
			Tolerance:    reconstruct.DefaultTolerance,
			StepDays:     7,
		},
		Risk: RiskConfig{
			Benchmark:   risk.DefaultBenchmark,
			TopHoldings: risk.DefaultTopHoldings,
			Window:      risk.DefaultWindow,
			Every:       risk.DefaultEvery,
		},
		Tax:      tax.DefaultOptions(),
		EODHD:    EODHDConfig{BaseURL: eodhd.DefaultBaseURL},
		Currency: "USD",
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{analytics.ErrInvalidInput}, args...)...))
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown log level %q", analytics.ErrInvalidInput, c.Log.Level))
	}
	check(c.Store.Path != "", "store path is required")
	check(c.Cache.MaxEntries >= 0, "cache max_entries must be >= 0, got %d", c.Cache.MaxEntries)
	check(c.Cache.TTL >= 0, "cache ttl must be >= 0, got %v", c.Cache.TTL)
	check(c.Performance.Tolerance > 0 && c.Performance.Tolerance < 1, "tolerance must be in (0, 1), got %v", c.Performance.Tolerance)
	check(c.Performance.StepDays > 0, "step_days must be positive, got %d", c.Performance.StepDays)
	check(c.Risk.Benchmark != "", "risk benchmark symbol is required")
	check(c.Risk.TopHoldings > 0, "top_holdings must be positive, got %d", c.Risk.TopHoldings)
	check(c.Risk.Window > 0, "risk window must be positive, got %d", c.Risk.Window)
	check(c.Risk.Every > 0, "risk every must be positive, got %d", c.Risk.Every)
	check(c.Tax.ShortTermRate >= 0 && c.Tax.ShortTermRate <= 1, "short_term_rate must be in [0, 1], got %v", c.Tax.ShortTermRate)
	check(c.Tax.LongTermRate >= 0 && c.Tax.LongTermRate <= 1, "long_term_rate must be in [0, 1], got %v", c.Tax.LongTermRate)
	check(c.Tax.HarvestThreshold >= 0, "harvest_threshold must be >= 0, got %v", c.Tax.HarvestThreshold)
	check(c.EODHD.BaseURL != "", "eodhd base_url is required")
	check(c.Concurrency >= 0, "concurrency must be >= 0, got %d", c.Concurrency)
	return errors.Join(errs...)
}

// LoadFromFile reads the file at path on top of Default, applies the
// environment overrides and validates the result.
// An empty path skips the file.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			// JSON is mostly YAML, but keep the JSON error if both fail.
			if jerr := json.Unmarshal(data, cfg); jerr != nil {
				return nil, fmt.Errorf("could not parse config %q: %w", path, errors.Join(err, jerr))
			}
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("could not read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as JSON when path ends with .json, YAML otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("could not encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write config %q: %w", path, err)
	}
	return nil
}
