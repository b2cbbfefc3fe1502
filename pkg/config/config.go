// Package config loads the scanner configuration from config.toml and the
// process environment, and constructs the shared zap logger.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Scanner ScannerConfig `mapstructure:"scanner"`
	Risk    RiskConfig    `mapstructure:"risk"`
	Kalshi  KalshiConfig  `mapstructure:"kalshi"`

	// Environment-sourced settings, not present in config.toml.
	APIKeyID    string
	DryRun      bool
	DatabaseURL string
	HTTPPort    string
}

// ScannerConfig controls the scan loop cadence and which series are scanned.
type ScannerConfig struct {
	IntervalSecs    uint64   `mapstructure:"interval_secs"`
	SeriesFilter    []string `mapstructure:"series_filter"`
	ScanDelayMs     uint64   `mapstructure:"scan_delay_ms"`
	MinBrackets     int      `mapstructure:"min_brackets"`
	MaxBrackets     int      `mapstructure:"max_brackets"`
	SeriesCacheSecs uint64   `mapstructure:"series_cache_secs"`
}

// Interval returns the pause between scan cycles.
func (s ScannerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSecs) * time.Second
}

// ScanDelay returns the minimum spacing between exchange reads.
func (s ScannerConfig) ScanDelay() time.Duration {
	return time.Duration(s.ScanDelayMs) * time.Millisecond
}

// SeriesCacheTTL returns how long the cached series catalog stays fresh.
func (s ScannerConfig) SeriesCacheTTL() time.Duration {
	return time.Duration(s.SeriesCacheSecs) * time.Second
}

// RiskConfig holds the profitability gates and sizing for detected arbs.
// MaxOpenPositions is advisory; the enforced cap lives in the risk limiter.
type RiskConfig struct {
	MinNetProfitCents int64   `mapstructure:"min_net_profit_cents"`
	MinROIPct         float64 `mapstructure:"min_roi_pct"`
	PositionSize      int64   `mapstructure:"position_size"`
	MaxOpenPositions  int     `mapstructure:"max_open_positions"`
}

// KalshiConfig points at the exchange REST API and the signing key.
type KalshiConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	RSAKeyPath string `mapstructure:"rsa_key_path"`
}

//nolint:gochecknoglobals // required-key list shared by Load and tests
var requiredKeys = []string{
	"scanner.interval_secs",
	"risk.min_net_profit_cents",
	"risk.min_roi_pct",
	"risk.position_size",
	"risk.max_open_positions",
	"kalshi.base_url",
	"kalshi.rsa_key_path",
}

// Load reads config.toml from path and merges environment settings.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetDefault("scanner.series_filter", []string{})
	v.SetDefault("scanner.scan_delay_ms", 150)
	v.SetDefault("scanner.min_brackets", 2)
	v.SetDefault("scanner.max_brackets", 15)
	v.SetDefault("scanner.series_cache_secs", 300)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	for _, key := range requiredKeys {
		if !v.IsSet(key) {
			return nil, fmt.Errorf("config key %q is required", key)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.APIKeyID = os.Getenv("KALSHI_API_KEY_ID")
	cfg.DryRun = isTruthy(os.Getenv("DRY_RUN"))
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.HTTPPort = getEnvOrDefault("HTTP_SERVER_PORT", "8080")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.APIKeyID == "" {
		return fmt.Errorf("KALSHI_API_KEY_ID must be set in the environment")
	}

	if c.Scanner.IntervalSecs == 0 {
		return fmt.Errorf("scanner.interval_secs must be > 0")
	}

	if c.Scanner.MinBrackets < 2 {
		return fmt.Errorf("scanner.min_brackets must be >= 2, got %d", c.Scanner.MinBrackets)
	}

	if c.Scanner.MaxBrackets < c.Scanner.MinBrackets {
		return fmt.Errorf("scanner.max_brackets must be >= scanner.min_brackets, got %d < %d",
			c.Scanner.MaxBrackets, c.Scanner.MinBrackets)
	}

	if c.Risk.MinNetProfitCents < 0 {
		return fmt.Errorf("risk.min_net_profit_cents must be >= 0, got %d", c.Risk.MinNetProfitCents)
	}

	if c.Risk.MinROIPct < 0 {
		return fmt.Errorf("risk.min_roi_pct must be >= 0, got %f", c.Risk.MinROIPct)
	}

	if c.Risk.PositionSize < 1 {
		return fmt.Errorf("risk.position_size must be >= 1, got %d", c.Risk.PositionSize)
	}

	if c.Risk.MaxOpenPositions < 1 {
		return fmt.Errorf("risk.max_open_positions must be >= 1, got %d", c.Risk.MaxOpenPositions)
	}

	if c.Kalshi.BaseURL == "" {
		return fmt.Errorf("kalshi.base_url cannot be empty")
	}

	if strings.HasSuffix(c.Kalshi.BaseURL, "/") {
		return fmt.Errorf("kalshi.base_url must not end with a slash, got %q", c.Kalshi.BaseURL)
	}

	if c.Kalshi.RSAKeyPath == "" {
		return fmt.Errorf("kalshi.rsa_key_path cannot be empty")
	}

	return nil
}

func isTruthy(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1":
		return true
	default:
		return false
	}
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
