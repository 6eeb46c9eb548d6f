package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the market tracker.
type Config struct {
	// Base URLs for the primary/backup endpoint pair. Both may point at the
	// same host, but a real deployment should configure a distinct mirror.
	PrimaryBaseURL string `mapstructure:"primary_base_url"`
	BackupBaseURL  string `mapstructure:"backup_base_url"`

	// Market query parameters
	VsCurrency string `mapstructure:"vs_currency"`
	Order      string `mapstructure:"order"`
	PerPage    int    `mapstructure:"per_page"`
	Page       int    `mapstructure:"page"`
	Precision  int    `mapstructure:"precision"`

	// Fetch/retry/poll timing
	FetchTimeout      time.Duration `mapstructure:"fetch_timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	InitialRetryDelay time.Duration `mapstructure:"initial_retry_delay"`
	RateLimitDelay    time.Duration `mapstructure:"rate_limit_delay"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`

	// Client-side pacing, in requests per second per endpoint (0 disables)
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`

	// Local state and observability
	WatchlistPath string `mapstructure:"watchlist_path"`
	MetricsAddr   string `mapstructure:"metrics_addr"`
}

// Load reads configuration from environment variables and optional config
// file. Environment variables take precedence over config file values.
//
// Expected environment variables (all optional):
//   - PRIMARY_BASE_URL, BACKUP_BASE_URL
//   - VS_CURRENCY, ORDER, PER_PAGE, PAGE, PRECISION
//   - FETCH_TIMEOUT, MAX_RETRIES, INITIAL_RETRY_DELAY, RATE_LIMIT_DELAY, POLL_INTERVAL
//   - REQUESTS_PER_SECOND
//   - WATCHLIST_PATH, METRICS_ADDR
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("") // No prefix, use full names
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("primary_base_url", "https://api.coingecko.com/api/v3")
	// The public API has no free mirror; point the backup at the same host
	// until a real mirror is configured.
	v.SetDefault("backup_base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("vs_currency", "usd")
	v.SetDefault("order", "market_cap_desc")
	v.SetDefault("per_page", 100)
	v.SetDefault("page", 1)
	v.SetDefault("precision", 2)
	v.SetDefault("fetch_timeout", "20s")
	v.SetDefault("max_retries", 5)
	v.SetDefault("initial_retry_delay", "1s")
	v.SetDefault("rate_limit_delay", "5s")
	v.SetDefault("poll_interval", "60s")
	v.SetDefault("requests_per_second", 0.5)
	v.SetDefault("watchlist_path", "watchlist.json")
	v.SetDefault("metrics_addr", "")

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.cryptotracker")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	// Bind environment variables
	v.BindEnv("primary_base_url", "PRIMARY_BASE_URL")
	v.BindEnv("backup_base_url", "BACKUP_BASE_URL")
	v.BindEnv("vs_currency", "VS_CURRENCY")
	v.BindEnv("order", "ORDER")
	v.BindEnv("per_page", "PER_PAGE")
	v.BindEnv("page", "PAGE")
	v.BindEnv("precision", "PRECISION")
	v.BindEnv("fetch_timeout", "FETCH_TIMEOUT")
	v.BindEnv("max_retries", "MAX_RETRIES")
	v.BindEnv("initial_retry_delay", "INITIAL_RETRY_DELAY")
	v.BindEnv("rate_limit_delay", "RATE_LIMIT_DELAY")
	v.BindEnv("poll_interval", "POLL_INTERVAL")
	v.BindEnv("requests_per_second", "REQUESTS_PER_SECOND")
	v.BindEnv("watchlist_path", "WATCHLIST_PATH")
	v.BindEnv("metrics_addr", "METRICS_ADDR")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	var problems []string
	if c.PrimaryBaseURL == "" {
		problems = append(problems, "primary_base_url must not be empty")
	}
	if c.BackupBaseURL == "" {
		problems = append(problems, "backup_base_url must not be empty")
	}
	if c.PerPage < 1 || c.PerPage > 250 {
		problems = append(problems, "per_page must be between 1 and 250")
	}
	if c.Page < 1 {
		problems = append(problems, "page must be at least 1")
	}
	if c.MaxRetries < 1 {
		problems = append(problems, "max_retries must be at least 1")
	}
	if c.FetchTimeout <= 0 {
		problems = append(problems, "fetch_timeout must be positive")
	}
	if c.InitialRetryDelay <= 0 {
		problems = append(problems, "initial_retry_delay must be positive")
	}
	if c.RateLimitDelay <= 0 {
		problems = append(problems, "rate_limit_delay must be positive")
	}
	if c.PollInterval <= 0 {
		problems = append(problems, "poll_interval must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
