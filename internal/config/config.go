package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither a flag nor TICKERDESK_CONFIG names a file.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	API struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"api"`
	Dashboard struct {
		Symbol       string        `yaml:"symbol"`
		PollInterval time.Duration `yaml:"poll_interval"`
		ResetAmount  string        `yaml:"reset_amount"`
	} `yaml:"dashboard"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Path resolves the config file location.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("TICKERDESK_CONFIG"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads .env, then the YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TICKERDESK_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("TICKERDESK_SYMBOL"); v != "" {
		cfg.Dashboard.Symbol = v
	}
	if v := os.Getenv("TICKERDESK_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("TICKERDESK_POLL_INTERVAL: %w", err)
		}
		cfg.Dashboard.PollInterval = d
	}
	if v := os.Getenv("TICKERDESK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TICKERDESK_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8000"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.Dashboard.Symbol == "" {
		cfg.Dashboard.Symbol = "TSLA"
	}
	if cfg.Dashboard.PollInterval == 0 {
		cfg.Dashboard.PollInterval = 5 * time.Second
	}
	if cfg.Dashboard.ResetAmount == "" {
		cfg.Dashboard.ResetAmount = "15000"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.File == "" {
		cfg.Log.File = "tickerdesk.log"
	}

	return cfg, nil
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Dashboard.PollInterval < time.Second {
		return fmt.Errorf("dashboard.poll_interval must be at least 1s")
	}
	amount, err := decimal.NewFromString(c.Dashboard.ResetAmount)
	if err != nil || amount.IsNegative() {
		return fmt.Errorf("dashboard.reset_amount %q must be a non-negative number", c.Dashboard.ResetAmount)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Proxy != "" {
		if _, err := url.Parse(c.Proxy); err != nil {
			return fmt.Errorf("proxy: %w", err)
		}
	}
	return nil
}

// ResetAmount returns the default balance for a portfolio reset.
func (c *Config) ResetAmount() decimal.Decimal {
	d, err := decimal.NewFromString(c.Dashboard.ResetAmount)
	if err != nil {
		return decimal.NewFromInt(15000)
	}
	return d
}
