// Package config provides configuration management for the tlh tool.
//
// Settings are read, by increasing priority, from defaults, an optional
// tlh.toml (or .yaml, .json) file, a .env file and TLH_ prefixed
// environment variables: TLH_QUOTE_API_KEY overrides quote.api_key.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/etnz/harvest"
	"github.com/etnz/harvest/importer"
	"github.com/etnz/harvest/logging"
	"github.com/etnz/harvest/pricecache"
	"github.com/etnz/harvest/quote"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Currency string         `mapstructure:"currency"`
	Log      logging.Config `mapstructure:"log"`
	Quote    QuoteConfig    `mapstructure:"quote"`
	Cache    CacheConfig    `mapstructure:"cache"`
	WashSale WashSaleConfig `mapstructure:"washsale"`
	Import   ImportConfig   `mapstructure:"import"`
}

// QuoteConfig holds the price API configuration.
type QuoteConfig struct {
	APIKey         string        `mapstructure:"api_key"` // also read from FINNHUB_API_KEY
	BaseURL        string        `mapstructure:"base_url"`
	RateLimit      float64       `mapstructure:"rate_limit"` // requests per second
	MaxRetries     int           `mapstructure:"max_retries"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	Concurrency    int           `mapstructure:"concurrency"`
	PricePath      string        `mapstructure:"price_path"` // JSONPath of the price
	Timeout        time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds the price cache configuration.
type CacheConfig struct {
	TTL  time.Duration `mapstructure:"ttl"`
	Path string        `mapstructure:"path"` // SQLite file, in memory only if empty
}

// WashSaleConfig holds the wash-sale detection configuration.
type WashSaleConfig struct {
	WindowDays int `mapstructure:"window_days"`
}

// ImportConfig holds the CSV import configuration.
type ImportConfig struct {
	Mode string `mapstructure:"mode"` // lenient or strict
}

// EnvPrefix is the prefix of environment variables.
const EnvPrefix = "TLH"

func setDefaults(v *viper.Viper) {
	def := logging.DefaultConfig()
	v.SetDefault("currency", "USD")
	v.SetDefault("log.level", def.Level)
	v.SetDefault("log.file", def.File)
	v.SetDefault("log.max_size", def.MaxSize)
	v.SetDefault("log.max_backups", def.MaxBackups)
	v.SetDefault("log.max_age", def.MaxAge)
	v.SetDefault("quote.api_key", "")
	v.SetDefault("quote.base_url", quote.DefaultBaseURL)
	v.SetDefault("quote.rate_limit", quote.DefaultRateLimit)
	v.SetDefault("quote.max_retries", quote.DefaultMaxRetries)
	v.SetDefault("quote.initial_backoff", quote.DefaultInitialBackoff)
	v.SetDefault("quote.concurrency", quote.DefaultConcurrency)
	v.SetDefault("quote.price_path", quote.DefaultPricePath)
	v.SetDefault("quote.timeout", quote.DefaultTimeout)
	v.SetDefault("cache.ttl", pricecache.DefaultTTL)
	v.SetDefault("cache.path", "")
	v.SetDefault("washsale.window_days", harvest.DefaultWashSaleDays)
	v.SetDefault("import.mode", importer.Lenient.String())
}

// Default returns the configuration with no file and no environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := new(Config)
	// defaults always decode.
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load loads the configuration.
//
// If path is empty, tlh.* is searched in the working directory then in
// $HOME/.config/tlh, and its absence is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tlh")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "tlh"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if cfg.Quote.APIKey == "" {
		cfg.Quote.APIKey = os.Getenv("FINNHUB_API_KEY")
	}
}

// Validate checks the values that would make the tool misbehave.
func (c *Config) Validate() error {
	var errs []error
	if c.Currency == "" {
		errs = append(errs, errors.New("currency is required"))
	}
	if c.WashSale.WindowDays < 0 {
		errs = append(errs, fmt.Errorf("washsale.window_days must be positive, got %d", c.WashSale.WindowDays))
	}
	if c.Quote.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("quote.concurrency must be at least 1, got %d", c.Quote.Concurrency))
	}
	if c.Quote.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("quote.max_retries must be positive, got %d", c.Quote.MaxRetries))
	}
	if _, err := importer.ParseMode(c.Import.Mode); err != nil {
		errs = append(errs, fmt.Errorf("import.mode: %w", err))
	}
	return errors.Join(errs...)
}

// ImportMode returns the configured import mode.
func (c *Config) ImportMode() importer.Mode {
	m, _ := importer.ParseMode(c.Import.Mode)
	return m
}
