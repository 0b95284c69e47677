package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/harvest/importer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with an empty home.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FINNHUB_API_KEY", "")
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "https://finnhub.io/api/v1", cfg.Quote.BaseURL)
	assert.Equal(t, 10, cfg.Quote.MaxRetries)
	assert.Equal(t, time.Second, cfg.Quote.InitialBackoff)
	assert.Equal(t, 10, cfg.Quote.Concurrency)
	assert.Equal(t, "$.c", cfg.Quote.PricePath)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Empty(t, cfg.Cache.Path)
	assert.Equal(t, 30, cfg.WashSale.WindowDays)
	assert.Equal(t, importer.Lenient, cfg.ImportMode())
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "tlh.toml"), `
currency = "EUR"

[quote]
api_key = "secret"
max_retries = 3
initial_backoff = "250ms"

[cache]
ttl = "1h"
path = "prices.db"

[washsale]
window_days = 61

[import]
mode = "strict"
`)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, "secret", cfg.Quote.APIKey)
	assert.Equal(t, 3, cfg.Quote.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Quote.InitialBackoff)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "prices.db", cfg.Cache.Path)
	assert.Equal(t, 61, cfg.WashSale.WindowDays)
	assert.Equal(t, importer.Strict, cfg.ImportMode())
	assert.Equal(t, 10, cfg.Quote.Concurrency, "unset keys keep their default")
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "quote:\n  concurrency: 4\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Quote.Concurrency)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicit file must exist")
}

func TestLoad_Environment(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "tlh.toml"), "[quote]\nconcurrency = 4\n")
	t.Setenv("TLH_QUOTE_CONCURRENCY", "2")
	t.Setenv("TLH_WASHSALE_WINDOW_DAYS", "45")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Quote.Concurrency, "environment wins over the file")
	assert.Equal(t, 45, cfg.WashSale.WindowDays)
}

func TestLoad_APIKey(t *testing.T) {
	isolate(t)
	t.Setenv("FINNHUB_API_KEY", "from-finnhub")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-finnhub", cfg.Quote.APIKey)

	t.Setenv("TLH_QUOTE_API_KEY", "from-tlh")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-tlh", cfg.Quote.APIKey)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "TLH_CACHE_PATH=cache.db\n")
	t.Cleanup(func() { os.Unsetenv("TLH_CACHE_PATH") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "cache.db", cfg.Cache.Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"no currency", func(c *Config) { c.Currency = "" }, false},
		{"negative window", func(c *Config) { c.WashSale.WindowDays = -1 }, false},
		{"zero window", func(c *Config) { c.WashSale.WindowDays = 0 }, true},
		{"no concurrency", func(c *Config) { c.Quote.Concurrency = 0 }, false},
		{"negative retries", func(c *Config) { c.Quote.MaxRetries = -1 }, false},
		{"unknown mode", func(c *Config) { c.Import.Mode = "loose" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
