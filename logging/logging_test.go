package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn"}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("ticker", "AAPL").Msg("oversell")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "oversell")
	assert.Contains(t, out, "ticker=AAPL")
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tlh.log")
	cfg := DefaultConfig()
	cfg.Level = "debug"
	cfg.File = path

	var buf bytes.Buffer
	logger := New(cfg, &buf)
	logger.Debug().Msg("fetching")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"fetching"`)
	assert.Contains(t, buf.String(), "fetching")
}

func TestNew_NoWriter(t *testing.T) {
	logger := New(DefaultConfig(), nil)
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
