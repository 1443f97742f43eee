package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Contracts, "contracts are enabled by default")
	assert.Empty(t, cfg.Journal)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RUCKET_CONTRACTS", "false")
	t.Setenv("RUCKET_JOURNAL", "/tmp/journal.db")
	t.Setenv("RUCKET_LOG_LEVEL", "DEBUG")
	t.Setenv("RUCKET_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Config{
		Contracts: false,
		Journal:   "/tmp/journal.db",
		LogLevel:  "DEBUG",
		Format:    "json",
	}, cfg)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"bad bool", "RUCKET_CONTRACTS", "maybe", "parse env:"},
		{"bad format", "RUCKET_FORMAT", "yaml", "invalid format"},
		{"bad level", "RUCKET_LOG_LEVEL", "loud", "invalid log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
