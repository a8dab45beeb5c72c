package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8000", cfg.Server.Address)
	assert.Equal(t, int64(50*1024*1024), cfg.Limits.MaxFileSize)
	assert.Equal(t, uint64(500*1024*1024), cfg.Limits.MaxMemoryIncrease)
	assert.Equal(t, 30*time.Second, cfg.Limits.DownloadTimeout)
	assert.Equal(t, 120*time.Second, cfg.Limits.ConversionTimeout)
	assert.Equal(t, []string{"http", "https"}, cfg.Security.AllowedSchemes)
	assert.Equal(t, []int{80, 443, 8080, 8443}, cfg.Security.AllowedPorts)
	assert.Equal(t, 10, cfg.Security.MaxRedirects)
	assert.Equal(t, "MarkItDown-Service/1.0", cfg.HTTP.UserAgent)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: ":9000"
limits:
  max_file_size: 1048576
log:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, int64(1048576), cfg.Limits.MaxFileSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.Limits.DownloadTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MARKITDOWN_SERVER_ADDRESS", ":7070")
	t.Setenv("MARKITDOWN_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty address", func(c *Config) { c.Server.Address = "" }},
		{"zero file size", func(c *Config) { c.Limits.MaxFileSize = 0 }},
		{"negative download timeout", func(c *Config) { c.Limits.DownloadTimeout = -time.Second }},
		{"zero conversion timeout", func(c *Config) { c.Limits.ConversionTimeout = 0 }},
		{"no schemes", func(c *Config) { c.Security.AllowedSchemes = nil }},
		{"bad scheme", func(c *Config) { c.Security.AllowedSchemes = []string{"gopher"} }},
		{"no ports", func(c *Config) { c.Security.AllowedPorts = nil }},
		{"negative redirects", func(c *Config) { c.Security.MaxRedirects = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
