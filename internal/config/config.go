// Package config loads server configuration from an optional YAML file
// and MARKITDOWN_* environment variables, with sane defaults for every
// knob.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nicholasgasior/markitdown-server/internal/logger"
)

// Config is the full server configuration.
type Config struct {
	Server   Server        `mapstructure:"server"`
	Limits   Limits        `mapstructure:"limits"`
	Security Security      `mapstructure:"security"`
	HTTP     HTTPClient    `mapstructure:"http"`
	Log      logger.Config `mapstructure:"log"`
}

// Server holds the HTTP listener settings.
type Server struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Limits bounds the resources a single conversion may consume.
type Limits struct {
	MaxFileSize       int64         `mapstructure:"max_file_size"`
	MaxMemoryIncrease uint64        `mapstructure:"max_memory_increase"`
	DownloadTimeout   time.Duration `mapstructure:"download_timeout"`
	ConversionTimeout time.Duration `mapstructure:"conversion_timeout"`
}

// Security holds the URL validation policy knobs.
type Security struct {
	AllowedSchemes []string `mapstructure:"allowed_schemes"`
	AllowedPorts   []int    `mapstructure:"allowed_ports"`
	MaxRedirects   int      `mapstructure:"max_redirects"`
}

// HTTPClient holds the shared download client settings.
type HTTPClient struct {
	UserAgent           string `mapstructure:"user_agent"`
	MaxConnections      int    `mapstructure:"max_connections"`
	MaxIdleConnsPerHost int    `mapstructure:"max_idle_conns_per_host"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 180*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("limits.max_file_size", int64(50*1024*1024))
	v.SetDefault("limits.max_memory_increase", uint64(500*1024*1024))
	v.SetDefault("limits.download_timeout", 30*time.Second)
	v.SetDefault("limits.conversion_timeout", 120*time.Second)

	v.SetDefault("security.allowed_schemes", []string{"http", "https"})
	v.SetDefault("security.allowed_ports", []int{80, 443, 8080, 8443})
	v.SetDefault("security.max_redirects", 10)

	v.SetDefault("http.user_agent", "MarkItDown-Service/1.0")
	v.SetDefault("http.max_connections", 20)
	v.SetDefault("http.max_idle_conns_per_host", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.development", false)
}

// Load reads configuration from path (may be empty) and the
// environment, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MARKITDOWN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without touching the
// filesystem or environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &cfg
}

// Validate rejects configurations that would make the server unsafe or
// inoperable.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Limits.MaxFileSize <= 0 {
		return fmt.Errorf("limits.max_file_size must be positive")
	}
	if c.Limits.DownloadTimeout <= 0 {
		return fmt.Errorf("limits.download_timeout must be positive")
	}
	if c.Limits.ConversionTimeout <= 0 {
		return fmt.Errorf("limits.conversion_timeout must be positive")
	}
	if len(c.Security.AllowedSchemes) == 0 {
		return fmt.Errorf("security.allowed_schemes must not be empty")
	}
	for _, s := range c.Security.AllowedSchemes {
		if s != "http" && s != "https" {
			return fmt.Errorf("security.allowed_schemes: unsupported scheme %q", s)
		}
	}
	if len(c.Security.AllowedPorts) == 0 {
		return fmt.Errorf("security.allowed_ports must not be empty")
	}
	if c.Security.MaxRedirects < 0 {
		return fmt.Errorf("security.max_redirects must not be negative")
	}
	return nil
}
