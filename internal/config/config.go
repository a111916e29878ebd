// Package config loads runtime configuration from the environment with the
// BIOMCP_ prefix. Every knob has a default so the binary runs with zero setup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	CacheDir       string        `mapstructure:"cache_dir"`
	AnnotationTTL  time.Duration `mapstructure:"annotation_ttl"`
	SearchTTL      time.Duration `mapstructure:"search_ttl"`
	RedisURL       string        `mapstructure:"redis_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	HostInterval   time.Duration `mapstructure:"host_interval"`
	MaxRetries     int           `mapstructure:"max_retries"`

	HTTPPort int `mapstructure:"http_port"`

	NCBIAPIKey     string `mapstructure:"ncbi_api_key"`
	OncoKBToken    string `mapstructure:"oncokb_token"`
	AlphaGenomeKey string `mapstructure:"alphagenome_api_key"`
}

// Load reads configuration from BIOMCP_* environment variables with defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BIOMCP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("cache_dir", defaultCacheDir())
	v.SetDefault("annotation_ttl", 12*time.Hour)
	v.SetDefault("search_ttl", time.Hour)
	v.SetDefault("redis_url", "")
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("connect_timeout", 5*time.Second)
	v.SetDefault("max_body_bytes", int64(16<<20))
	v.SetDefault("host_interval", 300*time.Millisecond)
	v.SetDefault("max_retries", 3)
	v.SetDefault("http_port", 8765)

	// Gated-source credentials keep their historical unprefixed names.
	v.SetDefault("ncbi_api_key", os.Getenv("NCBI_API_KEY"))
	v.SetDefault("oncokb_token", os.Getenv("ONCOKB_TOKEN"))
	v.SetDefault("alphagenome_api_key", os.Getenv("ALPHAGENOME_API_KEY"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// BaseURL returns the base URL for a logical source, honoring the
// BIOMCP_<SOURCE>_BASE override used for test doubles and mirrors.
func BaseURL(source, fallback string) string {
	key := "BIOMCP_" + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(source)) + "_BASE"
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return strings.TrimRight(v, "/")
	}
	return strings.TrimRight(fallback, "/")
}

// EnsureCacheDir creates the cache directory tree used by the HTTP cache and
// full-text downloads.
func (c *Config) EnsureCacheDir() error {
	for _, sub := range []string{"http", "fulltext", "tmp"} {
		if err := os.MkdirAll(filepath.Join(c.CacheDir, sub), 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	return nil
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "biomcp")
	}
	return filepath.Join(os.TempDir(), "biomcp")
}
