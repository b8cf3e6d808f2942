// Package config handles configuration loading and validation for the AHAB backend.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server     ServerConfig     `toml:"server" yaml:"server" json:"server"`
	Generation GenerationConfig `toml:"generation" yaml:"generation" json:"generation"`
	ROC        ROCConfig        `toml:"roc" yaml:"roc" json:"roc"`
	Sessions   SessionsConfig   `toml:"sessions" yaml:"sessions" json:"sessions"`
	RateLimit  RateLimitConfig  `toml:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
	Catalog    CatalogConfig    `toml:"catalog" yaml:"catalog" json:"catalog"`
	Log        LogConfig        `toml:"log" yaml:"log" json:"log"`
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Port            int      `toml:"port" yaml:"port" json:"port"`
	AllowedOrigins  []string `toml:"allowed_origins" yaml:"allowed_origins" json:"allowed_origins"`
	ShutdownTimeout string   `toml:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"` // e.g. "10s"
}

// GenerationConfig controls the synthetic candidate generator.
type GenerationConfig struct {
	SampleCount    int    `toml:"sample_count" yaml:"sample_count" json:"sample_count"`
	MaxSampleCount int    `toml:"max_sample_count" yaml:"max_sample_count" json:"max_sample_count"`
	Seed           uint64 `toml:"seed" yaml:"seed" json:"seed"` // 0 = random
}

// ROCConfig controls curve synthesis.
type ROCConfig struct {
	Monotonic bool `toml:"monotonic" yaml:"monotonic" json:"monotonic"`
}

// SessionsConfig bounds the in-memory session store.
type SessionsConfig struct {
	MaxSessions int    `toml:"max_sessions" yaml:"max_sessions" json:"max_sessions"`
	TTL         string `toml:"ttl" yaml:"ttl" json:"ttl"` // e.g. "30m", empty = never
}

// RateLimitConfig limits session creation.
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second" json:"requests_per_second"` // 0 disables
	Burst             int     `toml:"burst" yaml:"burst" json:"burst"`
}

// CatalogConfig points at an optional catalog override.
type CatalogConfig struct {
	Path string `toml:"path" yaml:"path" json:"path"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level" json:"level"`    // debug, info, warn, error
	Format string `toml:"format" yaml:"format" json:"format"` // text or json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8001,
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://127.0.0.1:3000",
			},
			ShutdownTimeout: "10s",
		},
		Generation: GenerationConfig{
			SampleCount:    150,
			MaxSampleCount: 10000,
		},
		Sessions: SessionsConfig{
			MaxSessions: 256,
			TTL:         "30m",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration file at path, applies environment overrides
// and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

func loadConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch ext := filepath.Ext(path); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides.
// PORT is honoured for compatibility with container platforms.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("AHAB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("AHAB_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("AHAB_SAMPLE_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Generation.SampleCount = n
		}
	}
	if v := os.Getenv("AHAB_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Generation.Seed = seed
		}
	}
	if v := os.Getenv("AHAB_ROC_MONOTONIC"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.ROC.Monotonic = b
		}
	}
	if v := os.Getenv("AHAB_CATALOG_PATH"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("AHAB_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("AHAB_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if _, err := parseDuration(c.Server.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout: %w", err))
	}
	if c.Generation.SampleCount <= 0 {
		errs = append(errs, fmt.Errorf("generation.sample_count must be positive, got %d", c.Generation.SampleCount))
	}
	if c.Generation.MaxSampleCount < c.Generation.SampleCount {
		errs = append(errs, fmt.Errorf("generation.max_sample_count %d below sample_count %d",
			c.Generation.MaxSampleCount, c.Generation.SampleCount))
	}
	if c.Sessions.MaxSessions < 0 {
		errs = append(errs, errors.New("sessions.max_sessions must not be negative"))
	}
	if _, err := parseDuration(c.Sessions.TTL); err != nil {
		errs = append(errs, fmt.Errorf("sessions.ttl: %w", err))
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("rate_limit.requests_per_second must not be negative"))
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("rate_limit.burst must be positive when limiting is enabled"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}

	return errors.Join(errs...)
}

// ShutdownTimeout returns the parsed graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := parseDuration(c.Server.ShutdownTimeout)
	return d
}

// SessionTTL returns the parsed session ttl, zero meaning no expiry.
func (c *Config) SessionTTL() time.Duration {
	d, _ := parseDuration(c.Sessions.TTL)
	return d
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", s)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
