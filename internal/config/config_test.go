package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "AHAB_PORT", "AHAB_SAMPLE_COUNT", "AHAB_SEED", "AHAB_CATALOG_PATH"} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8001, cfg.Server.Port)
	assert.Equal(t, ":8001", cfg.Addr())
	assert.Equal(t, 150, cfg.Generation.SampleCount)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL())
	assert.False(t, cfg.ROC.Monotonic)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Generation, cfg.Generation)
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "ahab.toml", `
[server]
port = 9090
allowed_origins = ["https://ahab.example"]

[generation]
sample_count = 300
seed = 42

[roc]
monotonic = true

[sessions]
ttl = ""

[log]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://ahab.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 300, cfg.Generation.SampleCount)
	assert.Equal(t, 10000, cfg.Generation.MaxSampleCount, "unset keys keep defaults")
	assert.Equal(t, uint64(42), cfg.Generation.Seed)
	assert.True(t, cfg.ROC.Monotonic)
	assert.Zero(t, cfg.SessionTTL())
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "ahab.yaml", `
server:
  port: 7000
rate_limit:
  requests_per_second: 0
catalog:
  path: /etc/ahab/catalog.toml
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Zero(t, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, "/etc/ahab/catalog.toml", cfg.Catalog.Path)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "ahab.ini", "port=1")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8100")
	t.Setenv("AHAB_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("AHAB_SAMPLE_COUNT", "42")
	t.Setenv("AHAB_SEED", "7")
	t.Setenv("AHAB_ROC_MONOTONIC", "true")
	t.Setenv("AHAB_LOG_LEVEL", "warn")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, 8100, cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 42, cfg.Generation.SampleCount)
	assert.Equal(t, uint64(7), cfg.Generation.Seed)
	assert.True(t, cfg.ROC.Monotonic)
	assert.Equal(t, "warn", cfg.Log.Level)

	t.Setenv("AHAB_PORT", "8200")
	cfg.ApplyEnvOverrides()
	assert.Equal(t, 8200, cfg.Server.Port, "AHAB_PORT wins over PORT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }},
		{name: "bad shutdown timeout", mutate: func(c *Config) { c.Server.ShutdownTimeout = "soon" }},
		{name: "zero samples", mutate: func(c *Config) { c.Generation.SampleCount = 0 }},
		{name: "max below default", mutate: func(c *Config) { c.Generation.MaxSampleCount = 10 }},
		{name: "negative sessions", mutate: func(c *Config) { c.Sessions.MaxSessions = -1 }},
		{name: "negative ttl", mutate: func(c *Config) { c.Sessions.TTL = "-5m" }},
		{name: "negative rate", mutate: func(c *Config) { c.RateLimit.RequestsPerSecond = -1 }},
		{name: "zero burst", mutate: func(c *Config) { c.RateLimit.Burst = 0 }},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
