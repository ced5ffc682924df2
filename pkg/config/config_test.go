package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `bind_addr: "0.0.0.0"
port: "9090"
env: "test"
catalog:
  url: "https://cervezafortuna.com/inicio/cervezas/"
  ttl_hours: 12
  request_timeout_seconds: 5
  max_retries: 1
  cache_dir: ""
session:
  store: "memory"
  idle_timeout_hours: 6
llm:
  provider: "anthropic"
  model: "claude-sonnet-4-5-20250929"
`

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	t.Chdir(dir)
}

func TestLoadValidConfig(t *testing.T) {
	writeConfig(t, validYAML)

	cfg, err := Load("1.2.3")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.BindAddr)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, 12*time.Hour, cfg.Catalog.TTL())
	assert.Equal(t, 5*time.Second, cfg.Catalog.RequestTimeout())
	assert.Equal(t, 6*time.Hour, cfg.Session.IdleTimeout())
	assert.Equal(t, LLMProviderAnthropic, cfg.LLM.Provider)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	writeConfig(t, validYAML)
	t.Setenv("PORT", "7070")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_PASSWORD", "hunter2")

	cfg, err := Load("dev")
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, "hunter2", cfg.Session.RedisPassword)
}

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.yaml")
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad catalog url",
			mutate:  func(c *Config) { c.Catalog.URL = "not a url" },
			wantErr: "valid absolute URL",
		},
		{
			name:    "zero ttl",
			mutate:  func(c *Config) { c.Catalog.TTLHours = 0 },
			wantErr: "ttl_hours",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.Catalog.MaxRetries = -1 },
			wantErr: "max_retries",
		},
		{
			name:    "unknown session store",
			mutate:  func(c *Config) { c.Session.Store = "dynamo" },
			wantErr: "session store",
		},
		{
			name:    "unknown llm provider",
			mutate:  func(c *Config) { c.LLM.Provider = "bard" },
			wantErr: "llm provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, validYAML)
			cfg, err := Load("dev")
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
