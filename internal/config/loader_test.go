package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithFile_Defaults(t *testing.T) {
	cfg, err := LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8780, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.Generation.Provider)
	assert.Equal(t, "memory", cfg.Memory.WorkingStore)
	assert.True(t, cfg.Decision.OverwriteOnRematch)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
}

func TestLoadWithFile_YAMLOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  http_port: 9100
  shutdown_timeout: 5s
generation:
  model: qwen-max
  rate_limit: 4
memory:
  short_term_limit: 8
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, "qwen-max", cfg.Generation.Model)
	assert.Equal(t, 4.0, cfg.Generation.RateLimit)
	assert.Equal(t, 8, cfg.Memory.ShortTermLimit)
}

func TestLoadWithFile_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generation:\n  model: from-file\n"), 0o600))

	t.Setenv("RENOVAD_GENERATION_MODEL", "from-env")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Generation.Model)
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = -1 }},
		{"empty model", func(c *Config) { c.Generation.Model = "" }},
		{"zero rate limit", func(c *Config) { c.Generation.RateLimit = 0 }},
		{"unknown working store", func(c *Config) { c.Memory.WorkingStore = "redis" }},
		{"nats without url", func(c *Config) { c.Memory.WorkingStore = "nats"; c.Memory.NATSURL = "" }},
		{"retrieval without collection", func(c *Config) { c.Retrieval.Collection = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSecret_Redacted(t *testing.T) {
	t.Parallel()

	s := Secret("sk-something")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "sk-something", s.Value())
	assert.True(t, s.IsSet())

	out, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "sk-something")
}
