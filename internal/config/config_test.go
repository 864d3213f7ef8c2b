package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{})
	require.NoError(t, err)

	require.Equal(t, ":8000", cfg.Server.ListenAddr)
	require.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	require.Equal(t, 384, cfg.Model.Dimensions)
	require.Equal(t, 2048, cfg.Model.MaxBatch)
	require.Equal(t, 4, cfg.Model.MaxConcurrency)
	require.True(t, cfg.Model.Warmup)
	require.True(t, cfg.Observability.EnableMetrics)
	require.False(t, cfg.Observability.EnableOTLP)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddingd.yaml")
	contents := `
server:
  listen_addr: ":9100"
  request_timeout: 45s
model:
  dimensions: 768
  max_concurrency: 2
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(Options{ConfigFile: path})
	require.NoError(t, err)
	require.Equal(t, ":9100", cfg.Server.ListenAddr)
	require.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	require.Equal(t, 768, cfg.Model.Dimensions)
	require.Equal(t, 2, cfg.Model.MaxConcurrency)
	// Untouched keys keep their defaults.
	require.Equal(t, 2048, cfg.Model.MaxBatch)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("EMBEDD_SERVER_LISTEN_ADDR", ":7070")
	t.Setenv("EMBEDD_MODEL_DIMENSIONS", "768")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Server.ListenAddr)
	require.Equal(t, 768, cfg.Model.Dimensions)
}

func TestValidateRejectsBadValues(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{
				ListenAddr:     ":8000",
				BodyLimitMB:    20,
				RequestTimeout: 30 * time.Second,
			},
			Model: ModelConfig{
				Dimensions:     384,
				MaxBatch:       2048,
				MaxConcurrency: 4,
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing listen addr", mutate: func(c *Config) { c.Server.ListenAddr = " " }},
		{name: "zero body limit", mutate: func(c *Config) { c.Server.BodyLimitMB = 0 }},
		{name: "zero request timeout", mutate: func(c *Config) { c.Server.RequestTimeout = 0 }},
		{name: "unsupported dimensions", mutate: func(c *Config) { c.Model.Dimensions = 512 }},
		{name: "zero max batch", mutate: func(c *Config) { c.Model.MaxBatch = 0 }},
		{name: "zero max concurrency", mutate: func(c *Config) { c.Model.MaxConcurrency = 0 }},
		{name: "otlp without endpoint", mutate: func(c *Config) {
			c.Observability.EnableOTLP = true
			c.Observability.OTLPEndpoint = ""
		}},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddingd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  request_timeout: soon\n"), 0o600))

	_, err := Load(Options{ConfigFile: path})
	require.Error(t, err)
}
