package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 1000000, cfg.Scan.Start)
	require.Equal(t, 9999999, cfg.Scan.End)
	require.Equal(t, 500, cfg.Scan.BatchSize)
	require.Equal(t, 8, cfg.Scan.Workers)
	require.Equal(t, "https://www.balticshipping.com", cfg.HTTP.BaseURL)
	require.Equal(t, 1500, cfg.Classify.MinBodyBytes)
	require.Equal(t, "none", cfg.GenAI.Backend)
	require.Equal(t, "fs", cfg.Storage.Backend)
	require.True(t, cfg.Logging.Development)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scan:
  start: 9100000
  end: 9200000
  batch_size: 250
genai:
  backend: ollama
  ollama:
    model: deepseek-r1:8b
classify:
  min_body_bytes: 2000
  not_found_phrases:
    - "no such vessel"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9100000, cfg.Scan.Start)
	require.Equal(t, 250, cfg.Scan.BatchSize)
	require.Equal(t, "ollama", cfg.GenAI.Backend)
	require.Equal(t, "deepseek-r1:8b", cfg.GenAI.Ollama.Model)
	require.Equal(t, 2000, cfg.Classify.MinBodyBytes)
	require.Equal(t, []string{"no such vessel"}, cfg.Classify.NotFoundPhrases)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SCAN_SCAN_WORKERS", "32")
	t.Setenv("SCAN_HTTP_BASE_URL", "https://registry.test")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 32, cfg.Scan.Workers)
	require.Equal(t, "https://registry.test", cfg.HTTP.BaseURL)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"range outside identifier space", func(c *Config) { c.Scan.Start = 99 }},
		{"inverted range", func(c *Config) { c.Scan.Start = 9200000; c.Scan.End = 9100000 }},
		{"zero batch", func(c *Config) { c.Scan.BatchSize = 0 }},
		{"missing base url", func(c *Config) { c.HTTP.BaseURL = "" }},
		{"anthropic without key", func(c *Config) { c.GenAI.Backend = "anthropic" }},
		{"unknown genai backend", func(c *Config) { c.GenAI.Backend = "oracle" }},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = "postgres" }},
		{"gcs snapshots without bucket", func(c *Config) { c.Storage.SnapshotBackend = "gcs" }},
		{"headless without parallelism", func(c *Config) { c.Headless.Enabled = true; c.Headless.MaxParallel = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
