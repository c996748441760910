// Package config loads and validates scanner configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/r-uben/baltic-shipping/internal/imo"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Scan     ScanConfig     `mapstructure:"scan"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Classify ClassifyConfig `mapstructure:"classify"`
	Extract  ExtractConfig  `mapstructure:"extract"`
	GenAI    GenAIConfig    `mapstructure:"genai"`
	Storage  StorageConfig  `mapstructure:"storage"`
	DB       DBConfig       `mapstructure:"db"`
	Status   StatusConfig   `mapstructure:"status"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ScanConfig bounds the enumeration run.
type ScanConfig struct {
	Start          int    `mapstructure:"start"`
	End            int    `mapstructure:"end"`
	BatchSize      int    `mapstructure:"batch_size"`
	Workers        int    `mapstructure:"workers"`
	CheckpointPath string `mapstructure:"checkpoint_path"`
	Snapshots      bool   `mapstructure:"snapshots"`
}

// HTTPConfig configures the plain-HTTP fetcher and its retry behavior.
type HTTPConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	UserAgent        string `mapstructure:"user_agent"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	Concurrency      int    `mapstructure:"concurrency"`
	DelayMs          int    `mapstructure:"delay_ms"`
	MaxRetries       int    `mapstructure:"max_retries"`
	BackoffInitialMs int    `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int    `mapstructure:"backoff_max_ms"`
}

// HeadlessConfig configures the headless rendering subsystem.
type HeadlessConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	MaxParallel       int     `mapstructure:"max_parallel"`
	NavTimeoutSeconds int     `mapstructure:"nav_timeout_seconds"`
	RatePerSecond     float64 `mapstructure:"rate_per_second"`
	ExecPath          string  `mapstructure:"exec_path"`
	WaitAfterReadyMs  int     `mapstructure:"wait_after_ready_ms"`
}

// ClassifyConfig tunes the existence classifier.
type ClassifyConfig struct {
	MinBodyBytes    int      `mapstructure:"min_body_bytes"`
	NotFoundPhrases []string `mapstructure:"not_found_phrases"`
}

// ExtractConfig tunes the merge rule.
type ExtractConfig struct {
	NegativePhrases []string `mapstructure:"negative_phrases"`
}

// GenAIConfig selects and tunes the generative extraction backend.
type GenAIConfig struct {
	Backend     string          `mapstructure:"backend"` // none, ollama, anthropic
	Concurrency int             `mapstructure:"concurrency"`
	Ollama      OllamaConfig    `mapstructure:"ollama"`
	Anthropic   AnthropicConfig `mapstructure:"anthropic"`
}

// OllamaConfig points at a local Ollama server.
type OllamaConfig struct {
	Host           string  `mapstructure:"host"`
	Model          string  `mapstructure:"model"`
	Temperature    float64 `mapstructure:"temperature"`
	NumPredict     int     `mapstructure:"num_predict"`
	Seed           int     `mapstructure:"seed"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// AnthropicConfig selects the hosted model.
type AnthropicConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int64   `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// StorageConfig selects the record sink and the snapshot archive.
type StorageConfig struct {
	Backend         string `mapstructure:"backend"` // fs, postgres
	Dir             string `mapstructure:"dir"`
	SnapshotBackend string `mapstructure:"snapshot_backend"` // none, fs, gcs
	SnapshotDir     string `mapstructure:"snapshot_dir"`
	GCSBucket       string `mapstructure:"gcs_bucket"`
}

// DBConfig controls the Postgres pool when the postgres backend is active.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// StatusConfig controls the observability listener.
type StatusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scan.start", imo.Min)
	v.SetDefault("scan.end", imo.Max)
	v.SetDefault("scan.batch_size", 500)
	v.SetDefault("scan.workers", 8)
	v.SetDefault("scan.checkpoint_path", "data/checkpoint.json")
	v.SetDefault("scan.snapshots", false)
	v.SetDefault("http.base_url", "https://www.balticshipping.com")
	v.SetDefault("http.user_agent", "vessel-scan/0.1")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.concurrency", 8)
	v.SetDefault("http.delay_ms", 100)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_initial_ms", 250)
	v.SetDefault("http.backoff_max_ms", 5000)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 2)
	v.SetDefault("headless.nav_timeout_seconds", 45)
	v.SetDefault("headless.rate_per_second", 1)
	v.SetDefault("headless.wait_after_ready_ms", 500)
	v.SetDefault("classify.min_body_bytes", 1500)
	v.SetDefault("genai.backend", "none")
	v.SetDefault("genai.concurrency", 2)
	v.SetDefault("genai.ollama.host", "http://localhost:11434")
	v.SetDefault("genai.ollama.model", "qwen3:8b")
	v.SetDefault("genai.ollama.temperature", 0.1)
	v.SetDefault("genai.ollama.num_predict", 1500)
	v.SetDefault("genai.ollama.timeout_seconds", 120)
	v.SetDefault("genai.anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("genai.anthropic.max_tokens", 1500)
	v.SetDefault("storage.backend", "fs")
	v.SetDefault("storage.dir", "data/vessels")
	v.SetDefault("storage.snapshot_backend", "fs")
	v.SetDefault("storage.snapshot_dir", "data/snapshots")
	v.SetDefault("db.table", "vessels")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("status.enabled", false)
	v.SetDefault("status.addr", ":9090")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scan.Start < imo.Min || c.Scan.End > imo.Max {
		return fmt.Errorf("scan range must stay within [%d, %d]", imo.Min, imo.Max)
	}
	if c.Scan.Start > c.Scan.End {
		return fmt.Errorf("scan.start must not exceed scan.end")
	}
	if c.Scan.BatchSize <= 0 {
		return fmt.Errorf("scan.batch_size must be > 0")
	}
	if c.Scan.Workers <= 0 {
		return fmt.Errorf("scan.workers must be > 0")
	}
	if c.HTTP.BaseURL == "" {
		return fmt.Errorf("http.base_url is required")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	switch c.GenAI.Backend {
	case "none", "ollama":
	case "anthropic":
		if c.GenAI.Anthropic.APIKey == "" {
			return fmt.Errorf("genai.anthropic.api_key must be set for the anthropic backend")
		}
	default:
		return fmt.Errorf("genai.backend must be one of none, ollama, anthropic")
	}
	switch c.Storage.Backend {
	case "fs":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for the fs backend")
		}
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("storage.backend must be one of fs, postgres")
	}
	switch c.Storage.SnapshotBackend {
	case "none", "fs":
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket is required for the gcs snapshot backend")
		}
	default:
		return fmt.Errorf("storage.snapshot_backend must be one of none, fs, gcs")
	}
	if c.Status.Enabled && c.Status.Addr == "" {
		return fmt.Errorf("status.addr must be set when the status server is enabled")
	}
	return nil
}

// HTTPTimeout converts the configured fetch timeout into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// HTTPDelay converts the per-request delay into a duration.
func (c Config) HTTPDelay() time.Duration {
	return time.Duration(c.HTTP.DelayMs) * time.Millisecond
}

// BackoffInitial converts the initial retry backoff into a duration.
func (c Config) BackoffInitial() time.Duration {
	return time.Duration(c.HTTP.BackoffInitialMs) * time.Millisecond
}

// BackoffMax converts the retry backoff ceiling into a duration.
func (c Config) BackoffMax() time.Duration {
	return time.Duration(c.HTTP.BackoffMaxMs) * time.Millisecond
}
