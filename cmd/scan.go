package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/r-uben/baltic-shipping/internal/checkpoint"
	"github.com/r-uben/baltic-shipping/internal/config"
	"github.com/r-uben/baltic-shipping/internal/extract"
	"github.com/r-uben/baltic-shipping/internal/fetch"
	"github.com/r-uben/baltic-shipping/internal/genai"
	"github.com/r-uben/baltic-shipping/internal/retry"
	"github.com/r-uben/baltic-shipping/internal/runner"
	"github.com/r-uben/baltic-shipping/internal/status"
	"github.com/r-uben/baltic-shipping/internal/store"
	"github.com/r-uben/baltic-shipping/internal/vessel"
)

// newScanCmd creates the 'scan' subcommand, which runs the enumeration.
func newScanCmd() *cobra.Command {
	var startFlag, endFlag int

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Walks the identifier range and persists vessel records",
		Long: `Enumerates the configured identifier range in batches, fetching the
detail page of every checksum-valid number. Progress is checkpointed per
batch: an interrupted scan resumes where it stopped and never refetches a
vessel that is already persisted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // best-effort flush
			if startFlag > 0 {
				cfg.Scan.Start = startFlag
			}
			if endFlag > 0 {
				cfg.Scan.End = endFlag
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runScan(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().IntVar(&startFlag, "start", 0, "first identifier (overrides config)")
	cmd.Flags().IntVar(&endFlag, "end", 0, "last identifier, inclusive (overrides config)")
	return cmd
}

func runScan(parent context.Context, cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	policy := retry.NewPolicy(cfg.HTTP.MaxRetries, cfg.BackoffInitial(), cfg.BackoffMax())

	fetcher, closeFetcher, err := buildFetcher(ctx, cfg, policy, logger)
	if err != nil {
		return err
	}
	defer closeFetcher()

	rules := fetch.DefaultClassifyRules()
	if cfg.Classify.MinBodyBytes > 0 {
		rules.MinBodyBytes = cfg.Classify.MinBodyBytes
	}
	if len(cfg.Classify.NotFoundPhrases) > 0 {
		rules.NotFoundPhrases = cfg.Classify.NotFoundPhrases
	}

	genPass, err := buildGenerativePass(cfg, policy, logger)
	if err != nil {
		return err
	}
	extractor := extract.New(genPass, vessel.NewMerger(cfg.Extract.NegativePhrases), logger)

	records, closeRecords, err := buildRecordStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRecords()

	archive, err := buildArchive(ctx, cfg)
	if err != nil {
		return err
	}

	checkpoints, err := checkpoint.NewStore(cfg.Scan.CheckpointPath)
	if err != nil {
		return err
	}

	run, err := runner.New(runner.Config{
		Start:     cfg.Scan.Start,
		End:       cfg.Scan.End,
		BatchSize: cfg.Scan.BatchSize,
		Workers:   cfg.Scan.Workers,
		Snapshots: cfg.Scan.Snapshots,
	}, fetcher, rules, extractor, records, archive, checkpoints, logger)
	if err != nil {
		return err
	}

	if cfg.Status.Enabled {
		srv := status.NewServer(cfg.Status.Addr, run, logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("status server shutdown failed", zap.Error(err))
			}
		}()
	}

	if err := run.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("scan interrupted; checkpoint saved")
			return nil
		}
		return fmt.Errorf("run scan: %w", err)
	}
	return nil
}

func buildFetcher(ctx context.Context, cfg config.Config, policy *retry.Policy, logger *zap.Logger) (fetch.Fetcher, func(), error) {
	probe, err := fetch.NewCollyFetcher(fetch.HTTPConfig{
		BaseURL:     cfg.HTTP.BaseURL,
		UserAgent:   cfg.HTTP.UserAgent,
		Timeout:     cfg.HTTPTimeout(),
		Concurrency: cfg.HTTP.Concurrency,
		Delay:       cfg.HTTPDelay(),
	}, policy, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init http fetcher: %w", err)
	}
	if !cfg.Headless.Enabled {
		return probe, func() {}, nil
	}

	rendered, err := fetch.NewChromedpFetcher(ctx, cfg.HTTP.BaseURL, fetch.RenderConfig{
		UserAgent:      cfg.HTTP.UserAgent,
		Timeout:        time.Duration(cfg.Headless.NavTimeoutSeconds) * time.Second,
		MaxTabs:        cfg.Headless.MaxParallel,
		RatePerSecond:  cfg.Headless.RatePerSecond,
		Headless:       true,
		ExecPath:       cfg.Headless.ExecPath,
		WaitAfterReady: time.Duration(cfg.Headless.WaitAfterReadyMs) * time.Millisecond,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init renderer: %w", err)
	}

	hybrid := fetch.NewHybridFetcher(probe, rendered,
		fetch.DefaultPromoteDetector(), fetch.DefaultClassifyRules(), logger)
	return hybrid, rendered.Close, nil
}

func buildGenerativePass(cfg config.Config, policy *retry.Policy, logger *zap.Logger) (*extract.GenerativePass, error) {
	var gen genai.Generator
	switch cfg.GenAI.Backend {
	case "none":
		return nil, nil
	case "ollama":
		gen = genai.NewOllamaGenerator(genai.OllamaConfig{
			Host:        cfg.GenAI.Ollama.Host,
			Model:       cfg.GenAI.Ollama.Model,
			Temperature: cfg.GenAI.Ollama.Temperature,
			NumPredict:  cfg.GenAI.Ollama.NumPredict,
			Seed:        cfg.GenAI.Ollama.Seed,
			Timeout:     time.Duration(cfg.GenAI.Ollama.TimeoutSeconds) * time.Second,
		})
	case "anthropic":
		var err error
		gen, err = genai.NewAnthropicGenerator(genai.AnthropicConfig{
			APIKey:      cfg.GenAI.Anthropic.APIKey,
			Model:       cfg.GenAI.Anthropic.Model,
			MaxTokens:   cfg.GenAI.Anthropic.MaxTokens,
			Temperature: cfg.GenAI.Anthropic.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("init anthropic backend: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown genai backend %q", cfg.GenAI.Backend)
	}
	gen = genai.Limited(gen, cfg.GenAI.Concurrency)
	return extract.NewGenerativePass(gen, policy, logger), nil
}

func buildRecordStore(ctx context.Context, cfg config.Config) (store.RecordStore, func(), error) {
	switch cfg.Storage.Backend {
	case "fs":
		s, err := store.NewFSStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("init record store: %w", err)
		}
		return s, func() {}, nil
	case "postgres":
		s, err := store.NewPostgresStore(ctx, store.PostgresConfig{
			DSN:      cfg.DB.DSN,
			Table:    cfg.DB.Table,
			MaxConns: cfg.DB.MaxConns,
			MinConns: cfg.DB.MinConns,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init record store: %w", err)
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func buildArchive(ctx context.Context, cfg config.Config) (store.Archive, error) {
	switch cfg.Storage.SnapshotBackend {
	case "none":
		return store.NoopArchive{}, nil
	case "fs":
		return store.NewFSArchive(cfg.Storage.SnapshotDir)
	case "gcs":
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		return store.NewGCSArchive(client, cfg.Storage.GCSBucket)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Storage.SnapshotBackend)
	}
}
