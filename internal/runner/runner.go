// Package runner drives the enumeration: it walks the identifier range in
// batches, fans each batch out to a bounded worker pool, and checkpoints
// after every completed batch so an interrupted run resumes exactly where
// it stopped.
package runner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/r-uben/baltic-shipping/internal/checkpoint"
	"github.com/r-uben/baltic-shipping/internal/extract"
	"github.com/r-uben/baltic-shipping/internal/fetch"
	"github.com/r-uben/baltic-shipping/internal/imo"
	"github.com/r-uben/baltic-shipping/internal/metrics"
	"github.com/r-uben/baltic-shipping/internal/store"
)

// Config bounds one run.
type Config struct {
	Start     int
	End       int
	BatchSize int
	Workers   int
	// Snapshots enables archiving the raw HTML of every existing page for
	// offline extraction debugging.
	Snapshots bool
}

// Runner owns one enumeration run.
type Runner struct {
	cfg         Config
	fetcher     fetch.Fetcher
	rules       fetch.ClassifyRules
	extractor   *extract.Extractor
	records     store.RecordStore
	archive     store.Archive
	checkpoints *checkpoint.Store
	stats       *RunStats
	logger      *zap.Logger

	runID   string
	lastIMO atomic.Int64
}

// New assembles a runner. archive may be nil when snapshots are off.
func New(
	cfg Config,
	fetcher fetch.Fetcher,
	rules fetch.ClassifyRules,
	extractor *extract.Extractor,
	records store.RecordStore,
	archive store.Archive,
	checkpoints *checkpoint.Store,
	logger *zap.Logger,
) (*Runner, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if fetcher == nil || extractor == nil || records == nil || checkpoints == nil {
		return nil, fmt.Errorf("fetcher, extractor, record store, and checkpoint store are required")
	}
	if archive == nil {
		archive = store.NoopArchive{}
	}
	return &Runner{
		cfg:         cfg,
		fetcher:     fetcher,
		rules:       rules,
		extractor:   extractor,
		records:     records,
		archive:     archive,
		checkpoints: checkpoints,
		stats:       NewRunStats(),
		logger:      logger,
	}, nil
}

// Run walks the range until it is exhausted, the context is cancelled, or
// persistence fails. Cancellation is graceful: in-flight identifiers finish
// and the checkpoint is flushed before returning.
func (r *Runner) Run(ctx context.Context) error {
	start := r.cfg.Start
	cp, ok, err := r.checkpoints.Load()
	if err != nil {
		return err
	}
	if ok {
		r.stats.Seed(cp.Counters)
		r.runID = cp.RunID
		if cp.LastIMO+1 > start {
			start = cp.LastIMO + 1
		}
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	if start > r.cfg.End {
		r.logger.Info("range already complete",
			zap.String("run_id", r.runID),
			zap.Int("end", r.cfg.End),
		)
		return nil
	}
	r.lastIMO.Store(int64(start - 1))

	seq, err := imo.NewSequence(start, r.cfg.End)
	if err != nil {
		return err
	}

	r.logger.Info("run starting",
		zap.String("run_id", r.runID),
		zap.Int("start", start),
		zap.Int("end", r.cfg.End),
		zap.Int("batch_size", r.cfg.BatchSize),
		zap.Int("workers", r.cfg.Workers),
	)

	slots := semaphore.NewWeighted(int64(r.cfg.Workers))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		fatalOnce sync.Once
		fatalErr  error
	)
	fail := func(err error) {
		fatalOnce.Do(func() {
			fatalErr = err
			cancel()
		})
	}

	for {
		batch := seq.NextBatch(r.cfg.BatchSize)
		if len(batch) == 0 {
			break
		}

		var wg sync.WaitGroup
		for _, id := range batch {
			if err := slots.Acquire(runCtx, 1); err != nil {
				break
			}
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				defer slots.Release(1)
				if err := r.process(runCtx, id); err != nil {
					fail(err)
				}
			}(id)
		}
		wg.Wait()

		// Advance only when every identifier in the batch actually ran; a
		// batch cut short by cancellation is retried on resume.
		if runCtx.Err() == nil {
			r.lastIMO.Store(int64(batch[len(batch)-1]))
		}
		if err := r.flush(); err != nil {
			return err
		}
		if fatalErr != nil {
			r.logger.Error("run aborted", zap.String("run_id", r.runID), zap.Error(fatalErr))
			return fatalErr
		}
		if err := ctx.Err(); err != nil {
			c := r.stats.Counters()
			r.logger.Warn("run interrupted, checkpoint flushed",
				zap.String("run_id", r.runID),
				zap.Int64("last_imo", r.lastIMO.Load()),
				zap.Int64("checked", c.Checked),
				zap.Int64("extracted", c.Extracted),
				zap.Int64("errors", c.Errors),
			)
			return err
		}
		r.logProgress(seq.Remaining())
	}

	c := r.stats.Counters()
	r.logger.Info("run complete",
		zap.String("run_id", r.runID),
		zap.Int64("checked", c.Checked),
		zap.Int64("valid", c.Valid),
		zap.Int64("found", c.Found),
		zap.Int64("extracted", c.Extracted),
		zap.Int64("not_found", c.NotFound),
		zap.Int64("soft_not_found", c.SoftNotFound),
		zap.Int64("errors", c.Errors),
	)
	return nil
}

// process handles one identifier end to end. Only persistence failures are
// returned; everything else degrades to a counter and a log line.
func (r *Runner) process(ctx context.Context, id int) error {
	r.stats.checked.Add(1)
	metrics.IdentifiersChecked.Inc()

	if !imo.IsValid(id) {
		return nil
	}
	r.stats.valid.Add(1)

	exists, err := r.records.Exists(ctx, id)
	if err != nil {
		r.stats.errors.Add(1)
		metrics.PipelineErrors.Inc()
		r.logger.Warn("existence check failed", zap.Int("imo", id), zap.Error(err))
		return nil
	}
	if exists {
		r.logger.Debug("already scraped, skipping", zap.Int("imo", id))
		return nil
	}

	page, err := r.fetcher.Fetch(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		r.stats.errors.Add(1)
		metrics.PipelineErrors.Inc()
		r.logger.Warn("fetch failed", zap.Int("imo", id), zap.Error(err))
		return nil
	}
	metrics.FetchDuration.Observe(page.Duration.Seconds())

	outcome := r.rules.Classify(page)
	metrics.PagesFetched.WithLabelValues(outcome.String()).Inc()
	switch outcome {
	case fetch.OutcomeNotFound:
		r.stats.notFound.Add(1)
		return nil
	case fetch.OutcomeSoftNotFound:
		r.stats.softNotFound.Add(1)
		return nil
	}

	r.stats.found.Add(1)
	if r.cfg.Snapshots {
		name := fmt.Sprintf("snapshots/imo_%d.html", id)
		if _, err := r.archive.Put(ctx, name, "text/html", page.Body); err != nil {
			r.logger.Warn("snapshot archive failed", zap.Int("imo", id), zap.Error(err))
		}
	}

	rec := r.extractor.Extract(ctx, id, page.URL, page.Body)
	if rec == nil {
		r.stats.errors.Add(1)
		metrics.PipelineErrors.Inc()
		r.logger.Warn("page exists but yielded no substantive record", zap.Int("imo", id))
		return nil
	}

	if err := r.records.Save(ctx, rec); err != nil {
		// Losing records silently defeats the whole run; stop instead.
		return fmt.Errorf("persist vessel %d: %w", id, err)
	}
	r.stats.extracted.Add(1)
	metrics.RecordsExtracted.Inc()
	return nil
}

func (r *Runner) flush() error {
	return r.checkpoints.Save(checkpoint.Checkpoint{
		RunID:    r.runID,
		LastIMO:  int(r.lastIMO.Load()),
		Counters: r.stats.Counters(),
	})
}

func (r *Runner) logProgress(remaining int) {
	c := r.stats.Counters()
	rate := r.stats.Rate()
	fields := []zap.Field{
		zap.String("run_id", r.runID),
		zap.Int64("last_imo", r.lastIMO.Load()),
		zap.Int("remaining", remaining),
		zap.Int64("checked", c.Checked),
		zap.Int64("found", c.Found),
		zap.Int64("extracted", c.Extracted),
		zap.Int64("errors", c.Errors),
		zap.Float64("rate_per_second", rate),
	}
	if rate > 0 {
		eta := time.Duration(float64(remaining)/rate) * time.Second
		fields = append(fields, zap.Duration("eta", eta))
	}
	r.logger.Info("batch complete", fields...)
}

// Snapshot reports the run's live state for the status endpoint.
func (r *Runner) Snapshot() Snapshot {
	return Snapshot{
		RunID:     r.runID,
		LastIMO:   int(r.lastIMO.Load()),
		Counters:  r.stats.Counters(),
		Rate:      r.stats.Rate(),
		StartedAt: r.stats.startedAt,
	}
}
