package runner

import (
	"sync/atomic"
	"time"

	"github.com/r-uben/baltic-shipping/internal/checkpoint"
)

// RunStats is the concurrency-safe counter set for one run. Workers bump
// individual counters; the controller snapshots them for checkpoints,
// progress logs, and the status endpoint.
type RunStats struct {
	checked      atomic.Int64
	valid        atomic.Int64
	found        atomic.Int64
	extracted    atomic.Int64
	notFound     atomic.Int64
	softNotFound atomic.Int64
	errors       atomic.Int64

	startedAt time.Time
	// seeded counts came from a previous run's checkpoint and are excluded
	// from this run's rate computation.
	seeded int64
}

// NewRunStats starts the clock.
func NewRunStats() *RunStats {
	return &RunStats{startedAt: time.Now()}
}

// Seed loads counters persisted by an earlier run so the final totals are
// cumulative across restarts.
func (s *RunStats) Seed(c checkpoint.Counters) {
	s.checked.Store(c.Checked)
	s.valid.Store(c.Valid)
	s.found.Store(c.Found)
	s.extracted.Store(c.Extracted)
	s.notFound.Store(c.NotFound)
	s.softNotFound.Store(c.SoftNotFound)
	s.errors.Store(c.Errors)
	s.seeded = c.Checked
}

// Counters snapshots the current values in checkpoint form.
func (s *RunStats) Counters() checkpoint.Counters {
	return checkpoint.Counters{
		Checked:      s.checked.Load(),
		Valid:        s.valid.Load(),
		Found:        s.found.Load(),
		Extracted:    s.extracted.Load(),
		NotFound:     s.notFound.Load(),
		SoftNotFound: s.softNotFound.Load(),
		Errors:       s.errors.Load(),
	}
}

// Rate returns identifiers processed per second by this run.
func (s *RunStats) Rate() float64 {
	elapsed := time.Since(s.startedAt).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.checked.Load()-s.seeded) / elapsed
}

// Snapshot is the status-endpoint view of a run in progress.
type Snapshot struct {
	RunID     string              `json:"run_id"`
	LastIMO   int                 `json:"last_imo"`
	Counters  checkpoint.Counters `json:"counters"`
	Rate      float64             `json:"rate_per_second"`
	StartedAt time.Time           `json:"started_at"`
}
