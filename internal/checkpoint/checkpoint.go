// Package checkpoint persists run progress so an interrupted enumeration
// resumes where it stopped instead of refetching the whole range.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Counters are the cumulative run statistics carried across restarts.
type Counters struct {
	Checked      int64 `json:"checked"`
	Valid        int64 `json:"valid"`
	Found        int64 `json:"found"`
	Extracted    int64 `json:"extracted"`
	NotFound     int64 `json:"not_found"`
	SoftNotFound int64 `json:"soft_not_found"`
	Errors       int64 `json:"errors"`
}

// Checkpoint records the last fully completed identifier of a run. LastIMO
// only moves forward: a batch is checkpointed after every worker in it has
// finished, so resume never skips unprocessed identifiers.
type Checkpoint struct {
	RunID     string    `json:"run_id"`
	LastIMO   int       `json:"last_imo"`
	Counters  Counters  `json:"counters"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store reads and writes checkpoints to a single JSON file.
type Store struct {
	path string
}

// NewStore validates the path and returns a file-backed store.
func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("checkpoint path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create checkpoint directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Load reads the checkpoint. The second return is false when none exists
// yet, which is not an error.
func (s *Store) Load() (Checkpoint, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("read checkpoint: %w", err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("decode checkpoint: %w", err)
	}
	return cp, true, nil
}

// Save writes the checkpoint atomically. A stored checkpoint ahead of cp is
// kept; progress never moves backwards.
func (s *Store) Save(cp Checkpoint) error {
	if existing, ok, err := s.Load(); err != nil {
		return err
	} else if ok && existing.LastIMO > cp.LastIMO {
		return nil
	}
	cp.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("publish checkpoint: %w", err)
	}
	return nil
}
