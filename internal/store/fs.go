package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/r-uben/baltic-shipping/internal/vessel"
)

// FSStore writes one vessel_<imo>.json per record under a base directory.
type FSStore struct {
	baseDir string
}

// NewFSStore validates the directory up front so a misconfigured path
// fails at startup rather than on the first save.
func NewFSStore(baseDir string) (*FSStore, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	info, err := os.Stat(baseDir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(baseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create base directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat base directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("base directory path is not a directory")
	}
	return &FSStore{baseDir: baseDir}, nil
}

func (s *FSStore) path(imo int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("vessel_%d.json", imo))
}

// Exists implements RecordStore.
func (s *FSStore) Exists(_ context.Context, imo int) (bool, error) {
	_, err := os.Stat(s.path(imo))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Save implements RecordStore. The file is written via a temp name and
// renamed so readers never observe a partial document.
func (s *FSStore) Save(ctx context.Context, rec *vessel.Record) error {
	if rec == nil {
		return fmt.Errorf("record is required")
	}
	if exists, err := s.Exists(ctx, rec.IMO); err != nil {
		return err
	} else if exists {
		return nil
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record %d: %w", rec.IMO, err)
	}
	tmp := s.path(rec.IMO) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write record %d: %w", rec.IMO, err)
	}
	if err := os.Rename(tmp, s.path(rec.IMO)); err != nil {
		return fmt.Errorf("publish record %d: %w", rec.IMO, err)
	}
	return nil
}
