// Package store persists extracted vessel records and raw page snapshots.
//
// RecordStore is the primary sink: one JSON document per vessel, with an
// existence check the run controller uses to skip already-scraped
// identifiers. Archive is a secondary blob sink for debug HTML snapshots.
package store

import (
	"context"

	"github.com/r-uben/baltic-shipping/internal/vessel"
)

// RecordStore persists canonical vessel records.
type RecordStore interface {
	// Exists reports whether a record for imo is already persisted.
	Exists(ctx context.Context, imo int) (bool, error)
	// Save persists the record. Saving an identifier that already exists
	// is a no-op, so re-runs never clobber earlier captures.
	Save(ctx context.Context, rec *vessel.Record) error
}

// Archive stores raw page snapshots for offline debugging of extraction
// misses. Implementations return a URI locating the stored object.
type Archive interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// NoopArchive discards snapshots; the default when debugging is off.
type NoopArchive struct{}

// Put implements Archive.
func (NoopArchive) Put(_ context.Context, name, _ string, _ []byte) (string, error) {
	return "noop://" + name, nil
}
