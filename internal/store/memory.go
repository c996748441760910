package store

import (
	"context"
	"sync"

	"github.com/r-uben/baltic-shipping/internal/vessel"
)

// MemoryStore keeps records in a map. Used in tests and dry runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int]*vessel.Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int]*vessel.Record)}
}

// Exists implements RecordStore.
func (s *MemoryStore) Exists(_ context.Context, imo int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[imo]
	return ok, nil
}

// Save implements RecordStore; first write wins.
func (s *MemoryStore) Save(_ context.Context, rec *vessel.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.IMO]; ok {
		return nil
	}
	s.records[rec.IMO] = rec
	return nil
}

// Get returns the stored record, or nil.
func (s *MemoryStore) Get(imo int) *vessel.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[imo]
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
