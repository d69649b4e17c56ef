package runstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps run records in memory. Records are copied on the
// way in and out, so callers cannot mutate stored state.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

// Save inserts the record, replacing any existing record with the same ID.
func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	if rec.ID == "" {
		return errors.New("runstore: record has empty ID")
	}

	stored := *rec
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[stored.ID]; !exists {
		s.order = append(s.order, stored.ID)
	}
	s.records[stored.ID] = &stored
	return nil
}

// Get returns the record with the given ID, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *rec
	return &out, nil
}

// List returns records newest first. Records created at the same
// instant are ordered by most recent insertion. A limit <= 0 returns
// all records.
func (s *MemoryStore) List(_ context.Context, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, 0, len(s.records))
	for i := len(s.order) - 1; i >= 0; i-- {
		rec := *s.records[s.order[i]]
		out = append(out, &rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
