package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

// MemoryStore keeps the timeline in memory. Suitable for tests and local
// development.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]checkin.Entry
}

// NewMemoryStore creates an empty in-memory timeline.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]checkin.Entry)}
}

// SaveEntry implements Store.
func (s *MemoryStore) SaveEntry(_ context.Context, entry checkin.Entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[entry.ID]; !exists {
		s.entries[entry.ID] = entry
	}
	return entry.ID, nil
}

// RecentEntries implements Store.
func (s *MemoryStore) RecentEntries(_ context.Context, windowDays int) ([]checkin.Entry, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var recent []checkin.Entry
	for _, entry := range s.entries {
		if entry.Date.Before(cutoff) {
			continue
		}
		recent = append(recent, entry)
	}

	sort.Slice(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})
	return recent, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return nil
}
