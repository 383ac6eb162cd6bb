package pnr

import (
	"context"
	"sync"

	"civiceye/pkg/platform/sentinel"
)

// InMemoryStore keeps ledger entries in a mutex-guarded map.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]LedgerEntry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]LedgerEntry)}
}

func (s *InMemoryStore) Save(_ context.Context, entry LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.PNR] = entry
	return nil
}

func (s *InMemoryStore) FindByPNR(_ context.Context, pnr string) (LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry, ok := s.entries[pnr]; ok {
		return entry, nil
	}
	return LedgerEntry{}, sentinel.ErrNotFound
}
