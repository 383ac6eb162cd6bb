package account

import (
	"context"
	"strings"
	"sync"

	"civiceye/pkg/platform/sentinel"
)

// InMemoryStore keeps accounts in a mutex-guarded map. It intentionally favors
// clarity over performance.
type InMemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
	byEmail  map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		accounts: make(map[string]Account),
		byEmail:  make(map[string]string),
	}
}

func (s *InMemoryStore) Save(_ context.Context, acct Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(acct.Email)
	if existingID, ok := s.byEmail[email]; ok && existingID != acct.ID {
		return sentinel.ErrConflict
	}
	s.accounts[acct.ID] = acct
	s.byEmail[email] = acct.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if acct, ok := s.accounts[id]; ok {
		return acct, nil
	}
	return Account{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byEmail[strings.ToLower(email)]; ok {
		return s.accounts[id], nil
	}
	return Account{}, sentinel.ErrNotFound
}
