package memory

import (
	"context"
	"sort"
	"sync"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/storage"
)

// KnownAccountStore is an in-memory implementation of storage.KnownAccountStore.
type KnownAccountStore struct {
	mu        sync.RWMutex
	byAddress map[string]*domain.KnownAccount
}

// NewKnownAccountStore creates a new in-memory known account store.
func NewKnownAccountStore() *KnownAccountStore {
	return &KnownAccountStore{
		byAddress: make(map[string]*domain.KnownAccount),
	}
}

// Insert adds a new account. Returns ErrDuplicateKey if address already exists.
func (s *KnownAccountStore) Insert(_ context.Context, a *domain.KnownAccount) error {
	if a == nil || a.Address == "" || a.Kind == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byAddress[a.Address]; exists {
		return storage.ErrDuplicateKey
	}

	accountCopy := *a
	s.byAddress[a.Address] = &accountCopy
	return nil
}

// GetByAddress retrieves an account by address. Returns ErrNotFound if not exists.
func (s *KnownAccountStore) GetByAddress(_ context.Context, address string) (*domain.KnownAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.byAddress[address]
	if !exists {
		return nil, storage.ErrNotFound
	}
	accountCopy := *a
	return &accountCopy, nil
}

// GetAll retrieves all accounts ordered by address.
func (s *KnownAccountStore) GetAll(_ context.Context) ([]*domain.KnownAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.KnownAccount, 0, len(s.byAddress))
	for _, a := range s.byAddress {
		accountCopy := *a
		result = append(result, &accountCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})
	return result, nil
}

var _ storage.KnownAccountStore = (*KnownAccountStore)(nil)
