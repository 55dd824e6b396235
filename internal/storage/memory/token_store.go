package memory

import (
	"context"
	"sort"
	"sync"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu        sync.RWMutex
	byAddress map[string]*domain.Token
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		byAddress: make(map[string]*domain.Token),
	}
}

// Insert adds a new token. Returns ErrDuplicateKey if address already exists.
func (s *TokenStore) Insert(_ context.Context, t *domain.Token) error {
	if t == nil || t.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byAddress[t.Address]; exists {
		return storage.ErrDuplicateKey
	}

	s.byAddress[t.Address] = copyToken(t)
	return nil
}

// GetByAddress retrieves a token by mint address. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByAddress(_ context.Context, address string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.byAddress[address]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyToken(t), nil
}

// List retrieves all tokens ordered by address.
func (s *TokenStore) List(_ context.Context) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Token, 0, len(s.byAddress))
	for _, t := range s.byAddress {
		result = append(result, copyToken(t))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})
	return result, nil
}

// copyToken deep-copies t so callers cannot mutate stored creation times.
func copyToken(t *domain.Token) *domain.Token {
	tokenCopy := *t
	if t.CreatedAt != nil {
		created := *t.CreatedAt
		tokenCopy.CreatedAt = &created
	}
	return &tokenCopy
}

var _ storage.TokenStore = (*TokenStore)(nil)
