package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/storage"
)

// TraderActivityStore is an in-memory implementation of storage.TraderActivityStore.
type TraderActivityStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TraderActivity // keyed by (token, window, captured_at, address)
}

// NewTraderActivityStore creates a new in-memory trader activity store.
func NewTraderActivityStore() *TraderActivityStore {
	return &TraderActivityStore{
		data: make(map[string]*domain.TraderActivity),
	}
}

func activityKey(a *domain.TraderActivity) string {
	return fmt.Sprintf("%s|%s|%d|%s", a.Token, a.Window, a.CapturedAt, a.Address)
}

// InsertBulk adds a snapshot. Fails entire batch on duplicate.
func (s *TraderActivityStore) InsertBulk(_ context.Context, rows []*domain.TraderActivity) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.Token == "" || r.Address == "" {
			return storage.ErrInvalidInput
		}
		key := activityKey(r)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range rows {
		rowCopy := *r
		s.data[activityKey(r)] = &rowCopy
	}
	return nil
}

// GetLatest retrieves the rows of the most recent snapshot for (token, window).
func (s *TraderActivityStore) GetLatest(_ context.Context, token string, window domain.Window) ([]*domain.TraderActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest int64
	found := false
	for _, r := range s.data {
		if r.Token == token && r.Window == window && (!found || r.CapturedAt > latest) {
			latest = r.CapturedAt
			found = true
		}
	}

	result := []*domain.TraderActivity{}
	if !found {
		return result, nil
	}
	for _, r := range s.data {
		if r.Token == token && r.Window == window && r.CapturedAt == latest {
			rowCopy := *r
			result = append(result, &rowCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Volume != result[j].Volume {
			return result[i].Volume > result[j].Volume
		}
		return result[i].Address < result[j].Address
	})
	return result, nil
}

var _ storage.TraderActivityStore = (*TraderActivityStore)(nil)
