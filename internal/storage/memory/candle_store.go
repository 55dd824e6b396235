package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/storage"
)

// CandleStore is an in-memory implementation of storage.CandleStore.
type CandleStore struct {
	mu   sync.RWMutex
	data map[string]map[int64]domain.Candle // keyed by series, then timestamp
}

// NewCandleStore creates a new in-memory candle store.
func NewCandleStore() *CandleStore {
	return &CandleStore{
		data: make(map[string]map[int64]domain.Candle),
	}
}

// seriesKey generates a unique key for a (token, timeframe) series.
func seriesKey(token string, tf domain.Timeframe) string {
	return fmt.Sprintf("%s|%s", token, tf)
}

// InsertBulk adds multiple candles. Fails entire batch on duplicate.
func (s *CandleStore) InsertBulk(_ context.Context, candles []*domain.SeriesCandle) error {
	if len(candles) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct {
		series string
		ts     int64
	}
	batchKeys := make(map[key]struct{}, len(candles))

	// First pass: validate and check for duplicates (existing + intra-batch)
	for _, c := range candles {
		if c == nil || c.Token == "" || !c.Timeframe.Valid() {
			return storage.ErrInvalidInput
		}
		k := key{seriesKey(c.Token, c.Timeframe), c.Timestamp}
		if _, exists := s.data[k.series][k.ts]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	// Second pass: insert all
	for _, c := range candles {
		series := seriesKey(c.Token, c.Timeframe)
		if s.data[series] == nil {
			s.data[series] = make(map[int64]domain.Candle)
		}
		s.data[series][c.Timestamp] = c.Candle
	}

	return nil
}

// GetRecent retrieves the last limit candles of a series, ordered by timestamp ASC.
func (s *CandleStore) GetRecent(_ context.Context, token string, tf domain.Timeframe, limit int) ([]domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.collect(token, tf, func(int64) bool { return true })
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}

// GetByTimeRange retrieves candles of a series within [start, end] (inclusive).
func (s *CandleStore) GetByTimeRange(_ context.Context, token string, tf domain.Timeframe, start, end int64) ([]domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(token, tf, func(ts int64) bool { return ts >= start && ts <= end }), nil
}

// collect returns the matching candles sorted by timestamp. Caller holds the lock.
func (s *CandleStore) collect(token string, tf domain.Timeframe, keep func(int64) bool) []domain.Candle {
	var result []domain.Candle
	for ts, c := range s.data[seriesKey(token, tf)] {
		if keep(ts) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})
	return result
}

var _ storage.CandleStore = (*CandleStore)(nil)
