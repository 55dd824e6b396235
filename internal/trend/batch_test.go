package trend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtuoso-gem-finder/internal/domain"
)

type fakeFetcher struct {
	mu       sync.Mutex
	calls    map[string]int
	fail     map[domain.Timeframe]bool
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: make(map[string]int), fail: make(map[domain.Timeframe]bool)}
}

func (f *fakeFetcher) FetchCandles(ctx context.Context, token string, tf domain.Timeframe, limit int) ([]domain.Candle, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxSeen.Load()
		if n <= cur || f.maxSeen.CompareAndSwap(cur, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls[token+"/"+string(tf)]++
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[tf] {
		return nil, errors.New("provider unavailable")
	}
	return risingCandles(limit, 0.01), nil
}

func TestCoordinator_DeduplicatesPairs(t *testing.T) {
	fetcher := newFakeFetcher()
	c := NewCoordinator(CoordinatorOptions{Fetcher: fetcher, Limit: 25})

	set, stats, err := c.Fetch(context.Background(), []FetchRequest{
		{Token: "A", Timeframes: []domain.Timeframe{domain.Timeframe1h, domain.Timeframe4h}},
		{Token: "A", Timeframes: []domain.Timeframe{domain.Timeframe4h, domain.Timeframe1d}},
		{Token: "B", Timeframes: []domain.Timeframe{domain.Timeframe1h, domain.Timeframe1h}},
	})
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Requested)
	assert.Equal(t, 4, stats.Unique)
	assert.Equal(t, 2, stats.Duplicates)
	for key, n := range fetcher.calls {
		assert.Equal(t, 1, n, key)
	}
	assert.Len(t, fetcher.calls, 4)

	require.Len(t, set, 2)
	assert.Len(t, set["A"], 3)
	assert.Len(t, set["B"], 1)
	assert.Len(t, set.Series("A", domain.Timeframe4h), 25)
}

func TestCoordinator_FailureIsIsolated(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.fail[domain.Timeframe4h] = true
	c := NewCoordinator(CoordinatorOptions{Fetcher: fetcher, MaxConcurrent: 2})

	set, stats, err := c.Fetch(context.Background(), []FetchRequest{
		{Token: "A", Timeframes: []domain.Timeframe{domain.Timeframe30m, domain.Timeframe1h, domain.Timeframe4h}},
		{Token: "B", Timeframes: []domain.Timeframe{domain.Timeframe4h}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 2, stats.Waves)

	failed := set["A"][domain.Timeframe4h]
	assert.Error(t, failed.Err)
	assert.False(t, failed.OK())
	assert.Nil(t, set.Series("A", domain.Timeframe4h))

	assert.True(t, set["A"][domain.Timeframe30m].OK())
	assert.True(t, set["A"][domain.Timeframe1h].OK())
	assert.Contains(t, set, "B")
}

func TestCoordinator_BoundsConcurrency(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.delay = 5 * time.Millisecond
	c := NewCoordinator(CoordinatorOptions{Fetcher: fetcher, MaxConcurrent: 3})

	var reqs []FetchRequest
	for _, token := range []string{"A", "B", "C", "D"} {
		reqs = append(reqs, FetchRequest{Token: token, Timeframes: []domain.Timeframe{domain.Timeframe1h, domain.Timeframe4h}})
	}

	_, stats, err := c.Fetch(context.Background(), reqs)
	require.NoError(t, err)

	assert.Equal(t, 8, stats.Unique)
	assert.Equal(t, 3, stats.Waves)
	assert.LessOrEqual(t, fetcher.maxSeen.Load(), int32(3))
}

func TestCoordinator_CancelledContext(t *testing.T) {
	fetcher := newFakeFetcher()
	c := NewCoordinator(CoordinatorOptions{Fetcher: fetcher})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	set, stats, err := c.Fetch(ctx, []FetchRequest{
		{Token: "A", Timeframes: []domain.Timeframe{domain.Timeframe1h}},
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, stats.Failed)
	assert.Empty(t, fetcher.calls)
	assert.ErrorIs(t, set["A"][domain.Timeframe1h].Err, context.Canceled)
}

func TestCoordinator_TokenWithoutTimeframes(t *testing.T) {
	c := NewCoordinator(CoordinatorOptions{Fetcher: newFakeFetcher()})

	set, stats, err := c.Fetch(context.Background(), []FetchRequest{{Token: "A"}})
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Unique)
	assert.Contains(t, set, "A")
	assert.Empty(t, set["A"])
}
