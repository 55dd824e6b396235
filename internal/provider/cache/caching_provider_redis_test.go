package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/provider/stub"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return client, mr
}

func TestCachingProvider_Redis_ReadThroughAndExpiry(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)

	inner := stub.NewProvider()
	inner.SetCandles("mint", domain.Timeframe1h, []domain.Candle{{Timestamp: 3600, Close: 1.5, Volume: 10}})
	p := NewCachingProvider(client, time.Minute, inner, "gem")

	for i := 0; i < 3; i++ {
		got, err := p.FetchCandles(ctx, "mint", domain.Timeframe1h, 100)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 1.5, got[0].Close)
	}
	assert.Equal(t, 1, inner.CandleCalls("mint", domain.Timeframe1h))

	key := "gem:candles:mint:1h:100"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(key))

	_, err := p.FetchCandles(ctx, "mint", domain.Timeframe1h, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.CandleCalls("mint", domain.Timeframe1h))
}

func TestCachingProvider_Redis_EmptyNotStored(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)

	p := NewCachingProvider(client, time.Minute, stub.NewProvider(), "gem")

	got, err := p.FetchTopTraders(ctx, "mint", domain.Window24h)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, mr.Keys())
}

func TestCachingProvider_Redis_InvalidateOneToken(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)

	inner := stub.NewProvider()
	for _, token := range []string{"mintA", "mintB"} {
		inner.SetCandles(token, domain.Timeframe15m, []domain.Candle{{Timestamp: 900, Close: 1}})
		inner.SetTraders(token, domain.Window6h, []domain.TraderRecord{{Address: "w1", Volume: 100, BuyVolume: 60, SellVolume: 40}})
	}
	p := NewCachingProvider(client, time.Hour, inner, "gem")

	for _, token := range []string{"mintA", "mintB"} {
		_, err := p.FetchCandles(ctx, token, domain.Timeframe15m, 50)
		require.NoError(t, err)
		_, err = p.FetchTopTraders(ctx, token, domain.Window6h)
		require.NoError(t, err)
	}
	require.Len(t, mr.Keys(), 4)

	require.NoError(t, p.Invalidate(ctx, "mintA"))

	assert.ElementsMatch(t, []string{
		"gem:candles:mintB:15m:50",
		"gem:traders:mintB:6h",
	}, mr.Keys())
}
