// Package cache provides a Redis read-through decorator for provider.Provider.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/observability"
	"virtuoso-gem-finder/internal/provider"
)

// CachingProvider decorates a Provider with Redis caching of candles and top traders.
// Token age is passed through uncached since it grows with wall-clock time.
type CachingProvider struct {
	inner     provider.Provider
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingProvider decorates inner with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "market".
// A nil rdb disables caching.
func NewCachingProvider(rdb *redis.Client, ttl time.Duration, inner provider.Provider, namespace string) *CachingProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "market"
	}
	return &CachingProvider{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

var _ provider.Provider = (*CachingProvider)(nil)

// FetchCandles checks the cache first then falls back to the inner provider.
func (c *CachingProvider) FetchCandles(ctx context.Context, token string, tf domain.Timeframe, limit int) ([]domain.Candle, error) {
	if c.rdb == nil {
		return c.inner.FetchCandles(ctx, token, tf, limit)
	}

	key := c.candleKey(token, tf, limit)
	var cached []domain.Candle
	if c.lookup(ctx, "candles", key, &cached) {
		return cached, nil
	}

	out, err := c.inner.FetchCandles(ctx, token, tf, limit)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out, len(out))
	return out, nil
}

// FetchTopTraders checks the cache first then falls back to the inner provider.
func (c *CachingProvider) FetchTopTraders(ctx context.Context, token string, window domain.Window) ([]domain.TraderRecord, error) {
	if c.rdb == nil {
		return c.inner.FetchTopTraders(ctx, token, window)
	}

	key := c.traderKey(token, window)
	var cached []domain.TraderRecord
	if c.lookup(ctx, "traders", key, &cached) {
		return cached, nil
	}

	out, err := c.inner.FetchTopTraders(ctx, token, window)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out, len(out))
	return out, nil
}

// EstimateTokenAge always asks the inner provider.
func (c *CachingProvider) EstimateTokenAge(ctx context.Context, token string) (*float64, error) {
	return c.inner.EstimateTokenAge(ctx, token)
}

// Invalidate drops every cached entry of token.
func (c *CachingProvider) Invalidate(ctx context.Context, token string) error {
	if c.rdb == nil {
		return nil
	}
	for _, kind := range []string{"candles", "traders"} {
		if err := c.deleteByPattern(ctx, fmt.Sprintf("%s:%s:%s:*", c.namespace, kind, safe(token))); err != nil {
			return fmt.Errorf("invalidate %s cache: %w", kind, err)
		}
	}
	return nil
}

// lookup decodes key into dst. Corrupted entries are deleted and reported as a miss.
func (c *CachingProvider) lookup(ctx context.Context, kind, key string, dst interface{}) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil && len(b) > 0 {
		if err := json.Unmarshal(b, dst); err == nil {
			observability.RecordCacheLookup(kind, true)
			return true
		}
		_ = c.rdb.Del(ctx, key).Err()
	}
	observability.RecordCacheLookup(kind, false)
	return false
}

// store writes v best effort. Empty results are not cached so fresh tokens are retried.
func (c *CachingProvider) store(ctx context.Context, key string, v interface{}, n int) {
	if n == 0 {
		return
	}
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

func (c *CachingProvider) candleKey(token string, tf domain.Timeframe, limit int) string {
	return fmt.Sprintf("%s:candles:%s:%s:%d", c.namespace, safe(token), safe(string(tf)), limit)
}

func (c *CachingProvider) traderKey(token string, window domain.Window) string {
	return fmt.Sprintf("%s:traders:%s:%s", c.namespace, safe(token), safe(string(window)))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingProvider) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
