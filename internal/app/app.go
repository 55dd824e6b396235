// Package app wires configuration, stores, providers and the engine for the binaries.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"virtuoso-gem-finder/internal/config"
	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/engine"
	"virtuoso-gem-finder/internal/provider"
	"virtuoso-gem-finder/internal/provider/birdeye"
	"virtuoso-gem-finder/internal/provider/cache"
	"virtuoso-gem-finder/internal/provider/store"
	"virtuoso-gem-finder/internal/storage"
	chstore "virtuoso-gem-finder/internal/storage/clickhouse"
	"virtuoso-gem-finder/internal/storage/memory"
	pgstore "virtuoso-gem-finder/internal/storage/postgres"
	"virtuoso-gem-finder/internal/whale"
)

// Provider sources.
const (
	SourceBirdeye = "birdeye"
	SourceStore   = "store"
)

// Stores holds the storage implementations used by providers and the engine.
type Stores struct {
	Tokens        storage.TokenStore
	KnownAccounts storage.KnownAccountStore
	Candles       storage.CandleStore
	Traders       storage.TraderActivityStore

	// Persistent reports whether Candles/Traders are backed by ClickHouse.
	Persistent bool
}

// OpenStores connects to Postgres and ClickHouse when their DSNs are set.
// Missing DSNs (or useMemory) fall back to in-memory stores.
func OpenStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*Stores, func(), error) {
	stores := &Stores{
		Tokens:        memory.NewTokenStore(),
		KnownAccounts: memory.NewKnownAccountStore(),
		Candles:       memory.NewCandleStore(),
		Traders:       memory.NewTraderActivityStore(),
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	if useMemory {
		return stores, cleanup, nil
	}

	if postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		stores.Tokens = pgstore.NewTokenStore(pool)
		stores.KnownAccounts = pgstore.NewKnownAccountStore(pool)
	}

	if clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		closers = append(closers, func() { _ = conn.Close() })
		stores.Candles = chstore.NewCandleStore(conn)
		stores.Traders = chstore.NewTraderActivityStore(conn)
		stores.Persistent = true
	}

	return stores, cleanup, nil
}

// LoadKnownAccounts reads every labeled account once into a read-only lookup.
func LoadKnownAccounts(ctx context.Context, s storage.KnownAccountStore) (*whale.KnownAccounts, error) {
	if s == nil {
		return whale.NewKnownAccounts(nil), nil
	}
	accounts, err := s.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load known accounts: %w", err)
	}
	list := make([]domain.KnownAccount, 0, len(accounts))
	for _, a := range accounts {
		list = append(list, *a)
	}
	return whale.NewKnownAccounts(list), nil
}

// ProviderStack is the assembled provider chain.
type ProviderStack struct {
	Provider provider.Provider
	Cache    *cache.CachingProvider // nil when Redis is not configured
	close    func()
}

// Close releases the Redis client, if any.
func (p *ProviderStack) Close() {
	if p.close != nil {
		p.close()
	}
}

// BuildProvider assembles source → recorder → Redis cache.
//
//   - birdeye: live API; recorded into ClickHouse when cfg.RecordData and the
//     stores are persistent; cached in Redis when cfg.RedisAddr is set
//   - store: replays previously stored candles and trader snapshots
func BuildProvider(ctx context.Context, cfg *config.Config, source string, stores *Stores, logger *log.Logger) (*ProviderStack, error) {
	stack := &ProviderStack{}

	switch source {
	case SourceStore:
		stack.Provider = store.NewProvider(stores.Candles, stores.Traders, stores.Tokens, nil)
		return stack, nil
	case SourceBirdeye, "":
	default:
		return nil, fmt.Errorf("unknown provider source %q", source)
	}

	if cfg.BirdeyeAPIKey == "" {
		return nil, fmt.Errorf("BIRDEYE_API_KEY is required for the %s source", SourceBirdeye)
	}
	var p provider.Provider = birdeye.NewClient(cfg.BirdeyeAPIKey,
		birdeye.WithBaseURL(cfg.BirdeyeBaseURL),
		birdeye.WithTimeout(cfg.BirdeyeTimeout),
		birdeye.WithMaxRetries(cfg.BirdeyeMaxRetries),
		birdeye.WithRateLimit(cfg.BirdeyeRateLimit, cfg.BirdeyeRateBurst),
		birdeye.WithTraderLimit(cfg.TraderLimit),
	)

	if cfg.RecordData {
		if stores.Persistent {
			p = store.NewRecorder(p, stores.Candles, stores.Traders, nil, logger)
			logger.Println("Recording market data to ClickHouse")
		} else {
			logger.Println("RECORD_MARKET_DATA set without CLICKHOUSE_DSN, recording disabled")
		}
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Printf("Failed to connect to Redis at %s, caching disabled: %v", cfg.RedisAddr, err)
			_ = rdb.Close()
		} else {
			stack.Cache = cache.NewCachingProvider(rdb, cfg.CacheTTL, p, cfg.CacheNS)
			stack.close = func() { _ = rdb.Close() }
			p = stack.Cache
			logger.Printf("Caching provider responses in Redis at %s (ttl %s)", cfg.RedisAddr, cfg.CacheTTL)
		}
	}

	stack.Provider = p
	return stack, nil
}

// NewEngine builds the engine from configuration.
func NewEngine(cfg *config.Config, p provider.Provider, stores *Stores, known *whale.KnownAccounts, logger *log.Logger) *engine.Engine {
	tc := cfg.Trend
	wc := cfg.Whale
	var tokens storage.TokenStore
	if stores != nil {
		tokens = stores.Tokens
	}
	return engine.New(engine.Options{
		Provider:      p,
		Tokens:        tokens,
		TrendConfig:   &tc,
		WhaleConfig:   &wc,
		KnownAccounts: known,
		Logger:        logger,
		MaxConcurrent: cfg.MaxConcurrent,
		WaveDelay:     cfg.WaveDelay,
	})
}
