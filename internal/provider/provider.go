// Package provider defines the market data gateway consumed by the engine.
//
// Implementations:
//   - birdeye: Birdeye public API over HTTP
//   - cache: Redis read-through decorator around another Provider
//   - store: local ClickHouse/Postgres (or in-memory) stores
//   - stub: deterministic fixtures for tests
package provider

import (
	"context"
	"errors"

	"virtuoso-gem-finder/internal/domain"
)

var (
	// ErrNoData is returned when the upstream has nothing for the request.
	ErrNoData = errors.New("no data")

	// ErrRateLimited is returned when the upstream keeps rejecting requests with 429.
	ErrRateLimited = errors.New("rate limited")
)

// Provider supplies candles, top traders and token age.
// A nil result with a nil error means "no data"; callers treat it like an empty series.
type Provider interface {
	// FetchCandles returns up to limit most recent candles, oldest first.
	FetchCandles(ctx context.Context, token string, tf domain.Timeframe, limit int) ([]domain.Candle, error)

	// FetchTopTraders returns per-trader aggregates over window.
	FetchTopTraders(ctx context.Context, token string, window domain.Window) ([]domain.TraderRecord, error)

	// EstimateTokenAge returns the token age in days, or nil when unknown.
	EstimateTokenAge(ctx context.Context, token string) (*float64, error)
}
