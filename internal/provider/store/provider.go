// Package store serves provider.Provider from local stores and records live
// provider responses into them.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/provider"
	"virtuoso-gem-finder/internal/storage"
)

// Provider implements provider.Provider on top of storage interfaces.
// Any store may be nil; the matching method then reports no data.
type Provider struct {
	candles storage.CandleStore
	traders storage.TraderActivityStore
	tokens  storage.TokenStore
	now     func() time.Time
}

// NewProvider creates a store-backed Provider. A nil clock uses time.Now.
func NewProvider(candles storage.CandleStore, traders storage.TraderActivityStore, tokens storage.TokenStore, now func() time.Time) *Provider {
	if now == nil {
		now = time.Now
	}
	return &Provider{candles: candles, traders: traders, tokens: tokens, now: now}
}

var _ provider.Provider = (*Provider)(nil)

// FetchCandles returns the last limit stored bars of (token, tf).
func (p *Provider) FetchCandles(ctx context.Context, token string, tf domain.Timeframe, limit int) ([]domain.Candle, error) {
	if p.candles == nil {
		return nil, nil
	}
	candles, err := p.candles.GetRecent(ctx, token, tf, limit)
	if err != nil {
		return nil, fmt.Errorf("load candles %s %s: %w", token, tf, err)
	}
	if len(candles) == 0 {
		return nil, nil
	}
	return candles, nil
}

// FetchTopTraders returns the latest stored snapshot of (token, window).
func (p *Provider) FetchTopTraders(ctx context.Context, token string, window domain.Window) ([]domain.TraderRecord, error) {
	if p.traders == nil {
		return nil, nil
	}
	rows, err := p.traders.GetLatest(ctx, token, window)
	if err != nil {
		return nil, fmt.Errorf("load trader snapshot %s %s: %w", token, window, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	records := make([]domain.TraderRecord, len(rows))
	for i, r := range rows {
		records[i] = r.TraderRecord
	}
	return records, nil
}

// EstimateTokenAge uses the registered creation time of token.
func (p *Provider) EstimateTokenAge(ctx context.Context, token string) (*float64, error) {
	if p.tokens == nil {
		return nil, nil
	}
	t, err := p.tokens.GetByAddress(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load token %s: %w", token, err)
	}
	return t.AgeDays(p.now()), nil
}
