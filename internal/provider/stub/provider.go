// Package stub provides a deterministic in-memory provider.Provider for tests and fixtures.
package stub

import (
	"context"
	"sync"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/provider"
)

type seriesKey struct {
	token string
	tf    domain.Timeframe
}

type traderKey struct {
	token  string
	window domain.Window
}

// Provider implements provider.Provider from preloaded data. Safe for concurrent use.
type Provider struct {
	mu          sync.RWMutex
	candles     map[seriesKey][]domain.Candle
	traders     map[traderKey][]domain.TraderRecord
	ages        map[string]float64
	candleErrs  map[seriesKey]error
	traderErrs  map[traderKey]error
	ageErrs     map[string]error
	candleCalls map[seriesKey]int
}

// NewProvider creates an empty stub provider.
func NewProvider() *Provider {
	return &Provider{
		candles:     make(map[seriesKey][]domain.Candle),
		traders:     make(map[traderKey][]domain.TraderRecord),
		ages:        make(map[string]float64),
		candleErrs:  make(map[seriesKey]error),
		traderErrs:  make(map[traderKey]error),
		ageErrs:     make(map[string]error),
		candleCalls: make(map[seriesKey]int),
	}
}

var _ provider.Provider = (*Provider)(nil)

// SetCandles stores the series of (token, tf).
func (p *Provider) SetCandles(token string, tf domain.Timeframe, candles []domain.Candle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.candles[seriesKey{token, tf}] = append([]domain.Candle(nil), candles...)
}

// SetCandleError makes FetchCandles of (token, tf) fail with err.
func (p *Provider) SetCandleError(token string, tf domain.Timeframe, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.candleErrs[seriesKey{token, tf}] = err
}

// SetTraders stores the top traders of (token, window).
func (p *Provider) SetTraders(token string, window domain.Window, records []domain.TraderRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.traders[traderKey{token, window}] = append([]domain.TraderRecord(nil), records...)
}

// SetTraderError makes FetchTopTraders of (token, window) fail with err.
func (p *Provider) SetTraderError(token string, window domain.Window, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.traderErrs[traderKey{token, window}] = err
}

// SetAge stores the age of token in days.
func (p *Provider) SetAge(token string, days float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ages[token] = days
}

// SetAgeError makes EstimateTokenAge of token fail with err.
func (p *Provider) SetAgeError(token string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ageErrs[token] = err
}

// CandleCalls returns how many times FetchCandles was called for (token, tf).
func (p *Provider) CandleCalls(token string, tf domain.Timeframe) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.candleCalls[seriesKey{token, tf}]
}

// FetchCandles returns the last limit stored candles, or nil when none are set.
func (p *Provider) FetchCandles(ctx context.Context, token string, tf domain.Timeframe, limit int) ([]domain.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := seriesKey{token, tf}
	p.candleCalls[key]++
	if err := p.candleErrs[key]; err != nil {
		return nil, err
	}
	candles, ok := p.candles[key]
	if !ok || len(candles) == 0 {
		return nil, nil
	}
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return append([]domain.Candle(nil), candles...), nil
}

// FetchTopTraders returns the stored records, or nil when none are set.
func (p *Provider) FetchTopTraders(ctx context.Context, token string, window domain.Window) ([]domain.TraderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	key := traderKey{token, window}
	if err := p.traderErrs[key]; err != nil {
		return nil, err
	}
	records, ok := p.traders[key]
	if !ok {
		return nil, nil
	}
	return append([]domain.TraderRecord(nil), records...), nil
}

// EstimateTokenAge returns the stored age, or nil when none is set.
func (p *Provider) EstimateTokenAge(ctx context.Context, token string) (*float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := p.ageErrs[token]; err != nil {
		return nil, err
	}
	days, ok := p.ages[token]
	if !ok {
		return nil, nil
	}
	return &days, nil
}
