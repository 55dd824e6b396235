package trend

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/observability"
)

// CandleFetcher loads one candle series. A nil slice with nil error means no data.
type CandleFetcher interface {
	FetchCandles(ctx context.Context, token string, tf domain.Timeframe, limit int) ([]domain.Candle, error)
}

// FetchRequest asks for the given timeframes of one token.
type FetchRequest struct {
	Token      string
	Timeframes []domain.Timeframe
}

// FetchResult is the outcome of one (token, timeframe) fetch.
// Err is set when the fetch failed; Candles is nil when nothing usable came back.
type FetchResult struct {
	Candles []domain.Candle
	Err     error
}

// OK reports whether the fetch returned candles.
func (r FetchResult) OK() bool {
	return r.Err == nil && len(r.Candles) > 0
}

// CandleSet maps token → timeframe → fetch result.
type CandleSet map[string]map[domain.Timeframe]FetchResult

// Series returns the candles of (token, tf), or nil when absent or failed.
func (s CandleSet) Series(token string, tf domain.Timeframe) []domain.Candle {
	r, ok := s[token][tf]
	if !ok || r.Err != nil {
		return nil
	}
	return r.Candles
}

// BatchStats summarizes one batch fetch.
type BatchStats struct {
	Requested  int // pairs across all requests, duplicates included
	Unique     int
	Duplicates int
	Failed     int
	Waves      int
	Duration   time.Duration
}

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	Fetcher       CandleFetcher
	Limit         int           // candles per series (default 100)
	MaxConcurrent int           // in-flight fetches per wave (default 8)
	WaveDelay     time.Duration // pause between waves
	Logger        *log.Logger
}

// Coordinator deduplicates (token, timeframe) pairs across a batch and
// fetches each exactly once, in bounded concurrent waves.
type Coordinator struct {
	fetcher       CandleFetcher
	limit         int
	maxConcurrent int
	waveDelay     time.Duration
	logger        *log.Logger
}

// NewCoordinator creates a new Coordinator.
func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	c := &Coordinator{
		fetcher:       opts.Fetcher,
		limit:         opts.Limit,
		maxConcurrent: opts.MaxConcurrent,
		waveDelay:     opts.WaveDelay,
		logger:        opts.Logger,
	}
	if c.limit <= 0 {
		c.limit = 100
	}
	if c.maxConcurrent <= 0 {
		c.maxConcurrent = 8
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard, "", 0)
	}
	return c
}

type pair struct {
	token string
	tf    domain.Timeframe
}

// Fetch resolves every requested pair. Per-pair failures are recorded in the
// result and logged; they never abort the batch. The only error returned is
// context cancellation before all waves ran.
func (c *Coordinator) Fetch(ctx context.Context, requests []FetchRequest) (CandleSet, BatchStats, error) {
	start := time.Now()
	var stats BatchStats

	seen := make(map[pair]struct{})
	var pairs []pair
	for _, req := range requests {
		for _, tf := range req.Timeframes {
			stats.Requested++
			p := pair{token: req.Token, tf: tf}
			if _, dup := seen[p]; dup {
				stats.Duplicates++
				continue
			}
			seen[p] = struct{}{}
			pairs = append(pairs, p)
		}
	}
	stats.Unique = len(pairs)

	results := make([]FetchResult, len(pairs))
	var ctxErr error

	for waveStart := 0; waveStart < len(pairs); waveStart += c.maxConcurrent {
		if waveStart > 0 && c.waveDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(c.waveDelay):
			}
		}
		if err := ctx.Err(); err != nil {
			ctxErr = err
			for i := waveStart; i < len(pairs); i++ {
				results[i] = FetchResult{Err: err}
			}
			break
		}

		waveEnd := waveStart + c.maxConcurrent
		if waveEnd > len(pairs) {
			waveEnd = len(pairs)
		}
		stats.Waves++

		// Goroutines never return an error so one failure cannot cancel siblings.
		var g errgroup.Group
		g.SetLimit(c.maxConcurrent)
		for i := waveStart; i < waveEnd; i++ {
			g.Go(func() error {
				results[i] = c.fetchOne(ctx, pairs[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	set := make(CandleSet, len(requests))
	for i, p := range pairs {
		byTF, ok := set[p.token]
		if !ok {
			byTF = make(map[domain.Timeframe]FetchResult)
			set[p.token] = byTF
		}
		r := results[i]
		if r.Err != nil {
			stats.Failed++
			c.logger.Printf("fetch %s %s failed: %v", p.token, p.tf, r.Err)
		}
		byTF[p.tf] = r
	}
	// Tokens requested with no timeframes still get an entry.
	for _, req := range requests {
		if _, ok := set[req.Token]; !ok {
			set[req.Token] = make(map[domain.Timeframe]FetchResult)
		}
	}

	stats.Duration = time.Since(start)
	observability.RecordBatch(stats.Unique, stats.Duplicates, stats.Failed, stats.Duration.Seconds())
	return set, stats, ctxErr
}

func (c *Coordinator) fetchOne(ctx context.Context, p pair) (res FetchResult) {
	defer func() {
		if r := recover(); r != nil {
			res = FetchResult{Err: fmt.Errorf("fetch panicked: %v", r)}
		}
	}()
	candles, err := c.fetcher.FetchCandles(ctx, p.token, p.tf, c.limit)
	if err != nil {
		return FetchResult{Err: err}
	}
	return FetchResult{Candles: candles}
}
