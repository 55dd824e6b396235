// Package engine exposes the trend confirmation and whale movement analyses
// to the surrounding scoring pipeline.
//
// Market data problems never surface as errors here: a token without usable
// candles yields TrendAnalysis.Error=true, a token without traders yields an
// empty market structure.
package engine

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/observability"
	"virtuoso-gem-finder/internal/provider"
	"virtuoso-gem-finder/internal/storage"
	"virtuoso-gem-finder/internal/trend"
	"virtuoso-gem-finder/internal/whale"
)

// Engine runs analyses against one Provider.
type Engine struct {
	provider    provider.Provider
	tokens      storage.TokenStore
	trendCfg    trend.Config
	evaluator   *trend.Evaluator
	aggregator  *trend.Aggregator
	coordinator *trend.Coordinator
	analyzer    *whale.Analyzer
	logger      *log.Logger
	now         func() time.Time
	concurrency int
}

// Options for creating Engine.
type Options struct {
	// Required
	Provider provider.Provider

	// Optional token registry; a registered creation time takes precedence
	// over Provider.EstimateTokenAge.
	Tokens storage.TokenStore

	TrendConfig   *trend.Config // nil uses trend.DefaultConfig()
	WhaleConfig   *whale.Config // nil uses whale.DefaultConfig()
	KnownAccounts *whale.KnownAccounts

	Logger *log.Logger
	Clock  func() time.Time

	MaxConcurrent int           // in-flight provider calls per wave (default 8)
	WaveDelay     time.Duration // pause between fetch waves
}

// New creates a new Engine.
func New(opts Options) *Engine {
	tc := trend.DefaultConfig()
	if opts.TrendConfig != nil {
		tc = *opts.TrendConfig
	}
	wc := whale.DefaultConfig()
	if opts.WhaleConfig != nil {
		wc = *opts.WhaleConfig
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	concurrency := opts.MaxConcurrent
	if concurrency <= 0 {
		concurrency = 8
	}

	return &Engine{
		provider:   opts.Provider,
		tokens:     opts.Tokens,
		trendCfg:   tc,
		evaluator:  trend.NewEvaluator(tc),
		aggregator: trend.NewAggregator(tc),
		coordinator: trend.NewCoordinator(trend.CoordinatorOptions{
			Fetcher:       opts.Provider,
			Limit:         tc.CandleLimit,
			MaxConcurrent: concurrency,
			WaveDelay:     opts.WaveDelay,
			Logger:        logger,
		}),
		analyzer:    whale.NewAnalyzer(wc, opts.KnownAccounts, logger),
		logger:      logger,
		now:         clock,
		concurrency: concurrency,
	}
}

// Now returns the engine clock.
func (e *Engine) Now() time.Time {
	return e.now()
}

// AnalyzeTrend computes the multi-timeframe trend of one token.
// ageDays overrides age estimation when non-nil.
func (e *Engine) AnalyzeTrend(ctx context.Context, token string, now time.Time, ageDays *float64) domain.TrendAnalysis {
	age := e.resolveAge(ctx, token, now, ageDays)
	profile := trend.ProfileFor(age.Category)

	set, _, err := e.coordinator.Fetch(ctx, []trend.FetchRequest{{Token: token, Timeframes: profile.Timeframes}})
	if err != nil {
		e.logger.Printf("trend %s: fetch interrupted: %v", token, err)
	}
	return e.evaluate(token, age, set)
}

// BatchResult holds the trend analyses of one batch run.
type BatchResult struct {
	RunID   uuid.UUID
	Results map[string]domain.TrendAnalysis
	Stats   trend.BatchStats
}

// AnalyzeTrendBatch analyzes many tokens, fetching each (token, timeframe) pair once.
// Duplicate tokens are analyzed once.
func (e *Engine) AnalyzeTrendBatch(ctx context.Context, tokens []string, now time.Time) BatchResult {
	result := BatchResult{
		RunID:   uuid.New(),
		Results: make(map[string]domain.TrendAnalysis, len(tokens)),
	}

	unique := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}
	if len(unique) == 0 {
		return result
	}

	ages := make([]trend.AgeInfo, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, token := range unique {
		g.Go(func() error {
			ages[i] = e.resolveAge(gctx, token, now, nil)
			return nil
		})
	}
	_ = g.Wait()

	requests := make([]trend.FetchRequest, len(unique))
	for i, token := range unique {
		requests[i] = trend.FetchRequest{Token: token, Timeframes: trend.ProfileFor(ages[i].Category).Timeframes}
	}

	set, stats, err := e.coordinator.Fetch(ctx, requests)
	result.Stats = stats
	if err != nil {
		e.logger.Printf("batch %s: fetch interrupted: %v", result.RunID, err)
	}

	for i, token := range unique {
		result.Results[token] = e.evaluate(token, ages[i], set)
	}
	e.logger.Printf("batch %s: %d tokens, %d pairs (%d deduplicated, %d failed) in %s",
		result.RunID, len(unique), stats.Unique, stats.Duplicates, stats.Failed, stats.Duration)
	return result
}

// ConfirmUptrend analyzes token and applies the age-aware confirmation gate.
func (e *Engine) ConfirmUptrend(ctx context.Context, token string, now time.Time, ageDays *float64) (domain.TrendAnalysis, bool) {
	analysis := e.AnalyzeTrend(ctx, token, now, ageDays)
	return analysis, e.trendCfg.RequireUptrendConfirmation(analysis)
}

// AnalyzeMovements classifies the top traders of token over window.
func (e *Engine) AnalyzeMovements(ctx context.Context, token string, window domain.Window) domain.MovementAnalysis {
	records, err := e.provider.FetchTopTraders(ctx, token, window)
	if err != nil {
		e.logger.Printf("movements %s %s: fetch failed: %v", token, window, err)
		records = nil
	}
	result := e.analyzer.Analyze(token, window, records)
	observability.RecordMovementAnalysis(string(window), string(result.Structure.StructureType))
	return result
}

// CompareWindows compares a long-window and a short-window analysis.
func (e *Engine) CompareWindows(long, short domain.MovementAnalysis) domain.TrendComparison {
	return whale.CompareWindows(long, short)
}

// MomentumReport pairs both window analyses with their comparison.
type MomentumReport struct {
	Long       domain.MovementAnalysis `json:"long"`
	Short      domain.MovementAnalysis `json:"short"`
	Comparison domain.TrendComparison  `json:"comparison"`
}

// AnalyzeMomentum runs both windows concurrently, within the engine's
// concurrency limit, then compares them.
func (e *Engine) AnalyzeMomentum(ctx context.Context, token string, longWindow, shortWindow domain.Window) MomentumReport {
	var report MomentumReport
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	g.Go(func() error {
		report.Long = e.AnalyzeMovements(ctx, token, longWindow)
		return nil
	})
	g.Go(func() error {
		report.Short = e.AnalyzeMovements(ctx, token, shortWindow)
		return nil
	})
	_ = g.Wait()

	report.Comparison = e.CompareWindows(report.Long, report.Short)
	return report
}

// resolveAge picks the age from the override, the token registry, then the provider.
func (e *Engine) resolveAge(ctx context.Context, token string, now time.Time, ageDays *float64) trend.AgeInfo {
	if ageDays != nil {
		return trend.ClassifyAgeDays(ageDays)
	}

	if e.tokens != nil {
		t, err := e.tokens.GetByAddress(ctx, token)
		switch {
		case err == nil && t.CreatedAt != nil:
			return trend.ClassifyAge(t.CreatedAt, now)
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			e.logger.Printf("age %s: token registry: %v", token, err)
		}
	}

	days, err := e.provider.EstimateTokenAge(ctx, token)
	if err != nil {
		e.logger.Printf("age %s: estimate failed, using default: %v", token, err)
		return trend.ClassifyAgeDays(nil)
	}
	return trend.ClassifyAgeDays(days)
}

// evaluate scores every profile timeframe of token then aggregates.
func (e *Engine) evaluate(token string, age trend.AgeInfo, set trend.CandleSet) domain.TrendAnalysis {
	profile := trend.ProfileFor(age.Category)
	results := make(map[domain.Timeframe]domain.TimeframeResult, len(profile.Timeframes))
	for _, tf := range profile.Timeframes {
		results[tf] = e.evaluator.Evaluate(tf, set.Series(token, tf))
	}

	analysis := e.aggregator.Aggregate(token, results, age)
	observability.RecordTrendAnalysis(string(analysis.AgeCategory), string(analysis.TrendDirection), analysis.TrendScore)
	return analysis
}
