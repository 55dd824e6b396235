package trend

import (
	"math"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/indicators"
)

// Evaluator scores a single candle series.
type Evaluator struct {
	cfg Config
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator(cfg Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// InsufficientData returns the default result for a series that cannot be evaluated.
func InsufficientData(tf domain.Timeframe) domain.TimeframeResult {
	return domain.TimeframeResult{
		Timeframe:   tf,
		VolumeTrend: domain.VolumeInsufficientData,
	}
}

// Evaluate computes the trend result for one timeframe.
// Candles with a non-positive or NaN close are dropped before the length check.
func (e *Evaluator) Evaluate(tf domain.Timeframe, candles []domain.Candle) domain.TimeframeResult {
	series := usableCandles(candles)
	if len(series) < e.cfg.MinCandles(tf) || len(series) < 2 {
		return InsufficientData(tf)
	}

	n := len(series)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, c := range series {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
		volumes[i] = c.Volume
	}

	warmup := !e.cfg.StrictEMASeeding
	ema20, has20 := indicators.Last(indicators.EMA(closes, e.cfg.EMAShortPeriod, warmup))
	ema50, has50 := indicators.Last(indicators.EMA(closes, e.cfg.EMALongPeriod, warmup))
	price := closes[n-1]

	result := domain.TimeframeResult{
		Timeframe:       tf,
		CurrentPrice:    price,
		EMA20:           ema20,
		EMA50:           ema50,
		PriceAboveEMA20: has20 && price > ema20,
		PriceAboveEMA50: has50 && price > ema50,
		EMAAlignment:    has20 && has50 && ema20 > ema50,
		HigherStructure: e.higherStructure(highs, lows),
		Momentum:        e.momentum(closes),
		VolumeTrend:     e.volumeTrend(volumes),
	}
	result.Score = e.score(result)
	return result
}

// higherStructure compares the most recent window against the one before it.
// Both the recent high and the recent low must exceed the prior ones.
func (e *Evaluator) higherStructure(highs, lows []float64) bool {
	n := len(highs)
	lookback := e.cfg.StructureLookback
	var recentStart, priorStart int
	if lookback > 0 && n >= 2*lookback {
		recentStart = n - lookback
		priorStart = n - 2*lookback
	} else {
		recentStart = n - n/2
		priorStart = 0
	}
	if recentStart <= priorStart || recentStart >= n {
		return false
	}

	recentHigh := indicators.Max(highs[recentStart:])
	recentLow := indicators.Min(lows[recentStart:])
	priorHigh := indicators.Max(highs[priorStart:recentStart])
	priorLow := indicators.Min(lows[priorStart:recentStart])

	return recentHigh > priorHigh && recentLow > priorLow
}

// comparisonWindows returns the [start,end) bounds of the recent and baseline windows
// shared by momentum and volume trend.
func (e *Evaluator) comparisonWindows(n int) (recentStart, baseStart, baseEnd int) {
	recent := e.cfg.MomentumRecent
	if recent > n {
		recent = n
	}
	recentStart = n - recent

	back := e.cfg.MomentumBack
	baseline := e.cfg.MomentumBaseline
	if back > 0 && n >= back && back-baseline >= recent {
		baseStart = n - back
		baseEnd = baseStart + baseline
		return recentStart, baseStart, baseEnd
	}

	// Not enough history: first candles against the last ones.
	baseEnd = baseline
	if baseEnd > n {
		baseEnd = n
	}
	return recentStart, 0, baseEnd
}

func (e *Evaluator) momentum(closes []float64) float64 {
	recentStart, baseStart, baseEnd := e.comparisonWindows(len(closes))
	recent := indicators.Mean(closes[recentStart:])
	base := indicators.Mean(closes[baseStart:baseEnd])
	bound := e.cfg.MomentumClamp
	return indicators.Clamp(indicators.PercentChange(base, recent), -bound, bound)
}

func (e *Evaluator) volumeTrend(volumes []float64) domain.VolumeTrend {
	recentStart, baseStart, baseEnd := e.comparisonWindows(len(volumes))
	if baseEnd <= baseStart {
		return domain.VolumeInsufficientData
	}
	recent := indicators.Mean(volumes[recentStart:])
	base := indicators.Mean(volumes[baseStart:baseEnd])

	if base <= 0 {
		if recent > 0 {
			return domain.VolumeIncreasing
		}
		return domain.VolumeStable
	}

	change := (recent - base) / base
	switch {
	case change >= e.cfg.VolumeChange:
		return domain.VolumeIncreasing
	case change <= -e.cfg.VolumeChange:
		return domain.VolumeDecreasing
	default:
		return domain.VolumeStable
	}
}

func (e *Evaluator) score(r domain.TimeframeResult) float64 {
	p := e.cfg.Points
	var score float64

	switch {
	case r.PriceAboveEMA20 && r.PriceAboveEMA50:
		score += p.AboveBoth
	case r.PriceAboveEMA20:
		score += p.AboveShortOnly
	case r.PriceAboveEMA50:
		score += p.AboveLongOnly
	}
	if r.EMAAlignment {
		score += p.Alignment
	}
	if r.HigherStructure {
		score += p.HigherStructure
	}
	score += math.Max(0, r.Momentum) / 100 * p.MomentumMax

	switch r.VolumeTrend {
	case domain.VolumeIncreasing:
		score += p.VolumeIncreasing
	case domain.VolumeStable:
		score += p.VolumeStable
	case domain.VolumeDecreasing, domain.VolumeInsufficientData:
	}

	return indicators.Clamp(score, 0, 100)
}

// usableCandles sorts candles by time and drops bars without a usable close.
func usableCandles(candles []domain.Candle) []domain.Candle {
	sorted := domain.SortedCandles(candles)
	out := sorted[:0]
	for _, c := range sorted {
		if c.Close > 0 && !math.IsNaN(c.Close) && !math.IsInf(c.Close, 0) {
			out = append(out, c)
		}
	}
	return out
}
