package trend

import (
	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/indicators"
)

// Aggregator combines per-timeframe results into one TrendAnalysis.
type Aggregator struct {
	cfg Config
}

// NewAggregator creates a new Aggregator.
func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Failed returns the zero/error analysis used when no timeframe produced data.
func Failed(token string, age AgeInfo) domain.TrendAnalysis {
	return domain.TrendAnalysis{
		Token:              token,
		TrendDirection:     domain.TrendUnknown,
		AgeCategory:        age.Category,
		AgeDays:            age.Days,
		TimeframesAnalyzed: []domain.Timeframe{},
		Momentum:           map[domain.Timeframe]float64{},
		Error:              true,
	}
}

// Aggregate computes the weighted composite for one token.
//
// Only timeframes of the age profile with Score > 0 take part; insufficient-data
// timeframes are left out of both numerator and denominator.
func (a *Aggregator) Aggregate(token string, results map[domain.Timeframe]domain.TimeframeResult, age AgeInfo) domain.TrendAnalysis {
	profile := ProfileFor(age.Category)

	var (
		included    []domain.TimeframeResult
		evaluated   []domain.TimeframeResult
		weightedSum float64
		totalWeight float64
	)
	for _, tf := range profile.Timeframes {
		r, ok := results[tf]
		if !ok {
			continue
		}
		evaluated = append(evaluated, r)
		w := profile.Weight(tf)
		if !r.HasData() || w <= 0 {
			continue
		}
		included = append(included, r)
		weightedSum += w * r.Score
		totalWeight += w
	}

	if len(included) == 0 || totalWeight == 0 {
		failed := Failed(token, age)
		failed.Timeframes = evaluated
		return failed
	}

	var bullish, aboveBoth, aligned, structured int
	analysis := domain.TrendAnalysis{
		Token:              token,
		AgeCategory:        age.Category,
		AgeDays:            age.Days,
		TimeframesAnalyzed: make([]domain.Timeframe, 0, len(included)),
		Momentum:           make(map[domain.Timeframe]float64, len(included)),
		Timeframes:         evaluated,
	}
	for _, r := range included {
		analysis.TimeframesAnalyzed = append(analysis.TimeframesAnalyzed, r.Timeframe)
		analysis.Momentum[r.Timeframe] = r.Momentum
		if r.Score >= a.cfg.BullishScore {
			bullish++
		}
		if r.PriceAboveEMA20 && r.PriceAboveEMA50 {
			aboveBoth++
		}
		if r.EMAAlignment {
			aligned++
		}
		if r.HigherStructure {
			structured++
		}
	}

	count := float64(len(included))
	analysis.TimeframeConsensus = float64(bullish) / count
	analysis.EMAAlignment = float64(aligned)/count > 0.5
	analysis.HigherStructure = float64(structured)/count > 0.5

	aboveRatio := float64(aboveBoth) / count
	switch {
	case aboveRatio >= a.cfg.UptrendRatio:
		analysis.TrendDirection = domain.TrendUp
	case aboveRatio <= a.cfg.DowntrendRatio:
		analysis.TrendDirection = domain.TrendDown
	default:
		analysis.TrendDirection = domain.TrendSideways
	}

	score := weightedSum / totalWeight * a.cfg.DampingFor(age.Category)
	score += (analysis.TimeframeConsensus - 0.5) * a.cfg.ConsensusAdjustment
	analysis.TrendScore = indicators.Clamp(score, 0, 100)

	return analysis
}
