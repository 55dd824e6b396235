// Package whale classifies top traders of a token into whales, sharks and fish
// and reduces their behavior into market structure and trading insights.
package whale

import "virtuoso-gem-finder/internal/domain"

// TierThreshold gates one tier. All three conditions must hold.
type TierThreshold struct {
	MinVolume   float64
	MinAvgTrade float64
	MinTrades   int
}

// ImpactThreshold marks a trader's market impact.
type ImpactThreshold struct {
	MinVolume   float64
	MinAvgTrade float64
}

// Config holds classification and synthesis thresholds.
type Config struct {
	Whale TierThreshold
	Shark TierThreshold

	AccumulatingRatio float64 // buy ratio at or above which bias is accumulating
	DistributingRatio float64 // buy ratio at or below which bias is distributing

	HighImpact   ImpactThreshold
	MediumImpact ImpactThreshold

	// Tier volume marking activity levels.
	ActivityVeryHigh float64
	ActivityHigh     float64
	ActivityMedium   float64

	DominantActionRatio float64 // side ratio above which a tier is buying/selling

	WhaleDominated    float64 // whale dominance for whale_dominated
	WhaleInfluenced   float64 // whale dominance for whale_influenced
	SharkActive       float64 // shark presence for shark_active
	SharkConcentrated float64 // weight of shark presence in the concentration score

	ExcludeOffCurve bool // opt-in: skip unlabeled program-derived accounts
	ExcludedKinds   []domain.KnownAccountKind
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Whale: TierThreshold{MinVolume: 100_000, MinAvgTrade: 1_000, MinTrades: 1},
		Shark: TierThreshold{MinVolume: 10_000, MinAvgTrade: 500, MinTrades: 1},

		AccumulatingRatio: 0.7,
		DistributingRatio: 0.3,

		HighImpact:   ImpactThreshold{MinVolume: 500_000, MinAvgTrade: 20_000},
		MediumImpact: ImpactThreshold{MinVolume: 100_000, MinAvgTrade: 5_000},

		ActivityVeryHigh: 1_000_000,
		ActivityHigh:     500_000,
		ActivityMedium:   100_000,

		DominantActionRatio: 0.6,

		WhaleDominated:    0.7,
		WhaleInfluenced:   0.4,
		SharkActive:       0.5,
		SharkConcentrated: 0.5,

		ExcludeOffCurve: false,
		ExcludedKinds:   []domain.KnownAccountKind{domain.AccountExchange, domain.AccountLiquidityPool},
	}
}

// Bias maps a buy ratio to a directional bias.
func (c Config) Bias(buyRatio float64) domain.DirectionalBias {
	switch {
	case buyRatio >= c.AccumulatingRatio:
		return domain.BiasAccumulating
	case buyRatio <= c.DistributingRatio:
		return domain.BiasDistributing
	default:
		return domain.BiasNeutral
	}
}

func (t TierThreshold) admits(volume, avgTrade float64, trades int) bool {
	return volume >= t.MinVolume && trades >= t.MinTrades && avgTrade >= t.MinAvgTrade
}

func (t ImpactThreshold) admits(volume, avgTrade float64) bool {
	return volume >= t.MinVolume && avgTrade >= t.MinAvgTrade
}

func (c Config) excludes(kind domain.KnownAccountKind) bool {
	for _, k := range c.ExcludedKinds {
		if k == kind {
			return true
		}
	}
	return false
}
