package whale

import (
	"fmt"

	"virtuoso-gem-finder/internal/domain"
)

// CompareWindows compares a long-window baseline with a short, more recent window.
// The short window leads: momentum is read from it, with the long window as reference.
func CompareWindows(long, short domain.MovementAnalysis) domain.TrendComparison {
	cmp := domain.TrendComparison{
		Momentum:         momentum(long, short),
		TrendSignals:     []string{},
		WhaleTrendChange: long.Whale.DirectionalBias != short.Whale.DirectionalBias,
		SharkTrendChange: long.Shark.DirectionalBias != short.Shark.DirectionalBias,
	}

	if cmp.WhaleTrendChange {
		cmp.TrendSignals = append(cmp.TrendSignals,
			fmt.Sprintf("whale_%s_to_%s", long.Whale.DirectionalBias, short.Whale.DirectionalBias))
	}
	if cmp.SharkTrendChange {
		cmp.TrendSignals = append(cmp.TrendSignals,
			fmt.Sprintf("shark_%s_to_%s", long.Shark.DirectionalBias, short.Shark.DirectionalBias))
	}
	if long.Structure.StructureType != short.Structure.StructureType &&
		long.Structure.StructureType != "" && short.Structure.StructureType != "" {
		cmp.TrendSignals = append(cmp.TrendSignals,
			fmt.Sprintf("control_%s_to_%s", long.Structure.MarketControl, short.Structure.MarketControl))
	}
	return cmp
}

func momentum(long, short domain.MovementAnalysis) domain.Momentum {
	sw, ss := short.Whale.DirectionalBias, short.Shark.DirectionalBias
	switch {
	case sw == domain.BiasAccumulating && ss == domain.BiasAccumulating:
		return domain.MomentumAcceleratingBullish
	case sw == domain.BiasDistributing && ss == domain.BiasDistributing:
		return domain.MomentumAcceleratingBearish
	case long.Whale.DirectionalBias == domain.BiasNeutral && sw == domain.BiasAccumulating:
		return domain.MomentumEmergingBullish
	case long.Whale.DirectionalBias == domain.BiasNeutral && sw == domain.BiasDistributing:
		return domain.MomentumEmergingBearish
	default:
		return domain.MomentumNeutral
	}
}
