package whale

import (
	"math"

	"virtuoso-gem-finder/internal/domain"
)

// EmptyGroup is the neutral default of a tier with no traders.
func EmptyGroup(tier domain.Tier) domain.GroupMovement {
	return domain.GroupMovement{
		Tier:            tier,
		DirectionalBias: domain.BiasNeutral,
		ActivityLevel:   domain.ActivityNone,
		DominantAction:  domain.ActionMixed,
	}
}

// AggregateGroup reduces the traders of one tier into a GroupMovement.
func (c Config) AggregateGroup(tier domain.Tier, traders []domain.ClassifiedTrader) domain.GroupMovement {
	if len(traders) == 0 {
		return EmptyGroup(tier)
	}

	g := domain.GroupMovement{Tier: tier, TraderCount: len(traders)}
	for _, t := range traders {
		g.TotalVolume += t.Volume
		g.BuyVolume += t.BuyVolume
		g.SellVolume += t.SellVolume
		if t.Known {
			g.KnownAccounts++
		}
	}

	denom := math.Max(g.TotalVolume, g.BuyVolume+g.SellVolume)
	if denom > 0 {
		g.BuyRatio = g.BuyVolume / denom
		g.SellRatio = g.SellVolume / denom
	}
	g.DirectionalBias = c.Bias(g.BuyRatio)
	g.ActivityLevel = c.activity(g.TotalVolume)

	switch {
	case g.BuyRatio > c.DominantActionRatio:
		g.DominantAction = domain.ActionBuying
	case g.SellRatio > c.DominantActionRatio:
		g.DominantAction = domain.ActionSelling
	default:
		g.DominantAction = domain.ActionMixed
	}
	return g
}

func (c Config) activity(volume float64) domain.ActivityLevel {
	switch {
	case volume >= c.ActivityVeryHigh:
		return domain.ActivityVeryHigh
	case volume >= c.ActivityHigh:
		return domain.ActivityHigh
	case volume >= c.ActivityMedium:
		return domain.ActivityMedium
	default:
		return domain.ActivityLow
	}
}
