package whale

import "virtuoso-gem-finder/internal/domain"

// EmptyStructure is the structure reported when no whale or shark traded.
func EmptyStructure() domain.MarketStructure {
	return domain.MarketStructure{
		StructureType: domain.StructureFragmented,
		MarketControl: domain.ControlRetail,
	}
}

// SynthesizeStructure derives the market structure from the two tier groups.
func (c Config) SynthesizeStructure(whale, shark domain.GroupMovement) domain.MarketStructure {
	total := whale.TotalVolume + shark.TotalVolume
	if total <= 0 {
		s := EmptyStructure()
		s.WhaleCount = whale.TraderCount
		s.SharkCount = shark.TraderCount
		return s
	}

	s := domain.MarketStructure{
		WhaleDominance: whale.TotalVolume / total,
		SharkPresence:  shark.TotalVolume / total,
		WhaleCount:     whale.TraderCount,
		SharkCount:     shark.TraderCount,
	}
	switch {
	case s.WhaleDominance >= c.WhaleDominated:
		s.StructureType = domain.StructureWhaleDominated
	case s.WhaleDominance >= c.WhaleInfluenced:
		s.StructureType = domain.StructureWhaleInfluenced
	case s.SharkPresence >= c.SharkActive:
		s.StructureType = domain.StructureSharkActive
	default:
		s.StructureType = domain.StructureFragmented
	}
	s.MarketControl = ControlFor(s.StructureType)
	s.ConcentrationScore = s.WhaleDominance + c.SharkConcentrated*s.SharkPresence
	return s
}

// ControlFor maps a structure type to the tier in control of price action.
func ControlFor(t domain.StructureType) domain.MarketControl {
	switch t {
	case domain.StructureWhaleDominated:
		return domain.ControlInstitutional
	case domain.StructureWhaleInfluenced:
		return domain.ControlMixedLarge
	case domain.StructureSharkActive:
		return domain.ControlSmartMoney
	case domain.StructureFragmented:
		return domain.ControlRetail
	}
	return domain.ControlRetail
}
