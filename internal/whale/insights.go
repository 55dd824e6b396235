package whale

import "virtuoso-gem-finder/internal/domain"

// DeriveInsights applies the bias rule table to the two tiers. The first
// matching rule sets risk and action; very high tier activity adds signals.
func DeriveInsights(whale, shark domain.GroupMovement) domain.TradingInsights {
	insights := domain.TradingInsights{
		Signals:           []domain.InsightSignal{},
		RiskAssessment:    domain.RiskMedium,
		RecommendedAction: domain.ActionMonitor,
	}

	if signal, ok := biasSignal(whale.DirectionalBias, shark.DirectionalBias); ok {
		insights.Signals = append(insights.Signals, signal)
		insights.RiskAssessment, insights.RecommendedAction = ruleOutcome(signal)
	}

	if whale.ActivityLevel == domain.ActivityVeryHigh {
		insights.Signals = append(insights.Signals, domain.SignalWhaleActivityVeryHigh)
	}
	if shark.ActivityLevel == domain.ActivityVeryHigh {
		insights.Signals = append(insights.Signals, domain.SignalSharkActivityVeryHigh)
	}
	return insights
}

func biasSignal(whale, shark domain.DirectionalBias) (domain.InsightSignal, bool) {
	switch {
	case whale == domain.BiasAccumulating && shark == domain.BiasAccumulating:
		return domain.SignalStrongBullish, true
	case whale == domain.BiasDistributing && shark == domain.BiasDistributing:
		return domain.SignalStrongBearish, true
	case whale == domain.BiasAccumulating && shark == domain.BiasNeutral:
		return domain.SignalWhaleAccumulation, true
	case whale == domain.BiasDistributing && shark == domain.BiasNeutral:
		return domain.SignalWhaleDistribution, true
	case whale != domain.BiasNeutral && shark != domain.BiasNeutral && whale != shark:
		return domain.SignalDivergence, true
	}
	return "", false
}

func ruleOutcome(signal domain.InsightSignal) (domain.RiskLevel, domain.RecommendedAction) {
	switch signal {
	case domain.SignalStrongBullish:
		return domain.RiskLow, domain.ActionConsiderLong
	case domain.SignalStrongBearish:
		return domain.RiskHigh, domain.ActionAvoid
	case domain.SignalWhaleAccumulation:
		return domain.RiskMedium, domain.ActionWatchForEntry
	case domain.SignalWhaleDistribution:
		return domain.RiskHigh, domain.ActionConsiderExit
	case domain.SignalDivergence:
		return domain.RiskHigh, domain.ActionCaution
	case domain.SignalWhaleActivityVeryHigh, domain.SignalSharkActivityVeryHigh:
	}
	return domain.RiskMedium, domain.ActionMonitor
}
