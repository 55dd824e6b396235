package trend

import "virtuoso-gem-finder/internal/domain"

// consensusTolerance lets a 2-of-3 consensus (0.666…) meet a 0.67 minimum.
const consensusTolerance = 0.005

// RequireUptrendConfirmation reports whether analysis is a confirmed uptrend.
// Younger age categories need a higher score and a broader consensus.
func (c Config) RequireUptrendConfirmation(analysis domain.TrendAnalysis) bool {
	if analysis.Error || analysis.TrendDirection != domain.TrendUp {
		return false
	}
	min := c.ConfirmationFor(analysis.AgeCategory)
	return analysis.TrendScore >= min.MinScore &&
		analysis.TimeframeConsensus+consensusTolerance >= min.MinConsensus
}

// RequireUptrendConfirmation applies the default thresholds.
func RequireUptrendConfirmation(analysis domain.TrendAnalysis) bool {
	return DefaultConfig().RequireUptrendConfirmation(analysis)
}
