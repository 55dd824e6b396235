package reporting

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/engine"
	"virtuoso-gem-finder/internal/trend"
)

func sampleBatch() engine.BatchResult {
	return engine.BatchResult{
		RunID: uuid.MustParse("7d4f5c1e-7a0b-4c6e-9e55-0f3c1b2a9d10"),
		Results: map[string]domain.TrendAnalysis{
			"tokenUp": {
				Token: "tokenUp", TrendDirection: domain.TrendUp, TrendScore: 82,
				TimeframeConsensus: 1, AgeCategory: domain.AgeEstablished, AgeDays: 10,
				TimeframesAnalyzed: []domain.Timeframe{domain.Timeframe15m, domain.Timeframe1h, domain.Timeframe4h},
			},
			"tokenWeakUp": {
				Token: "tokenWeakUp", TrendDirection: domain.TrendUp, TrendScore: 90,
				TimeframeConsensus: 0.34, AgeCategory: domain.AgeEstablished, AgeDays: 12,
			},
			"tokenDown": {
				Token: "tokenDown", TrendDirection: domain.TrendDown, TrendScore: 20,
				AgeCategory: domain.AgeMature, AgeDays: 90,
			},
			"tokenNone": {
				Token: "tokenNone", TrendDirection: domain.TrendUnknown, Error: true,
				AgeCategory: domain.AgeNew,
			},
		},
		Stats: trend.BatchStats{Unique: 10, Failed: 2},
	}
}

func TestBuildTrendReport(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := BuildTrendReport(sampleBatch(), trend.DefaultConfig(), now)

	assert.Equal(t, "7d4f5c1e-7a0b-4c6e-9e55-0f3c1b2a9d10", r.RunID)
	assert.Equal(t, TrendSummary{Tokens: 4, Uptrend: 2, Downtrend: 1, Failed: 1, Confirmed: 1}, r.Summary)

	require.Len(t, r.Rows, 4)
	// Confirmed first, then by score.
	assert.Equal(t, "tokenUp", r.Rows[0].Token)
	assert.True(t, r.Rows[0].Confirmed)
	assert.Equal(t, 3, r.Rows[0].Timeframes)
	assert.Equal(t, "tokenWeakUp", r.Rows[1].Token)
	assert.False(t, r.Rows[1].Confirmed)
	assert.Equal(t, "tokenDown", r.Rows[2].Token)
	assert.Equal(t, "tokenNone", r.Rows[3].Token)
}

func TestRenderCSV(t *testing.T) {
	r := BuildTrendReport(sampleBatch(), trend.DefaultConfig(), time.Now())
	lines := strings.Split(strings.TrimSpace(RenderCSV(r)), "\n")

	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "token,direction,trend_score"))
	assert.Equal(t, "tokenUp,UPTREND,82.00,1.0000,established,10.00,3,true,false", lines[1])
	assert.True(t, strings.HasSuffix(lines[4], ",false,true"))
}

func TestRenderMarkdown(t *testing.T) {
	r := BuildTrendReport(sampleBatch(), trend.DefaultConfig(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	md := RenderMarkdown(r)

	assert.Contains(t, md, "# Trend Report")
	assert.Contains(t, md, "Generated: 2026-03-01T12:00:00Z")
	assert.Contains(t, md, "| Confirmed Uptrends | 1 |")
	assert.Contains(t, md, "| tokenUp | UPTREND | 82.0 |")
	assert.Contains(t, md, "| tokenNone | NO DATA |")
}

func TestRenderMarkdown_Empty(t *testing.T) {
	r := BuildTrendReport(engine.BatchResult{}, trend.DefaultConfig(), time.Now())
	assert.Contains(t, RenderMarkdown(r), "No tokens analyzed.")
}

func TestRenderMomentumMarkdown(t *testing.T) {
	long := domain.MovementAnalysis{
		Token:  "tok",
		Window: domain.Window24h,
		Whale:  domain.GroupMovement{Tier: domain.TierWhale, TraderCount: 3},
		Shark:  domain.GroupMovement{Tier: domain.TierShark, TraderCount: 5},
		Insights: domain.TradingInsights{
			Signals:           []domain.InsightSignal{domain.SignalWhaleAccumulation},
			RiskAssessment:    domain.RiskMedium,
			RecommendedAction: domain.ActionWatchForEntry,
		},
	}
	short := long
	short.Window = domain.Window6h

	md := RenderMomentumMarkdown("tok", engine.MomentumReport{
		Long:  long,
		Short: short,
		Comparison: domain.TrendComparison{
			Momentum:     domain.MomentumNeutral,
			TrendSignals: []string{"whale_distributing_to_accumulating"},
		},
	})

	assert.Contains(t, md, "# Momentum tok")
	assert.Contains(t, md, "**neutral**")
	assert.Contains(t, md, "- whale_distributing_to_accumulating")
	assert.Contains(t, md, "## Long window (24h)")
	assert.Contains(t, md, "## Short window (6h)")
	assert.Contains(t, md, "| whale | 3 |")
	assert.Contains(t, md, "signals: whale_accumulation")
}

func TestRenderMovementMarkdown(t *testing.T) {
	md := RenderMovementMarkdown(domain.MovementAnalysis{Token: "tok", Window: domain.Window1h})
	assert.Contains(t, md, "# Movements tok (1h)")
	assert.Contains(t, md, "Structure:")
}
