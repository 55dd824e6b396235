package reporting

import (
	"fmt"
	"strings"
	"time"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/engine"
)

// RenderMarkdown renders a trend report as Markdown string.
func RenderMarkdown(r *TrendReport) string {
	var sb strings.Builder

	sb.WriteString("# Trend Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s\n\n", r.RunID))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Tokens | %d |\n", r.Summary.Tokens))
	sb.WriteString(fmt.Sprintf("| Confirmed Uptrends | %d |\n", r.Summary.Confirmed))
	sb.WriteString(fmt.Sprintf("| Uptrend | %d |\n", r.Summary.Uptrend))
	sb.WriteString(fmt.Sprintf("| Downtrend | %d |\n", r.Summary.Downtrend))
	sb.WriteString(fmt.Sprintf("| Sideways | %d |\n", r.Summary.Sideways))
	sb.WriteString(fmt.Sprintf("| No Data | %d |\n", r.Summary.Failed))
	sb.WriteString(fmt.Sprintf("| Series Fetched | %d |\n", r.Fetch.Unique))
	sb.WriteString(fmt.Sprintf("| Series Failed | %d |\n", r.Fetch.Failed))
	sb.WriteString("\n")

	// Tokens
	sb.WriteString("## Tokens\n\n")
	if len(r.Rows) == 0 {
		sb.WriteString("No tokens analyzed.\n")
		return sb.String()
	}
	sb.WriteString("| Token | Direction | Score | Consensus | Age | Days | TFs | Confirmed |\n")
	sb.WriteString("|-------|-----------|-------|-----------|-----|------|-----|-----------|\n")
	for _, row := range r.Rows {
		direction := string(row.Direction)
		if row.Error {
			direction = "NO DATA"
		}
		confirmed := ""
		if row.Confirmed {
			confirmed = "yes"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %.1f | %.2f | %s | %.1f | %d | %s |\n",
			row.Token, direction, row.Score, row.Consensus, row.AgeCategory, row.AgeDays, row.Timeframes, confirmed))
	}

	return sb.String()
}

// RenderMovementMarkdown renders one whale/shark movement analysis.
func RenderMovementMarkdown(m domain.MovementAnalysis) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Movements %s (%s)\n\n", m.Token, m.Window))
	writeMovement(&sb, m)
	return sb.String()
}

// RenderMomentumMarkdown renders a long/short window comparison.
func RenderMomentumMarkdown(token string, r engine.MomentumReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Momentum %s\n\n", token))
	sb.WriteString(fmt.Sprintf("**%s**\n\n", r.Comparison.Momentum))
	for _, s := range r.Comparison.TrendSignals {
		sb.WriteString(fmt.Sprintf("- %s\n", s))
	}
	if len(r.Comparison.TrendSignals) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("## Long window (%s)\n\n", r.Long.Window))
	writeMovement(&sb, r.Long)
	sb.WriteString(fmt.Sprintf("## Short window (%s)\n\n", r.Short.Window))
	writeMovement(&sb, r.Short)
	return sb.String()
}

func writeMovement(sb *strings.Builder, m domain.MovementAnalysis) {
	sb.WriteString("| Tier | Traders | Known | Bias | Buy | Sell | Activity | Volume |\n")
	sb.WriteString("|------|---------|-------|------|-----|------|----------|--------|\n")
	for _, g := range []domain.GroupMovement{m.Whale, m.Shark} {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %s | %.2f | %.2f | %s | %.0f |\n",
			g.Tier, g.TraderCount, g.KnownAccounts, g.DirectionalBias,
			g.BuyRatio, g.SellRatio, g.ActivityLevel, g.TotalVolume))
	}
	sb.WriteString("\n")

	s := m.Structure
	sb.WriteString(fmt.Sprintf("Structure: %s, control: %s, whale dominance %.2f, shark presence %.2f\n\n",
		s.StructureType, s.MarketControl, s.WhaleDominance, s.SharkPresence))

	sb.WriteString(fmt.Sprintf("Risk: %s, action: %s", m.Insights.RiskAssessment, m.Insights.RecommendedAction))
	if len(m.Insights.Signals) > 0 {
		signals := make([]string, len(m.Insights.Signals))
		for i, sig := range m.Insights.Signals {
			signals[i] = string(sig)
		}
		sb.WriteString(fmt.Sprintf(", signals: %s", strings.Join(signals, ", ")))
	}
	sb.WriteString("\n\n")
}
