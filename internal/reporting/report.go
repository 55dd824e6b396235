// Package reporting renders analysis results as Markdown or CSV.
package reporting

import (
	"sort"
	"time"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/engine"
	"virtuoso-gem-finder/internal/trend"
)

// TrendReport is the tabular view of one batch trend run.
type TrendReport struct {
	GeneratedAt time.Time
	RunID       string

	Summary TrendSummary
	Fetch   trend.BatchStats

	// Sorted by confirmed first, then score DESC, then token ASC.
	Rows []TrendRow
}

// TrendSummary counts tokens by outcome.
type TrendSummary struct {
	Tokens    int
	Uptrend   int
	Downtrend int
	Sideways  int
	Failed    int // no usable candles on any timeframe
	Confirmed int
}

// TrendRow is one token of the report.
type TrendRow struct {
	Token       string
	Direction   domain.TrendDirection
	Score       float64
	Consensus   float64
	AgeCategory domain.AgeCategory
	AgeDays     float64
	Timeframes  int
	Confirmed   bool
	Error       bool
}

// BuildTrendReport turns a batch result into report rows, applying the
// confirmation thresholds of cfg.
func BuildTrendReport(result engine.BatchResult, cfg trend.Config, now time.Time) *TrendReport {
	r := &TrendReport{
		GeneratedAt: now.UTC(),
		RunID:       result.RunID.String(),
		Fetch:       result.Stats,
		Rows:        make([]TrendRow, 0, len(result.Results)),
	}

	for token, a := range result.Results {
		row := TrendRow{
			Token:       token,
			Direction:   a.TrendDirection,
			Score:       a.TrendScore,
			Consensus:   a.TimeframeConsensus,
			AgeCategory: a.AgeCategory,
			AgeDays:     a.AgeDays,
			Timeframes:  len(a.TimeframesAnalyzed),
			Confirmed:   cfg.RequireUptrendConfirmation(a),
			Error:       a.Error,
		}
		r.Rows = append(r.Rows, row)

		r.Summary.Tokens++
		switch {
		case a.Error:
			r.Summary.Failed++
		case a.TrendDirection == domain.TrendUp:
			r.Summary.Uptrend++
		case a.TrendDirection == domain.TrendDown:
			r.Summary.Downtrend++
		default:
			r.Summary.Sideways++
		}
		if row.Confirmed {
			r.Summary.Confirmed++
		}
	}

	sort.Slice(r.Rows, func(i, j int) bool {
		a, b := r.Rows[i], r.Rows[j]
		if a.Confirmed != b.Confirmed {
			return a.Confirmed
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Token < b.Token
	})
	return r
}
