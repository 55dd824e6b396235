package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownWindow is returned for unsupported reporting windows.
var ErrUnknownWindow = errors.New("unknown window")

// Window is a trader reporting window.
type Window string

const (
	Window30m Window = "30m"
	Window1h  Window = "1h"
	Window2h  Window = "2h"
	Window4h  Window = "4h"
	Window6h  Window = "6h"
	Window8h  Window = "8h"
	Window12h Window = "12h"
	Window24h Window = "24h"
)

var windowDurations = map[Window]time.Duration{
	Window30m: 30 * time.Minute,
	Window1h:  time.Hour,
	Window2h:  2 * time.Hour,
	Window4h:  4 * time.Hour,
	Window6h:  6 * time.Hour,
	Window8h:  8 * time.Hour,
	Window12h: 12 * time.Hour,
	Window24h: 24 * time.Hour,
}

// ParseWindow converts a string into a Window.
func ParseWindow(s string) (Window, error) {
	w := Window(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := windowDurations[w]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownWindow, s)
	}
	return w, nil
}

// Duration returns the window length. Zero for unknown windows.
func (w Window) Duration() time.Duration {
	return windowDurations[w]
}

// ActivityLevel buckets a tier's total volume.
type ActivityLevel string

const (
	ActivityNone     ActivityLevel = "none"
	ActivityLow      ActivityLevel = "low"
	ActivityMedium   ActivityLevel = "medium"
	ActivityHigh     ActivityLevel = "high"
	ActivityVeryHigh ActivityLevel = "very_high"
)

// DominantAction is the prevailing side of a tier.
type DominantAction string

const (
	ActionBuying  DominantAction = "buying"
	ActionSelling DominantAction = "selling"
	ActionMixed   DominantAction = "mixed"
)

// GroupMovement is the reduced behavior of one tier in one window.
type GroupMovement struct {
	Tier            Tier            `json:"tier"`
	TraderCount     int             `json:"trader_count"`
	KnownAccounts   int             `json:"known_accounts"`
	DirectionalBias DirectionalBias `json:"directional_bias"`
	BuyRatio        float64         `json:"buy_ratio"`
	SellRatio       float64         `json:"sell_ratio"`
	ActivityLevel   ActivityLevel   `json:"activity_level"`
	TotalVolume     float64         `json:"total_volume"`
	BuyVolume       float64         `json:"buy_volume"`
	SellVolume      float64         `json:"sell_volume"`
	DominantAction  DominantAction  `json:"dominant_action"`
}

// StructureType classifies which tier dominates volume.
type StructureType string

const (
	StructureWhaleDominated  StructureType = "whale_dominated"
	StructureWhaleInfluenced StructureType = "whale_influenced"
	StructureSharkActive     StructureType = "shark_active"
	StructureFragmented      StructureType = "fragmented"
)

// MarketControl names the tier that effectively sets price action.
type MarketControl string

const (
	ControlInstitutional MarketControl = "institutional"
	ControlMixedLarge    MarketControl = "mixed_large"
	ControlSmartMoney    MarketControl = "smart_money"
	ControlRetail        MarketControl = "retail"
)

// MarketStructure summarizes whale vs shark volume share.
type MarketStructure struct {
	StructureType      StructureType `json:"structure_type"`
	WhaleDominance     float64       `json:"whale_dominance"`
	SharkPresence      float64       `json:"shark_presence"`
	MarketControl      MarketControl `json:"market_control"`
	ConcentrationScore float64       `json:"concentration_score"`
	WhaleCount         int           `json:"whale_count"`
	SharkCount         int           `json:"shark_count"`
}

// InsightSignal is a trading signal derived from tier biases.
type InsightSignal string

const (
	SignalStrongBullish         InsightSignal = "strong_bullish"
	SignalStrongBearish         InsightSignal = "strong_bearish"
	SignalWhaleAccumulation     InsightSignal = "whale_accumulation"
	SignalWhaleDistribution     InsightSignal = "whale_distribution"
	SignalDivergence            InsightSignal = "divergence"
	SignalWhaleActivityVeryHigh InsightSignal = "whale_activity_very_high"
	SignalSharkActivityVeryHigh InsightSignal = "shark_activity_very_high"
)

// RiskLevel grades the risk implied by the insight.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RecommendedAction is the suggested handling of a token.
type RecommendedAction string

const (
	ActionConsiderLong  RecommendedAction = "consider_long"
	ActionAvoid         RecommendedAction = "avoid"
	ActionWatchForEntry RecommendedAction = "watch_for_entry"
	ActionConsiderExit  RecommendedAction = "consider_exit"
	ActionCaution       RecommendedAction = "caution"
	ActionMonitor       RecommendedAction = "monitor"
)

// TradingInsights is the rule-table output of the synthesizer.
type TradingInsights struct {
	Signals           []InsightSignal   `json:"signals"`
	RiskAssessment    RiskLevel         `json:"risk_assessment"`
	RecommendedAction RecommendedAction `json:"recommended_action"`
}

// HasSignal reports whether s is among the insight signals.
func (t TradingInsights) HasSignal(s InsightSignal) bool {
	for _, sig := range t.Signals {
		if sig == s {
			return true
		}
	}
	return false
}

// MovementAnalysis is the full whale/shark result for one (token, window).
type MovementAnalysis struct {
	Token     string          `json:"token"`
	Window    Window          `json:"window"`
	Whale     GroupMovement   `json:"whale"`
	Shark     GroupMovement   `json:"shark"`
	Structure MarketStructure `json:"structure"`
	Insights  TradingInsights `json:"trading_insights"`
	Traders   int             `json:"traders_received"`
	Skipped   int             `json:"traders_skipped"`
}

// Momentum classifies short-window behavior against the long-window baseline.
type Momentum string

const (
	MomentumAcceleratingBullish Momentum = "accelerating_bullish"
	MomentumAcceleratingBearish Momentum = "accelerating_bearish"
	MomentumEmergingBullish     Momentum = "emerging_bullish"
	MomentumEmergingBearish     Momentum = "emerging_bearish"
	MomentumNeutral             Momentum = "neutral"
)

// TrendComparison is the result of comparing a long and a short window.
type TrendComparison struct {
	Momentum         Momentum `json:"momentum"`
	TrendSignals     []string `json:"trend_signals"`
	WhaleTrendChange bool     `json:"whale_trend_change"`
	SharkTrendChange bool     `json:"shark_trend_change"`
}
