package domain

// AgeCategory buckets token maturity.
type AgeCategory string

// Age categories, youngest first.
const (
	AgeUltraNew    AgeCategory = "ultra_new"
	AgeNew         AgeCategory = "new"
	AgeVeryRecent  AgeCategory = "very_recent"
	AgeRecent      AgeCategory = "recent"
	AgeDeveloping  AgeCategory = "developing"
	AgeEstablished AgeCategory = "established"
	AgeMature      AgeCategory = "mature"
)

// AllAgeCategories lists categories youngest first.
var AllAgeCategories = []AgeCategory{
	AgeUltraNew, AgeNew, AgeVeryRecent, AgeRecent,
	AgeDeveloping, AgeEstablished, AgeMature,
}

// VolumeTrend describes recent volume relative to an earlier window.
type VolumeTrend string

const (
	VolumeIncreasing       VolumeTrend = "increasing"
	VolumeDecreasing       VolumeTrend = "decreasing"
	VolumeStable           VolumeTrend = "stable"
	VolumeInsufficientData VolumeTrend = "insufficient_data"
)

// TrendDirection is the aggregated direction across timeframes.
type TrendDirection string

const (
	TrendUp       TrendDirection = "UPTREND"
	TrendDown     TrendDirection = "DOWNTREND"
	TrendSideways TrendDirection = "SIDEWAYS"
	TrendUnknown  TrendDirection = "UNKNOWN"
)

// TimeframeResult is the evaluation of one candle series.
// Score 0 with all flags false means insufficient data.
type TimeframeResult struct {
	Timeframe       Timeframe   `json:"timeframe"`
	Score           float64     `json:"score"`
	PriceAboveEMA20 bool        `json:"price_above_ema20"`
	PriceAboveEMA50 bool        `json:"price_above_ema50"`
	EMAAlignment    bool        `json:"ema_alignment"`
	HigherStructure bool        `json:"higher_structure"`
	Momentum        float64     `json:"momentum"` // percent, clamped to [-100, 100]
	VolumeTrend     VolumeTrend `json:"volume_trend"`
	CurrentPrice    float64     `json:"current_price"`
	EMA20           float64     `json:"ema20"`
	EMA50           float64     `json:"ema50"`
}

// HasData reports whether the result carries a usable score.
func (r TimeframeResult) HasData() bool {
	return r.Score > 0
}

// TrendAnalysis is the composite multi-timeframe result for one token.
type TrendAnalysis struct {
	Token              string                `json:"token"`
	TrendScore         float64               `json:"trend_score"`
	TrendDirection     TrendDirection        `json:"trend_direction"`
	EMAAlignment       bool                  `json:"ema_alignment"`
	HigherStructure    bool                  `json:"higher_structure"`
	TimeframeConsensus float64               `json:"timeframe_consensus"`
	AgeCategory        AgeCategory           `json:"age_category"`
	AgeDays            float64               `json:"age_days"`
	TimeframesAnalyzed []Timeframe           `json:"timeframes_analyzed"`
	Momentum           map[Timeframe]float64 `json:"momentum"`
	Timeframes         []TimeframeResult     `json:"timeframes,omitempty"`
	Error              bool                  `json:"error"`
}
