// Package trend confirms whether a token's price structure is trending upward
// across multiple timeframes chosen from the token's age.
package trend

import "virtuoso-gem-finder/internal/domain"

// ScorePoints holds the composite score contributions of one timeframe (max 100).
type ScorePoints struct {
	AboveBoth        float64 // price above EMA20 and EMA50
	AboveShortOnly   float64 // price above EMA20 only
	AboveLongOnly    float64 // price above EMA50 only
	Alignment        float64 // EMA20 > EMA50
	HigherStructure  float64 // higher highs and higher lows
	MomentumMax      float64 // scaled from positive momentum
	VolumeIncreasing float64
	VolumeStable     float64
}

// ConfirmationThreshold is the minimum evidence required to confirm an uptrend.
type ConfirmationThreshold struct {
	MinScore     float64
	MinConsensus float64
}

// Config holds trend evaluation parameters.
type Config struct {
	EMAShortPeriod   int  // default 20
	EMALongPeriod    int  // default 50
	StrictEMASeeding bool // empty EMA when fewer candles than the period

	// Minimum candles, by timeframe granularity.
	MinCandlesSeconds int // 1s..5m
	MinCandlesMinutes int // 15m, 30m
	MinCandlesHours   int // 1h and above

	CandleLimit int // candles requested per timeframe

	StructureLookback int     // candles per structure window (10)
	MomentumRecent    int     // recent closes averaged (5)
	MomentumBack      int     // baseline window starts this many candles back (15)
	MomentumBaseline  int     // baseline closes averaged (5)
	MomentumClamp     float64 // |momentum| bound in percent (100)
	VolumeChange      float64 // relative change marking increasing/decreasing (0.20)

	Points ScorePoints

	BullishScore        float64 // per-timeframe score counted toward consensus (60)
	UptrendRatio        float64 // share of timeframes above both EMAs for UPTREND (0.66)
	DowntrendRatio      float64 // share at or below which direction is DOWNTREND (0.33)
	ConsensusAdjustment float64 // score adjustment = (consensus-0.5)*ConsensusAdjustment

	Damping      map[domain.AgeCategory]float64
	Confirmation map[domain.AgeCategory]ConfirmationThreshold
}

// DefaultConfig returns the default trend configuration.
func DefaultConfig() Config {
	return Config{
		EMAShortPeriod: 20,
		EMALongPeriod:  50,

		MinCandlesSeconds: 15,
		MinCandlesMinutes: 18,
		MinCandlesHours:   20,

		CandleLimit: 100,

		StructureLookback: 10,
		MomentumRecent:    5,
		MomentumBack:      15,
		MomentumBaseline:  5,
		MomentumClamp:     100,
		VolumeChange:      0.20,

		Points: ScorePoints{
			AboveBoth:        30,
			AboveShortOnly:   20,
			AboveLongOnly:    10,
			Alignment:        20,
			HigherStructure:  25,
			MomentumMax:      15,
			VolumeIncreasing: 10,
			VolumeStable:     5,
		},

		BullishScore:        60,
		UptrendRatio:        0.66,
		DowntrendRatio:      0.33,
		ConsensusAdjustment: 5,

		Damping: map[domain.AgeCategory]float64{
			domain.AgeUltraNew:   0.90,
			domain.AgeNew:        0.90,
			domain.AgeVeryRecent: 0.95,
			domain.AgeRecent:     0.95,
		},

		Confirmation: map[domain.AgeCategory]ConfirmationThreshold{
			domain.AgeUltraNew:    {MinScore: 75, MinConsensus: 0.80},
			domain.AgeNew:         {MinScore: 72, MinConsensus: 0.80},
			domain.AgeVeryRecent:  {MinScore: 70, MinConsensus: 0.75},
			domain.AgeRecent:      {MinScore: 65, MinConsensus: 0.67},
			domain.AgeDeveloping:  {MinScore: 62, MinConsensus: 0.67},
			domain.AgeEstablished: {MinScore: 60, MinConsensus: 0.67},
			domain.AgeMature:      {MinScore: 58, MinConsensus: 0.60},
		},
	}
}

// MinCandles returns the minimum series length accepted for tf.
func (c Config) MinCandles(tf domain.Timeframe) int {
	switch tf {
	case domain.Timeframe1s, domain.Timeframe15s, domain.Timeframe30s,
		domain.Timeframe1m, domain.Timeframe5m:
		return c.MinCandlesSeconds
	case domain.Timeframe15m, domain.Timeframe30m:
		return c.MinCandlesMinutes
	default:
		return c.MinCandlesHours
	}
}

// DampingFor returns the score multiplier of an age category (1 when unset).
func (c Config) DampingFor(category domain.AgeCategory) float64 {
	if d, ok := c.Damping[category]; ok && d > 0 {
		return d
	}
	return 1
}

// ConfirmationFor returns the confirmation minimums of an age category.
// Unknown categories use the established thresholds.
func (c Config) ConfirmationFor(category domain.AgeCategory) ConfirmationThreshold {
	if t, ok := c.Confirmation[category]; ok {
		return t
	}
	return c.Confirmation[domain.AgeEstablished]
}
