package trend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtuoso-gem-finder/internal/domain"
)

// risingCandles builds n hourly candles whose close grows by step per candle.
func risingCandles(n int, step float64) []domain.Candle {
	candles := make([]domain.Candle, n)
	price := 100.0
	for i := 0; i < n; i++ {
		candles[i] = domain.Candle{
			Timestamp: int64(1_700_000_000 + i*3600),
			Open:      price,
			High:      price * 1.005,
			Low:       price * 0.995,
			Close:     price,
			Volume:    1000 + 50*float64(i),
		}
		price *= 1 + step
	}
	return candles
}

func TestEvaluate_SteadyUptrend(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	r := e.Evaluate(domain.Timeframe1h, risingCandles(20, 0.01))

	assert.GreaterOrEqual(t, r.Score, 75.0)
	assert.True(t, r.HigherStructure)
	assert.True(t, r.PriceAboveEMA20)
	assert.True(t, r.PriceAboveEMA50)
	assert.True(t, r.EMAAlignment)
	assert.Equal(t, domain.VolumeIncreasing, r.VolumeTrend)
	assert.Greater(t, r.Momentum, 0.0)
}

func TestEvaluate_InsufficientCandles(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	r := e.Evaluate(domain.Timeframe1h, risingCandles(10, 0.01))

	assert.Equal(t, 0.0, r.Score)
	assert.Equal(t, domain.VolumeInsufficientData, r.VolumeTrend)
	assert.False(t, r.PriceAboveEMA20)
	assert.False(t, r.HigherStructure)
	assert.Equal(t, domain.Timeframe1h, r.Timeframe)
}

func TestEvaluate_MinimumDependsOnTimeframe(t *testing.T) {
	e := NewEvaluator(DefaultConfig())
	candles := risingCandles(16, 0.01)

	assert.Greater(t, e.Evaluate(domain.Timeframe5m, candles).Score, 0.0)
	assert.Equal(t, 0.0, e.Evaluate(domain.Timeframe15m, candles).Score)
	assert.Equal(t, 0.0, e.Evaluate(domain.Timeframe4h, candles).Score)
}

func TestEvaluate_Downtrend(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	r := e.Evaluate(domain.Timeframe1h, risingCandles(60, -0.01))

	assert.False(t, r.PriceAboveEMA20)
	assert.False(t, r.PriceAboveEMA50)
	assert.False(t, r.EMAAlignment)
	assert.False(t, r.HigherStructure)
	assert.Less(t, r.Momentum, 0.0)
	// Only the volume contribution remains.
	assert.LessOrEqual(t, r.Score, 10.0)
}

func TestEvaluate_ScoreAndMomentumBounds(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	for _, step := range []float64{-0.5, -0.05, 0, 0.05, 0.5, 2} {
		r := e.Evaluate(domain.Timeframe1h, risingCandles(40, step))
		assert.GreaterOrEqual(t, r.Score, 0.0, "step=%v", step)
		assert.LessOrEqual(t, r.Score, 100.0, "step=%v", step)
		assert.GreaterOrEqual(t, r.Momentum, -100.0, "step=%v", step)
		assert.LessOrEqual(t, r.Momentum, 100.0, "step=%v", step)
	}
}

func TestEvaluate_UnsortedInputAndBadCloses(t *testing.T) {
	e := NewEvaluator(DefaultConfig())
	candles := risingCandles(20, 0.01)
	want := e.Evaluate(domain.Timeframe1h, candles)

	shuffled := make([]domain.Candle, 0, len(candles)+2)
	for i := len(candles) - 1; i >= 0; i-- {
		shuffled = append(shuffled, candles[i])
	}
	shuffled = append(shuffled,
		domain.Candle{Timestamp: 1, Close: 0},
		domain.Candle{Timestamp: 2, Close: math.NaN()},
	)

	got := e.Evaluate(domain.Timeframe1h, shuffled)
	assert.InDelta(t, want.Score, got.Score, 1e-9)
	assert.Equal(t, want.HigherStructure, got.HigherStructure)
	// Input untouched.
	assert.Equal(t, candles[19].Timestamp, shuffled[0].Timestamp)
}

func TestEvaluate_StrictSeeding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrictEMASeeding = true
	e := NewEvaluator(cfg)

	r := e.Evaluate(domain.Timeframe1h, risingCandles(20, 0.01))

	// EMA50 cannot be seeded from 20 candles.
	assert.True(t, r.PriceAboveEMA20)
	assert.False(t, r.PriceAboveEMA50)
	assert.False(t, r.EMAAlignment)
	assert.Equal(t, 0.0, r.EMA50)
	require.True(t, r.HigherStructure)
	assert.Less(t, r.Score, 75.0)
}

func TestEvaluate_VolumeTrend(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	flat := risingCandles(30, 0.01)
	for i := range flat {
		flat[i].Volume = 500
	}
	assert.Equal(t, domain.VolumeStable, e.Evaluate(domain.Timeframe1h, flat).VolumeTrend)

	falling := risingCandles(30, 0.01)
	for i := range falling {
		falling[i].Volume = 5000 - 150*float64(i)
	}
	assert.Equal(t, domain.VolumeDecreasing, e.Evaluate(domain.Timeframe1h, falling).VolumeTrend)
}
