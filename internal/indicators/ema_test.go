package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA_SeededBySimpleAverage(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	ema := EMA(values, 3, false)
	require.Len(t, ema, 3)

	// Seed = mean(1,2,3) = 2, k = 0.5
	assert.InDelta(t, 2.0, ema[0], 1e-9)
	assert.InDelta(t, 3.0, ema[1], 1e-9) // 0.5*4 + 0.5*2
	assert.InDelta(t, 4.0, ema[2], 1e-9) // 0.5*5 + 0.5*3
}

func TestEMA_ShortSeries(t *testing.T) {
	values := []float64{10, 20}

	assert.Empty(t, EMA(values, 5, false), "strict seeding yields no series")

	warm := EMA(values, 5, true)
	require.Len(t, warm, 2)
	assert.InDelta(t, 10.0, warm[0], 1e-9)
	// k = 2/6
	assert.InDelta(t, 10+(20-10)/3.0, warm[1], 1e-9)
}

func TestEMA_InvalidInput(t *testing.T) {
	assert.Nil(t, EMA(nil, 20, true))
	assert.Nil(t, EMA([]float64{1, 2, 3}, 0, true))
}

func TestEMA_ExactPeriodEqualsMean(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i + 1)
	}

	ema := EMA(values, 20, false)
	require.Len(t, ema, 1)
	assert.InDelta(t, 10.5, ema[0], 1e-9)
}

func TestLast(t *testing.T) {
	_, ok := Last(nil)
	assert.False(t, ok)

	v, ok := Last([]float64{1, 2, 3})
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestStats(t *testing.T) {
	values := []float64{3, 1, 4, 1, 5}

	assert.InDelta(t, 2.8, Mean(values), 1e-9)
	assert.Equal(t, 5.0, Max(values))
	assert.Equal(t, 1.0, Min(values))
	assert.Equal(t, 0.0, Mean(nil))

	assert.InDelta(t, 10.0, PercentChange(100, 110), 1e-9)
	assert.Equal(t, 0.0, PercentChange(0, 110))

	assert.Equal(t, 100.0, Clamp(250, -100, 100))
	assert.Equal(t, -100.0, Clamp(-250, -100, 100))
	assert.Equal(t, -100.0, Clamp(math.NaN(), -100, 100))
	assert.Equal(t, 42.0, Clamp(42, -100, 100))
}
