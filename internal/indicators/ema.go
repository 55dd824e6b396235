// Package indicators provides the numeric building blocks of trend evaluation.
package indicators

// EMA computes the exponential moving average of values.
//
// With at least period values the series is seeded by the simple average of the
// first period values and has len(values)-period+1 points. With fewer values the
// result depends on warmup: when true the series is seeded by the first value and
// has len(values) points; when false it is empty.
func EMA(values []float64, period int, warmup bool) []float64 {
	if period <= 0 || len(values) == 0 {
		return nil
	}

	k := 2.0 / (float64(period) + 1.0)

	if len(values) < period {
		if !warmup {
			return nil
		}
		out := make([]float64, len(values))
		out[0] = values[0]
		for i := 1; i < len(values); i++ {
			out[i] = k*values[i] + (1-k)*out[i-1]
		}
		return out
	}

	out := make([]float64, 0, len(values)-period+1)
	out = append(out, Mean(values[:period]))
	for i := period; i < len(values); i++ {
		prev := out[len(out)-1]
		out = append(out, k*values[i]+(1-k)*prev)
	}
	return out
}

// Last returns the final element of series and whether it exists.
func Last(series []float64) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}
