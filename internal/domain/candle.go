package domain

import "sort"

// Candle is one OHLCV bar for a (token, timeframe) series.
type Candle struct {
	Timestamp int64   `json:"timestamp"` // bar open time, Unix seconds
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// SortedCandles returns a copy of candles ordered by timestamp ASC.
// The input slice is never modified.
func SortedCandles(candles []Candle) []Candle {
	if len(candles) == 0 {
		return nil
	}
	out := make([]Candle, len(candles))
	copy(out, candles)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

// SeriesCandle is a Candle bound to its (token, timeframe) series.
// Corresponds to candles table in ClickHouse.
type SeriesCandle struct {
	Token     string
	Timeframe Timeframe
	Candle
}
