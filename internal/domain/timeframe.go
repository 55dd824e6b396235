package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownTimeframe is returned when a timeframe string is not part of the superset.
var ErrUnknownTimeframe = errors.New("unknown timeframe")

// Timeframe is a candle granularity.
type Timeframe string

// Timeframe superset, ordered from shortest to longest.
const (
	Timeframe1s  Timeframe = "1s"
	Timeframe15s Timeframe = "15s"
	Timeframe30s Timeframe = "30s"
	Timeframe1m  Timeframe = "1m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe30m Timeframe = "30m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe1d  Timeframe = "1d"
)

// AllTimeframes lists every supported timeframe in ascending granularity.
var AllTimeframes = []Timeframe{
	Timeframe1s, Timeframe15s, Timeframe30s,
	Timeframe1m, Timeframe5m, Timeframe15m, Timeframe30m,
	Timeframe1h, Timeframe4h, Timeframe1d,
}

var timeframeDurations = map[Timeframe]time.Duration{
	Timeframe1s:  time.Second,
	Timeframe15s: 15 * time.Second,
	Timeframe30s: 30 * time.Second,
	Timeframe1m:  time.Minute,
	Timeframe5m:  5 * time.Minute,
	Timeframe15m: 15 * time.Minute,
	Timeframe30m: 30 * time.Minute,
	Timeframe1h:  time.Hour,
	Timeframe4h:  4 * time.Hour,
	Timeframe1d:  24 * time.Hour,
}

// ParseTimeframe converts a string into a Timeframe.
// Accepts upper-case hour/day suffixes ("1H", "4H", "1D") as returned by some APIs.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := timeframeDurations[tf]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTimeframe, s)
	}
	return tf, nil
}

// Duration returns the bar length. Zero for unknown timeframes.
func (t Timeframe) Duration() time.Duration {
	return timeframeDurations[t]
}

// Valid reports whether t belongs to the superset.
func (t Timeframe) Valid() bool {
	_, ok := timeframeDurations[t]
	return ok
}

func (t Timeframe) String() string {
	return string(t)
}
