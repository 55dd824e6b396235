package trend

import (
	"math"
	"time"

	"virtuoso-gem-finder/internal/domain"
)

// DefaultAgeDays is assumed when a token's creation time is unknown.
const DefaultAgeDays = 30.0

// Category upper bounds in days (exclusive).
const (
	ultraNewMaxDays    = 1.0 / 24 // 1h
	newMaxDays         = 6.0 / 24 // 6h
	veryRecentMaxDays  = 1.0
	recentMaxDays      = 3.0
	developingMaxDays  = 7.0
	establishedMaxDays = 30.0
)

// AgeInfo is the classified age of a token.
type AgeInfo struct {
	Days      float64
	Category  domain.AgeCategory
	Defaulted bool // creation time unknown, default applied
}

// Profile is the fixed timeframe selection and weighting of an age category.
type Profile struct {
	Category   domain.AgeCategory
	Timeframes []domain.Timeframe
	Weights    map[domain.Timeframe]float64 // over the full superset, zero when unused
}

// Weight returns the weight of tf in the profile.
func (p Profile) Weight(tf domain.Timeframe) float64 {
	return p.Weights[tf]
}

var profiles = map[domain.AgeCategory]Profile{
	domain.AgeUltraNew: newProfile(domain.AgeUltraNew,
		tw{domain.Timeframe1s, 0.25}, tw{domain.Timeframe15s, 0.35}, tw{domain.Timeframe30s, 0.40}),
	domain.AgeNew: newProfile(domain.AgeNew,
		tw{domain.Timeframe15s, 0.25}, tw{domain.Timeframe1m, 0.35}, tw{domain.Timeframe5m, 0.40}),
	domain.AgeVeryRecent: newProfile(domain.AgeVeryRecent,
		tw{domain.Timeframe1m, 0.25}, tw{domain.Timeframe5m, 0.35}, tw{domain.Timeframe15m, 0.40}),
	domain.AgeRecent: newProfile(domain.AgeRecent,
		tw{domain.Timeframe5m, 0.25}, tw{domain.Timeframe15m, 0.35}, tw{domain.Timeframe1h, 0.40}),
	domain.AgeDeveloping: newProfile(domain.AgeDeveloping,
		tw{domain.Timeframe15m, 0.20}, tw{domain.Timeframe1h, 0.40}, tw{domain.Timeframe4h, 0.40}),
	domain.AgeEstablished: newProfile(domain.AgeEstablished,
		tw{domain.Timeframe30m, 0.20}, tw{domain.Timeframe1h, 0.35}, tw{domain.Timeframe4h, 0.45}),
	domain.AgeMature: newProfile(domain.AgeMature,
		tw{domain.Timeframe1h, 0.25}, tw{domain.Timeframe4h, 0.35}, tw{domain.Timeframe1d, 0.40}),
}

type tw struct {
	tf     domain.Timeframe
	weight float64
}

func newProfile(category domain.AgeCategory, selected ...tw) Profile {
	p := Profile{
		Category: category,
		Weights:  make(map[domain.Timeframe]float64, len(domain.AllTimeframes)),
	}
	for _, tf := range domain.AllTimeframes {
		p.Weights[tf] = 0
	}
	for _, s := range selected {
		p.Timeframes = append(p.Timeframes, s.tf)
		p.Weights[s.tf] = s.weight
	}
	return p
}

// ProfileFor returns the profile of category. Unknown categories get the established profile.
func ProfileFor(category domain.AgeCategory) Profile {
	if p, ok := profiles[category]; ok {
		return p
	}
	return profiles[domain.AgeEstablished]
}

// CategoryForAge maps an age in days to its category.
// Negative ages (clock skew) count as zero; NaN maps to established.
func CategoryForAge(days float64) domain.AgeCategory {
	if math.IsNaN(days) {
		return domain.AgeEstablished
	}
	switch {
	case days < ultraNewMaxDays:
		return domain.AgeUltraNew
	case days < newMaxDays:
		return domain.AgeNew
	case days < veryRecentMaxDays:
		return domain.AgeVeryRecent
	case days < recentMaxDays:
		return domain.AgeRecent
	case days < developingMaxDays:
		return domain.AgeDeveloping
	case days < establishedMaxDays:
		return domain.AgeEstablished
	default:
		return domain.AgeMature
	}
}

// ClassifyAge derives the age category from an optional creation time.
// A nil creation time yields DefaultAgeDays and the established category.
func ClassifyAge(created *time.Time, now time.Time) AgeInfo {
	if created == nil {
		return defaultAge()
	}
	days := now.Sub(*created).Seconds() / 86400
	return ClassifyAgeDays(&days)
}

// ClassifyAgeDays classifies an optional age already expressed in days.
func ClassifyAgeDays(days *float64) AgeInfo {
	if days == nil || math.IsNaN(*days) {
		return defaultAge()
	}
	d := *days
	if d < 0 {
		d = 0
	}
	return AgeInfo{Days: d, Category: CategoryForAge(d)}
}

func defaultAge() AgeInfo {
	return AgeInfo{Days: DefaultAgeDays, Category: domain.AgeEstablished, Defaulted: true}
}
