package whale

import (
	"math"

	"virtuoso-gem-finder/internal/domain"
)

// SkipReason explains why a trader record was left out.
type SkipReason string

const (
	SkipInvalidAddress SkipReason = "invalid_address"
	SkipInvalidVolume  SkipReason = "invalid_volume"
	SkipNoTrades       SkipReason = "no_trades"
	SkipExcludedKind   SkipReason = "excluded_account"
	SkipOffCurve       SkipReason = "off_curve"
)

// Classification is the classifier output for one window.
type Classification struct {
	Whales  []domain.ClassifiedTrader
	Sharks  []domain.ClassifiedTrader
	Fish    int
	Skipped map[SkipReason]int
}

// SkippedTotal returns the number of skipped records.
func (c Classification) SkippedTotal() int {
	var n int
	for _, v := range c.Skipped {
		n += v
	}
	return n
}

// Classifier assigns tiers to trader records.
type Classifier struct {
	cfg   Config
	known *KnownAccounts
}

// NewClassifier creates a new Classifier. known may be nil.
func NewClassifier(cfg Config, known *KnownAccounts) *Classifier {
	return &Classifier{cfg: cfg, known: known}
}

// Classify classifies records. Malformed records are counted and skipped.
// Fish are counted but not returned.
func (c *Classifier) Classify(records []domain.TraderRecord) Classification {
	out := Classification{Skipped: make(map[SkipReason]int)}
	for _, r := range records {
		trader, reason, ok := c.classifyOne(r)
		if !ok {
			out.Skipped[reason]++
			continue
		}
		switch trader.Tier {
		case domain.TierWhale:
			out.Whales = append(out.Whales, trader)
		case domain.TierShark:
			out.Sharks = append(out.Sharks, trader)
		case domain.TierFish:
			out.Fish++
		}
	}
	return out
}

// ClassifyTrader classifies a single well-formed record.
func (c *Classifier) ClassifyTrader(r domain.TraderRecord) domain.ClassifiedTrader {
	avg := r.Volume / float64(r.TradeCount)

	// Denominator covers providers whose buy+sell exceeds the reported volume.
	denom := math.Max(r.Volume, r.BuyVolume+r.SellVolume)
	var buyRatio, sellRatio float64
	if denom > 0 {
		buyRatio = math.Max(0, r.BuyVolume) / denom
		sellRatio = math.Max(0, r.SellVolume) / denom
	}

	t := domain.ClassifiedTrader{
		TraderRecord:    r,
		Tier:            c.tier(r.Volume, avg, r.TradeCount),
		AvgTradeSize:    avg,
		BuyRatio:        buyRatio,
		SellRatio:       sellRatio,
		DirectionalBias: c.cfg.Bias(buyRatio),
		MarketImpact:    c.impact(r.Volume, avg),
	}
	if acc, ok := c.known.Lookup(r.Address); ok {
		t.Known = true
		t.Label = acc.Label
	}
	return t
}

func (c *Classifier) classifyOne(r domain.TraderRecord) (domain.ClassifiedTrader, SkipReason, bool) {
	if err := domain.ValidateAddress(r.Address); err != nil {
		return domain.ClassifiedTrader{}, SkipInvalidAddress, false
	}
	if !validAmount(r.Volume) || !validAmount(r.BuyVolume) || !validAmount(r.SellVolume) {
		return domain.ClassifiedTrader{}, SkipInvalidVolume, false
	}
	if r.TradeCount < 1 {
		return domain.ClassifiedTrader{}, SkipNoTrades, false
	}

	acc, known := c.known.Lookup(r.Address)
	if known && c.cfg.excludes(acc.Kind) {
		return domain.ClassifiedTrader{}, SkipExcludedKind, false
	}
	// Labeled accounts are trusted even when program-owned.
	if !known && c.cfg.ExcludeOffCurve && !domain.IsOnCurve(r.Address) {
		return domain.ClassifiedTrader{}, SkipOffCurve, false
	}

	return c.ClassifyTrader(r), "", true
}

func (c *Classifier) tier(volume, avg float64, trades int) domain.Tier {
	switch {
	case c.cfg.Whale.admits(volume, avg, trades):
		return domain.TierWhale
	case c.cfg.Shark.admits(volume, avg, trades):
		return domain.TierShark
	default:
		return domain.TierFish
	}
}

func (c *Classifier) impact(volume, avg float64) domain.MarketImpact {
	switch {
	case c.cfg.HighImpact.admits(volume, avg):
		return domain.ImpactHigh
	case c.cfg.MediumImpact.admits(volume, avg):
		return domain.ImpactMedium
	default:
		return domain.ImpactLow
	}
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
