package domain

// TraderRecord is a per-trader aggregate over one reporting window.
type TraderRecord struct {
	Address    string  `json:"address"`
	Volume     float64 `json:"volume"` // USD
	TradeCount int     `json:"trade_count"`
	BuyVolume  float64 `json:"buy_volume"`
	SellVolume float64 `json:"sell_volume"`
}

// Tier is a trader size class.
type Tier string

const (
	TierWhale Tier = "whale"
	TierShark Tier = "shark"
	TierFish  Tier = "fish"
)

// Rank orders tiers: fish < shark < whale.
func (t Tier) Rank() int {
	switch t {
	case TierWhale:
		return 2
	case TierShark:
		return 1
	case TierFish:
		return 0
	}
	return -1
}

// DirectionalBias is net buying or selling intent.
type DirectionalBias string

const (
	BiasAccumulating DirectionalBias = "accumulating"
	BiasDistributing DirectionalBias = "distributing"
	BiasNeutral      DirectionalBias = "neutral"
)

// MarketImpact estimates how much a single trader can move price.
type MarketImpact string

const (
	ImpactHigh   MarketImpact = "high"
	ImpactMedium MarketImpact = "medium"
	ImpactLow    MarketImpact = "low"
)

// ClassifiedTrader is a TraderRecord with derived tier and behavior.
type ClassifiedTrader struct {
	TraderRecord
	Tier            Tier            `json:"tier"`
	AvgTradeSize    float64         `json:"avg_trade_size"`
	BuyRatio        float64         `json:"buy_ratio"`
	SellRatio       float64         `json:"sell_ratio"`
	DirectionalBias DirectionalBias `json:"directional_bias"`
	MarketImpact    MarketImpact    `json:"market_impact"`
	Known           bool            `json:"known,omitempty"`
	Label           string          `json:"label,omitempty"`
}

// KnownAccountKind categorizes a labeled on-chain account.
type KnownAccountKind string

const (
	AccountWhale         KnownAccountKind = "whale"
	AccountExchange      KnownAccountKind = "exchange"
	AccountMarketMaker   KnownAccountKind = "market_maker"
	AccountLiquidityPool KnownAccountKind = "liquidity_pool"
)

// KnownAccount is a labeled large account.
// Corresponds to known_accounts table in PostgreSQL.
type KnownAccount struct {
	Address   string
	Label     string
	Kind      KnownAccountKind
	CreatedAt int64 // record creation timestamp (ms)
}

// TraderActivity is one trader row of a captured top-traders snapshot.
// Corresponds to trader_activity table in ClickHouse.
type TraderActivity struct {
	Token      string
	Window     Window
	CapturedAt int64 // snapshot time, Unix seconds
	TraderRecord
}
