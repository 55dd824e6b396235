package storage

import (
	"context"

	"virtuoso-gem-finder/internal/domain"
)

// CandleStore provides access to candles storage.
type CandleStore interface {
	// InsertBulk adds multiple candles. Fails entire batch on duplicate (token, timeframe, timestamp).
	InsertBulk(ctx context.Context, candles []*domain.SeriesCandle) error

	// GetRecent retrieves the last limit candles of a series, ordered by timestamp ASC.
	GetRecent(ctx context.Context, token string, tf domain.Timeframe, limit int) ([]domain.Candle, error)

	// GetByTimeRange retrieves candles of a series within [start, end] (inclusive), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, token string, tf domain.Timeframe, start, end int64) ([]domain.Candle, error)
}

// TraderActivityStore provides access to trader_activity storage.
type TraderActivityStore interface {
	// InsertBulk adds a snapshot. Fails entire batch on duplicate (token, window, captured_at, address).
	InsertBulk(ctx context.Context, rows []*domain.TraderActivity) error

	// GetLatest retrieves the rows of the most recent snapshot for (token, window),
	// ordered by volume DESC. Returns an empty slice when no snapshot exists.
	GetLatest(ctx context.Context, token string, window domain.Window) ([]*domain.TraderActivity, error)
}

// TokenStore provides access to tokens storage.
type TokenStore interface {
	// Insert adds a new token. Returns ErrDuplicateKey if address exists.
	Insert(ctx context.Context, t *domain.Token) error

	// GetByAddress retrieves a token by mint address. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string) (*domain.Token, error)

	// List retrieves all tokens ordered by address.
	List(ctx context.Context) ([]*domain.Token, error)
}

// KnownAccountStore provides access to known_accounts storage.
type KnownAccountStore interface {
	// Insert adds a new account. Returns ErrDuplicateKey if address exists.
	Insert(ctx context.Context, a *domain.KnownAccount) error

	// GetByAddress retrieves an account by address. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string) (*domain.KnownAccount, error)

	// GetAll retrieves all accounts ordered by address.
	GetAll(ctx context.Context) ([]*domain.KnownAccount, error)
}
