package clickhouse

import (
	"context"
	"fmt"
	"time"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/observability"
	"virtuoso-gem-finder/internal/storage"
)

// CandleStore implements storage.CandleStore using ClickHouse.
type CandleStore struct {
	conn *Conn
}

// NewCandleStore creates a new CandleStore.
func NewCandleStore(conn *Conn) *CandleStore {
	return &CandleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// InsertBulk adds multiple candles. Fails entire batch on duplicate (token, timeframe, bar_time).
// MergeTree does not enforce uniqueness, so duplicates are checked before the insert.
func (s *CandleStore) InsertBulk(ctx context.Context, candles []*domain.SeriesCandle) (err error) {
	if len(candles) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { observability.RecordDBQuery("clickhouse", "insert_candles", time.Since(start).Seconds(), err) }()

	type key struct {
		token string
		tf    domain.Timeframe
		ts    int64
	}
	seen := make(map[key]struct{}, len(candles))
	for _, c := range candles {
		if c == nil || c.Token == "" || !c.Timeframe.Valid() {
			return storage.ErrInvalidInput
		}
		k := key{c.Token, c.Timeframe, c.Timestamp}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for k := range seen {
		exists, err := s.exists(ctx, k.token, k.tf, k.ts)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO candles (
			token, timeframe, bar_time, open, high, low, close, volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, c := range candles {
		err = batch.Append(
			c.Token, string(c.Timeframe), c.Timestamp,
			c.Open, c.High, c.Low, c.Close, c.Volume,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetRecent retrieves the last limit candles of a series, ordered by timestamp ASC.
func (s *CandleStore) GetRecent(ctx context.Context, token string, tf domain.Timeframe, limit int) ([]domain.Candle, error) {
	if limit <= 0 {
		return s.GetByTimeRange(ctx, token, tf, 0, 1<<62)
	}

	query := `
		SELECT bar_time, open, high, low, close, volume
		FROM (
			SELECT bar_time, open, high, low, close, volume
			FROM candles
			WHERE token = ? AND timeframe = ?
			ORDER BY bar_time DESC
			LIMIT ?
		)
		ORDER BY bar_time ASC
	`

	rows, err := s.conn.Query(ctx, query, token, string(tf), uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("query recent candles: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// GetByTimeRange retrieves candles of a series within [start, end] (inclusive).
func (s *CandleStore) GetByTimeRange(ctx context.Context, token string, tf domain.Timeframe, start, end int64) ([]domain.Candle, error) {
	query := `
		SELECT bar_time, open, high, low, close, volume
		FROM candles
		WHERE token = ? AND timeframe = ? AND bar_time >= ? AND bar_time <= ?
		ORDER BY bar_time ASC
	`

	rows, err := s.conn.Query(ctx, query, token, string(tf), start, end)
	if err != nil {
		return nil, fmt.Errorf("query candles by time range: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

func (s *CandleStore) exists(ctx context.Context, token string, tf domain.Timeframe, ts int64) (bool, error) {
	query := `
		SELECT count(*) FROM candles
		WHERE token = ? AND timeframe = ? AND bar_time = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, token, string(tf), ts).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanCandles(rows chRows) ([]domain.Candle, error) {
	var candles []domain.Candle

	for rows.Next() {
		var c domain.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle row: %w", err)
		}
		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candle rows: %w", err)
	}
	return candles, nil
}
