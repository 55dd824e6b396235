package clickhouse

import (
	"context"
	"fmt"
	"time"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/observability"
	"virtuoso-gem-finder/internal/storage"
)

// TraderActivityStore implements storage.TraderActivityStore using ClickHouse.
type TraderActivityStore struct {
	conn *Conn
}

// NewTraderActivityStore creates a new TraderActivityStore.
func NewTraderActivityStore(conn *Conn) *TraderActivityStore {
	return &TraderActivityStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TraderActivityStore = (*TraderActivityStore)(nil)

// InsertBulk adds a snapshot. Fails entire batch on duplicate (token, window, captured_at, address).
func (s *TraderActivityStore) InsertBulk(ctx context.Context, rows []*domain.TraderActivity) (err error) {
	if len(rows) == 0 {
		return nil
	}
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("clickhouse", "insert_trader_activity", time.Since(start).Seconds(), err)
	}()

	type snapshot struct {
		token      string
		window     domain.Window
		capturedAt int64
	}
	seen := make(map[string]struct{}, len(rows))
	snapshots := make(map[snapshot]struct{})
	for _, r := range rows {
		if r == nil || r.Token == "" || r.Address == "" {
			return storage.ErrInvalidInput
		}
		key := fmt.Sprintf("%s|%s|%d|%s", r.Token, r.Window, r.CapturedAt, r.Address)
		if _, exists := seen[key]; exists {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
		snapshots[snapshot{r.Token, r.Window, r.CapturedAt}] = struct{}{}
	}

	// A snapshot is written once; any existing row for it means a duplicate.
	for snap := range snapshots {
		var count uint64
		err := s.conn.QueryRow(ctx, `
			SELECT count(*) FROM trader_activity
			WHERE token = ? AND time_window = ? AND captured_at = ?
		`, snap.token, string(snap.window), snap.capturedAt).Scan(&count)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if count > 0 {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trader_activity (
			token, time_window, captured_at, address,
			volume, trade_count, buy_volume, sell_volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.Token, string(r.Window), r.CapturedAt, r.Address,
			r.Volume, uint32(r.TradeCount), r.BuyVolume, r.SellVolume,
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

// GetLatest retrieves the rows of the most recent snapshot for (token, window).
func (s *TraderActivityStore) GetLatest(ctx context.Context, token string, window domain.Window) ([]*domain.TraderActivity, error) {
	query := `
		SELECT token, time_window, captured_at, address, volume, trade_count, buy_volume, sell_volume
		FROM trader_activity
		WHERE token = ? AND time_window = ? AND captured_at = (
			SELECT max(captured_at) FROM trader_activity
			WHERE token = ? AND time_window = ?
		)
		ORDER BY volume DESC, address ASC
	`

	rows, err := s.conn.Query(ctx, query, token, string(window), token, string(window))
	if err != nil {
		return nil, fmt.Errorf("query latest trader activity: %w", err)
	}
	defer rows.Close()

	return scanTraderActivity(rows)
}

func scanTraderActivity(rows chRows) ([]*domain.TraderActivity, error) {
	result := []*domain.TraderActivity{}

	for rows.Next() {
		var a domain.TraderActivity
		var window string
		var trades uint32

		err := rows.Scan(
			&a.Token, &window, &a.CapturedAt, &a.Address,
			&a.Volume, &trades, &a.BuyVolume, &a.SellVolume,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trader activity row: %w", err)
		}

		a.Window = domain.Window(window)
		a.TradeCount = int(trades)
		result = append(result, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trader activity rows: %w", err)
	}
	return result, nil
}
