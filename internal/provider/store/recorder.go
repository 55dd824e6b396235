package store

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/provider"
	"virtuoso-gem-finder/internal/storage"
)

// Recorder passes calls through to a live provider and persists candles and
// trader snapshots so they can be replayed later with Provider.
// Persistence is best effort: write failures are logged, never returned.
type Recorder struct {
	inner   provider.Provider
	candles storage.CandleStore
	traders storage.TraderActivityStore
	now     func() time.Time
	logger  *log.Logger
}

// NewRecorder creates a Recorder. Nil stores skip the matching writes.
func NewRecorder(inner provider.Provider, candles storage.CandleStore, traders storage.TraderActivityStore, now func() time.Time, logger *log.Logger) *Recorder {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Recorder{inner: inner, candles: candles, traders: traders, now: now, logger: logger}
}

var _ provider.Provider = (*Recorder)(nil)

// FetchCandles fetches from the live provider and stores bars not yet present.
func (r *Recorder) FetchCandles(ctx context.Context, token string, tf domain.Timeframe, limit int) ([]domain.Candle, error) {
	candles, err := r.inner.FetchCandles(ctx, token, tf, limit)
	if err != nil || len(candles) == 0 || r.candles == nil {
		return candles, err
	}
	if err := r.saveCandles(ctx, token, tf, candles); err != nil {
		r.logger.Printf("record candles %s %s: %v", token, tf, err)
	}
	return candles, nil
}

func (r *Recorder) saveCandles(ctx context.Context, token string, tf domain.Timeframe, candles []domain.Candle) error {
	sorted := domain.SortedCandles(candles)
	existing, err := r.candles.GetByTimeRange(ctx, token, tf, sorted[0].Timestamp, sorted[len(sorted)-1].Timestamp)
	if err != nil {
		return err
	}
	have := make(map[int64]struct{}, len(existing))
	for _, c := range existing {
		have[c.Timestamp] = struct{}{}
	}

	var fresh []*domain.SeriesCandle
	for _, c := range sorted {
		if _, ok := have[c.Timestamp]; ok {
			continue
		}
		have[c.Timestamp] = struct{}{}
		fresh = append(fresh, &domain.SeriesCandle{Token: token, Timeframe: tf, Candle: c})
	}
	if len(fresh) == 0 {
		return nil
	}
	return r.candles.InsertBulk(ctx, fresh)
}

// FetchTopTraders fetches from the live provider and stores the snapshot.
func (r *Recorder) FetchTopTraders(ctx context.Context, token string, window domain.Window) ([]domain.TraderRecord, error) {
	records, err := r.inner.FetchTopTraders(ctx, token, window)
	if err != nil || len(records) == 0 || r.traders == nil {
		return records, err
	}

	captured := r.now().Unix()
	seen := make(map[string]struct{}, len(records))
	rows := make([]*domain.TraderActivity, 0, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.Address]; dup {
			continue
		}
		seen[rec.Address] = struct{}{}
		rows = append(rows, &domain.TraderActivity{Token: token, Window: window, CapturedAt: captured, TraderRecord: rec})
	}

	err = r.traders.InsertBulk(ctx, rows)
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		r.logger.Printf("record traders %s %s: %v", token, window, err)
	}
	return records, nil
}

// EstimateTokenAge is passed through.
func (r *Recorder) EstimateTokenAge(ctx context.Context, token string) (*float64, error) {
	return r.inner.EstimateTokenAge(ctx, token)
}
