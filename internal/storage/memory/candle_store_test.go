package memory

import (
	"context"
	"errors"
	"testing"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/storage"
)

func seriesCandle(token string, tf domain.Timeframe, ts int64, close float64) *domain.SeriesCandle {
	return &domain.SeriesCandle{
		Token:     token,
		Timeframe: tf,
		Candle:    domain.Candle{Timestamp: ts, Open: close, High: close, Low: close, Close: close, Volume: 10},
	}
}

func TestCandleStore_InsertBulkAndGetRecent(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	candles := []*domain.SeriesCandle{
		seriesCandle("tok", domain.Timeframe1h, 7200, 1.2),
		seriesCandle("tok", domain.Timeframe1h, 0, 1.0),
		seriesCandle("tok", domain.Timeframe1h, 3600, 1.1),
		seriesCandle("tok", domain.Timeframe4h, 0, 5.0),
	}
	if err := store.InsertBulk(ctx, candles); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	all, err := store.GetRecent(ctx, "tok", domain.Timeframe1h, 0)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 candles, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp <= all[i-1].Timestamp {
			t.Errorf("Candles not sorted at %d", i)
		}
	}

	recent, _ := store.GetRecent(ctx, "tok", domain.Timeframe1h, 2)
	if len(recent) != 2 || recent[0].Timestamp != 3600 || recent[1].Timestamp != 7200 {
		t.Errorf("Expected last two candles, got %+v", recent)
	}
}

func TestCandleStore_DuplicateKey(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	batch := []*domain.SeriesCandle{seriesCandle("tok", domain.Timeframe1h, 0, 1)}
	if err := store.InsertBulk(ctx, batch); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if err := store.InsertBulk(ctx, batch); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	intra := []*domain.SeriesCandle{
		seriesCandle("tok", domain.Timeframe4h, 0, 1),
		seriesCandle("tok", domain.Timeframe4h, 0, 2),
	}
	if err := store.InsertBulk(ctx, intra); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for intra-batch duplicate, got %v", err)
	}
	// Failed batch leaves nothing behind.
	got, _ := store.GetRecent(ctx, "tok", domain.Timeframe4h, 0)
	if len(got) != 0 {
		t.Errorf("Expected 0 candles after failed batch, got %d", len(got))
	}
}

func TestCandleStore_InvalidInput(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.SeriesCandle{seriesCandle("tok", "2m", 0, 1)})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestCandleStore_GetByTimeRange(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	var batch []*domain.SeriesCandle
	for i := int64(0); i < 10; i++ {
		batch = append(batch, seriesCandle("tok", domain.Timeframe1m, i*60, float64(i+1)))
	}
	if err := store.InsertBulk(ctx, batch); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByTimeRange(ctx, "tok", domain.Timeframe1m, 120, 300)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("Expected 4 candles in [120, 300], got %d", len(got))
	}
}
