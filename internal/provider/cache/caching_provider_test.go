package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtuoso-gem-finder/internal/domain"
)

type mockProvider struct {
	candles    []domain.Candle
	traders    []domain.TraderRecord
	age        *float64
	err        error
	candleHits int
	traderHits int
	ageHits    int
}

func (m *mockProvider) FetchCandles(context.Context, string, domain.Timeframe, int) ([]domain.Candle, error) {
	m.candleHits++
	return m.candles, m.err
}

func (m *mockProvider) FetchTopTraders(context.Context, string, domain.Window) ([]domain.TraderRecord, error) {
	m.traderHits++
	return m.traders, m.err
}

func (m *mockProvider) EstimateTokenAge(context.Context, string) (*float64, error) {
	m.ageHits++
	return m.age, m.err
}

func TestNewCachingProvider_Defaults(t *testing.T) {
	p := NewCachingProvider(nil, 0, &mockProvider{}, "")
	assert.Equal(t, 5*time.Minute, p.ttl)
	assert.Equal(t, "market", p.namespace)

	p = NewCachingProvider(nil, time.Minute, &mockProvider{}, "custom")
	assert.Equal(t, time.Minute, p.ttl)
	assert.Equal(t, "custom", p.namespace)
}

func TestCachingProvider_NilRedisBypasses(t *testing.T) {
	inner := &mockProvider{candles: []domain.Candle{{Timestamp: 1, Close: 1}}}
	p := NewCachingProvider(nil, 0, inner, "")

	got, err := p.FetchCandles(context.Background(), "mint", domain.Timeframe1h, 100)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, inner.candleHits)
}

func TestCachingProvider_FetchCandles_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	inner := &mockProvider{}
	p := NewCachingProvider(db, time.Minute, inner, "ns")

	want := []domain.Candle{{Timestamp: 60, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}}
	b, _ := json.Marshal(want)
	mock.ExpectGet("ns:candles:mint:1h:100").SetVal(string(b))

	got, err := p.FetchCandles(context.Background(), "mint", domain.Timeframe1h, 100)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 0, inner.candleHits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingProvider_FetchCandles_MissStores(t *testing.T) {
	db, mock := redismock.NewClientMock()
	want := []domain.Candle{{Timestamp: 60, Close: 2}}
	inner := &mockProvider{candles: want}
	p := NewCachingProvider(db, time.Minute, inner, "ns")

	b, _ := json.Marshal(want)
	mock.ExpectGet("ns:candles:mint:5m:50").RedisNil()
	mock.ExpectSet("ns:candles:mint:5m:50", b, time.Minute).SetVal("OK")

	got, err := p.FetchCandles(context.Background(), "mint", domain.Timeframe5m, 50)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, inner.candleHits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingProvider_CorruptEntryDeleted(t *testing.T) {
	db, mock := redismock.NewClientMock()
	want := []domain.TraderRecord{{Address: "w", Volume: 10, TradeCount: 1}}
	inner := &mockProvider{traders: want}
	p := NewCachingProvider(db, time.Minute, inner, "ns")

	b, _ := json.Marshal(want)
	mock.ExpectGet("ns:traders:mint:24h").SetVal("{not json")
	mock.ExpectDel("ns:traders:mint:24h").SetVal(1)
	mock.ExpectSet("ns:traders:mint:24h", b, time.Minute).SetVal("OK")

	got, err := p.FetchTopTraders(context.Background(), "mint", domain.Window24h)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingProvider_EmptyAndErrorsNotCached(t *testing.T) {
	db, mock := redismock.NewClientMock()
	inner := &mockProvider{}
	p := NewCachingProvider(db, time.Minute, inner, "ns")

	mock.ExpectGet("ns:traders:mint:6h").RedisNil()
	got, err := p.FetchTopTraders(context.Background(), "mint", domain.Window6h)
	require.NoError(t, err)
	assert.Empty(t, got)

	inner.err = errors.New("upstream down")
	mock.ExpectGet("ns:candles:mint:1m:10").RedisNil()
	_, err = p.FetchCandles(context.Background(), "mint", domain.Timeframe1m, 10)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingProvider_AgePassesThrough(t *testing.T) {
	db, mock := redismock.NewClientMock()
	days := 3.0
	inner := &mockProvider{age: &days}
	p := NewCachingProvider(db, time.Minute, inner, "ns")

	got, err := p.EstimateTokenAge(context.Background(), "mint")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3.0, *got)
	assert.Equal(t, 1, inner.ageHits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingProvider_Invalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	p := NewCachingProvider(db, time.Minute, &mockProvider{}, "ns")

	mock.ExpectScan(0, "ns:candles:mint:*", 200).SetVal([]string{"ns:candles:mint:1h:100"}, 0)
	mock.ExpectDel("ns:candles:mint:1h:100").SetVal(1)
	mock.ExpectScan(0, "ns:traders:mint:*", 200).SetVal([]string{}, 0)

	require.NoError(t, p.Invalidate(context.Background(), "mint"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSafe(t *testing.T) {
	assert.Equal(t, "a_b_c", safe("a b:c"))
}
