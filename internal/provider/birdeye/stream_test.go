package birdeye

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/storage/memory"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:  func(r *http.Request) bool { return true },
	Subprotocols: []string{"echo-protocol"},
}

func priceFrame(address, chartType string, ts int64, closePrice float64) string {
	return fmt.Sprintf(`{"type":"PRICE_DATA","data":{"o":1,"h":2,"l":0.5,"c":%g,"v":10,"eventType":"ohlcv","type":%q,"unixTime":%d,"address":%q}}`,
		closePrice, chartType, ts, address)
}

func fastStreamConfig(url string) *StreamConfig {
	return &StreamConfig{
		URL:               url,
		ReconnectDelay:    10 * time.Millisecond,
		MaxReconnectDelay: 50 * time.Millisecond,
		PingInterval:      time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      time.Second,
	}
}

func TestStream_RecordsClosedBars(t *testing.T) {
	subscribed := make(chan subscribeMessage, 4)
	var gotKey atomic.Value

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey.Store(r.URL.Query().Get("x-api-key"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		for i := 0; i < 2; i++ {
			var msg subscribeMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			subscribed <- msg
		}

		frames := []string{
			`{"type":"WELCOME"}`,
			priceFrame("mint", "1m", 60, 1.1),
			priceFrame("mint", "1m", 60, 1.4), // running bar update
			priceFrame("other", "1m", 60, 9),  // not subscribed
			priceFrame("mint", "1H", 3600, 3),
			priceFrame("mint", "1m", 0, 5), // stale
			priceFrame("mint", "1m", 120, 1.6),
			`not json`,
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// Keep connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	store := memory.NewCandleStore()
	stream := NewStream("secret", fastStreamConfig("ws"+strings.TrimPrefix(server.URL, "http")), store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- stream.Run(ctx, []Subscription{
			{Token: "mint", Timeframe: domain.Timeframe1m},
			{Token: "mint", Timeframe: domain.Timeframe1h},
		})
	}()

	require.Eventually(t, func() bool { return stream.Written() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.Equal(t, "secret", gotKey.Load())
	var charts []string
	for len(subscribed) > 0 {
		msg := <-subscribed
		assert.Equal(t, "SUBSCRIBE_PRICE", msg.Type)
		assert.Equal(t, "mint", msg.Data.Address)
		assert.Equal(t, "usd", msg.Data.Currency)
		charts = append(charts, msg.Data.ChartType)
	}
	assert.ElementsMatch(t, []string{"1m", "1H"}, charts)

	candles, err := store.GetRecent(context.Background(), "mint", domain.Timeframe1m, 10)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, int64(60), candles[0].Timestamp)
	assert.Equal(t, 1.4, candles[0].Close)

	hourly, err := store.GetRecent(context.Background(), "mint", domain.Timeframe1h, 10)
	require.NoError(t, err)
	assert.Empty(t, hourly, "running bar must not be written")
}

func TestStream_Reconnects(t *testing.T) {
	var connections atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := connections.Add(1)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var msg subscribeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if n == 1 {
			// Drop the first connection after one bar
			_ = conn.WriteMessage(websocket.TextMessage, []byte(priceFrame("mint", "5m", 300, 1)))
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(priceFrame("mint", "5m", 600, 2)))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	store := memory.NewCandleStore()
	stream := NewStream("k", fastStreamConfig("ws"+strings.TrimPrefix(server.URL, "http")), store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stream.Run(ctx, []Subscription{{Token: "mint", Timeframe: domain.Timeframe5m}}) }()

	require.Eventually(t, func() bool { return stream.Written() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, connections.Load(), int32(2))

	candles, err := store.GetRecent(context.Background(), "mint", domain.Timeframe5m, 10)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, int64(300), candles[0].Timestamp)
}

func TestStream_RunRejectsBadSubscriptions(t *testing.T) {
	stream := NewStream("k", nil, memory.NewCandleStore(), nil)

	assert.Error(t, stream.Run(context.Background(), nil))
	assert.ErrorIs(t, stream.Run(context.Background(), []Subscription{{Token: "mint", Timeframe: "7m"}}), domain.ErrUnknownTimeframe)
}

func TestStream_ObserveIgnoresDuplicateWrites(t *testing.T) {
	store := memory.NewCandleStore()
	ctx := context.Background()
	sub := Subscription{Token: "mint", Timeframe: domain.Timeframe15m}

	// A bar already recorded by an earlier run
	require.NoError(t, store.InsertBulk(ctx, []*domain.SeriesCandle{{Token: "mint", Timeframe: domain.Timeframe15m, Candle: domain.Candle{Timestamp: 900, Close: 1}}}))

	stream := NewStream("k", nil, store, nil)
	stream.observe(ctx, sub, domain.Candle{Timestamp: 900, Close: 2})
	stream.observe(ctx, sub, domain.Candle{Timestamp: 1800, Close: 3})

	assert.Equal(t, int64(0), stream.Written())
	candles, err := store.GetRecent(ctx, "mint", domain.Timeframe15m, 10)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, 1.0, candles[0].Close)
}

func TestSubscribeMessage_JSON(t *testing.T) {
	msg := subscribeMessage{Type: "SUBSCRIBE_PRICE"}
	msg.Data.QueryType = "simple"
	msg.Data.ChartType = "15m"
	msg.Data.Address = "mint"
	msg.Data.Currency = "usd"

	b, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"SUBSCRIBE_PRICE","data":{"queryType":"simple","chartType":"15m","address":"mint","currency":"usd"}}`, string(b))
}
