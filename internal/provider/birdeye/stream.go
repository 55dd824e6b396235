package birdeye

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/observability"
	"virtuoso-gem-finder/internal/storage"
)

// DefaultStreamURL is the Birdeye Solana WebSocket endpoint.
const DefaultStreamURL = "wss://public-api.birdeye.so/socket/solana"

// StreamConfig configures Stream behavior.
type StreamConfig struct {
	URL string
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultStreamConfig returns default stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		URL:               DefaultStreamURL,
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// CandleSink receives completed candles.
type CandleSink interface {
	InsertBulk(ctx context.Context, candles []*domain.SeriesCandle) error
}

// Subscription is one (token, timeframe) OHLCV feed.
type Subscription struct {
	Token     string
	Timeframe domain.Timeframe
}

// Stream records live OHLCV bars from the Birdeye WebSocket into a CandleSink.
// The feed pushes the running bar repeatedly; a bar is written once a newer
// bar of the same series arrives.
type Stream struct {
	apiKey string
	config StreamConfig
	sink   CandleSink
	logger *log.Logger

	mu      sync.Mutex
	open    map[Subscription]domain.Candle
	written atomic.Int64
}

// NewStream creates a Stream. A nil config uses DefaultStreamConfig.
func NewStream(apiKey string, config *StreamConfig, sink CandleSink, logger *log.Logger) *Stream {
	cfg := DefaultStreamConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.URL == "" {
		cfg.URL = DefaultStreamURL
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Stream{
		apiKey: apiKey,
		config: cfg,
		sink:   sink,
		logger: logger,
		open:   make(map[Subscription]domain.Candle),
	}
}

// Written returns the number of completed bars stored so far.
func (s *Stream) Written() int64 {
	return s.written.Load()
}

type chartKey struct {
	address   string
	chartType string
}

// Run subscribes to every feed and records bars until ctx is done.
// Dropped connections are re-established with exponential backoff.
// Only an invalid subscription list is reported as an error.
func (s *Stream) Run(ctx context.Context, subs []Subscription) error {
	if len(subs) == 0 {
		return errors.New("no subscriptions")
	}
	index := make(map[chartKey]Subscription, len(subs))
	for _, sub := range subs {
		typ, err := ohlcvType(sub.Timeframe)
		if err != nil {
			return err
		}
		index[chartKey{sub.Token, typ}] = sub
	}

	delay := s.config.ReconnectDelay
	for {
		received, err := s.session(ctx, index)
		if ctx.Err() != nil {
			return nil
		}
		if received {
			delay = s.config.ReconnectDelay
		}
		s.logger.Printf("stream disconnected: %v (reconnect in %s)", err, delay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		// Increase delay for next reconnect (exponential backoff)
		delay *= 2
		if delay > s.config.MaxReconnectDelay {
			delay = s.config.MaxReconnectDelay
		}
	}
}

// session runs one connection. received reports whether any message arrived.
func (s *Stream) session(ctx context.Context, index map[chartKey]Subscription) (received bool, err error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		Subprotocols:     []string{"echo-protocol"},
	}
	endpoint := s.config.URL + "?x-api-key=" + url.QueryEscape(s.apiKey)

	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.Close()

	for key := range index {
		msg := subscribeMessage{Type: "SUBSCRIBE_PRICE"}
		msg.Data.QueryType = "simple"
		msg.Data.ChartType = key.chartType
		msg.Data.Address = key.address
		msg.Data.Currency = "usd"

		_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			return false, fmt.Errorf("write subscribe: %w", err)
		}
	}

	done := make(chan struct{})
	defer close(done)
	go s.keepAlive(ctx, conn, done)

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		_ = conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			return received, err
		}
		received = true
		s.handleMessage(ctx, message, index)
	}
}

// keepAlive pings until done, and closes conn when ctx ends to unblock reads.
func (s *Stream) keepAlive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(s.config.WriteTimeout))
			_ = conn.Close()
			return
		case <-ticker.C:
			// Connection might be dead, reader will handle reconnect
			_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.config.WriteTimeout))
		}
	}
}

func (s *Stream) handleMessage(ctx context.Context, message []byte, index map[chartKey]Subscription) {
	var env streamEnvelope
	if err := json.Unmarshal(message, &env); err != nil || env.Type != "PRICE_DATA" {
		return
	}
	var p priceData
	if err := json.Unmarshal(env.Data, &p); err != nil {
		s.logger.Printf("stream: malformed PRICE_DATA: %v", err)
		return
	}
	sub, ok := index[chartKey{p.Address, p.ChartType}]
	if !ok {
		return
	}
	s.observe(ctx, sub, domain.Candle{
		Timestamp: p.UnixTime,
		Open:      p.Open,
		High:      p.High,
		Low:       p.Low,
		Close:     p.Close,
		Volume:    p.Volume,
	})
}

// observe tracks the running bar of sub and writes the previous bar once it closes.
func (s *Stream) observe(ctx context.Context, sub Subscription, c domain.Candle) {
	s.mu.Lock()
	prev, ok := s.open[sub]
	if ok && c.Timestamp < prev.Timestamp {
		s.mu.Unlock()
		return
	}
	s.open[sub] = c
	s.mu.Unlock()

	if !ok || c.Timestamp == prev.Timestamp {
		return
	}

	row := &domain.SeriesCandle{Token: sub.Token, Timeframe: sub.Timeframe, Candle: prev}
	err := s.sink.InsertBulk(ctx, []*domain.SeriesCandle{row})
	switch {
	case err == nil:
		s.written.Add(1)
		observability.RecordStreamCandle(string(sub.Timeframe))
	case errors.Is(err, storage.ErrDuplicateKey):
	default:
		s.logger.Printf("stream: store %s %s @%d: %v", sub.Token, sub.Timeframe, prev.Timestamp, err)
	}
}

type subscribeMessage struct {
	Type string `json:"type"`
	Data struct {
		QueryType string `json:"queryType"`
		ChartType string `json:"chartType"`
		Address   string `json:"address"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

type streamEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type priceData struct {
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
	UnixTime  int64   `json:"unixTime"`
	ChartType string  `json:"type"`
	Address   string  `json:"address"`
}
