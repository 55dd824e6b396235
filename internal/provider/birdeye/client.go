// Package birdeye implements provider.Provider on the Birdeye public API.
package birdeye

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"virtuoso-gem-finder/internal/domain"
	"virtuoso-gem-finder/internal/observability"
	"virtuoso-gem-finder/internal/provider"
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://public-api.birdeye.so"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
	DefaultRateLimit   = 15 // requests per second
	DefaultTraderLimit = 50

	// maxTraderPage is the largest page the top_traders endpoint accepts.
	maxTraderPage = 10
)

// Client implements provider.Provider using the Birdeye REST API.
type Client struct {
	baseURL     string
	apiKey      string
	client      *http.Client
	limiter     *rate.Limiter
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	traderLimit int
	now         func() time.Time
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.maxDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithBaseURL overrides the API root.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithRateLimit sets the sustained request rate. Zero or negative disables limiting.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithTraderLimit sets how many top traders FetchTopTraders collects.
func WithTraderLimit(n int) ClientOption {
	return func(c *Client) {
		c.traderLimit = n
	}
}

// WithClock overrides the clock used for OHLCV ranges and token age.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new Birdeye client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		apiKey:      apiKey,
		client:      &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		traderLimit: DefaultTraderLimit,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ provider.Provider = (*Client)(nil)

// envelope is the common Birdeye response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// get performs a GET with retries and exponential backoff, decoding data into result.
// Transport errors, 429 and 5xx are retried; other statuses fail immediately.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, result interface{}) (err error) {
	start := time.Now()
	defer func() {
		observability.RecordProviderRequest(endpoint, time.Since(start).Seconds(), err)
	}()

	reqURL := c.baseURL + endpoint + "?" + params.Encode()
	delay := c.retryDelay
	var lastErr error
	rateLimited := false

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-API-KEY", c.apiKey)
		req.Header.Set("x-chain", "solana")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("http request: %w", err)
			observability.RecordProviderRetry(endpoint, "transport")
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			observability.RecordProviderRetry(endpoint, "read")
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			rateLimited = true
			lastErr = fmt.Errorf("%w (429)", provider.ErrRateLimited)
			observability.RecordProviderRetry(endpoint, "rate_limited")
			continue
		}
		rateLimited = false

		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
			observability.RecordProviderRetry(endpoint, "server_error")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
		if !env.Success {
			return fmt.Errorf("birdeye error: %s", env.Message)
		}
		if result != nil && len(env.Data) > 0 && string(env.Data) != "null" {
			if err := json.Unmarshal(env.Data, result); err != nil {
				return fmt.Errorf("unmarshal data: %w", err)
			}
		}
		return nil
	}

	if rateLimited {
		return lastErr
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// ohlcvType maps a timeframe to the Birdeye "type" parameter.
func ohlcvType(tf domain.Timeframe) (string, error) {
	switch tf {
	case domain.Timeframe1s, domain.Timeframe15s, domain.Timeframe30s,
		domain.Timeframe1m, domain.Timeframe5m, domain.Timeframe15m, domain.Timeframe30m:
		return string(tf), nil
	case domain.Timeframe1h:
		return "1H", nil
	case domain.Timeframe4h:
		return "4H", nil
	case domain.Timeframe1d:
		return "1D", nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownTimeframe, string(tf))
}

type ohlcvData struct {
	Items []ohlcvItem `json:"items"`
}

type ohlcvItem struct {
	Open     float64 `json:"o"`
	High     float64 `json:"h"`
	Low      float64 `json:"l"`
	Close    float64 `json:"c"`
	Volume   float64 `json:"v"`
	UnixTime int64   `json:"unixTime"`
}

// FetchCandles retrieves the last limit bars of (token, tf).
// Returns nil, nil when the API has no bars in range.
func (c *Client) FetchCandles(ctx context.Context, token string, tf domain.Timeframe, limit int) ([]domain.Candle, error) {
	typ, err := ohlcvType(tf)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	to := c.now().Unix()
	from := to - int64(limit)*int64(tf.Duration()/time.Second)

	params := url.Values{}
	params.Set("address", token)
	params.Set("type", typ)
	params.Set("time_from", strconv.FormatInt(from, 10))
	params.Set("time_to", strconv.FormatInt(to, 10))

	var data ohlcvData
	if err := c.get(ctx, "/defi/ohlcv", params, &data); err != nil {
		return nil, fmt.Errorf("fetch ohlcv %s %s: %w", token, tf, err)
	}
	if len(data.Items) == 0 {
		return nil, nil
	}

	candles := make([]domain.Candle, len(data.Items))
	for i, it := range data.Items {
		candles[i] = domain.Candle{
			Timestamp: it.UnixTime,
			Open:      it.Open,
			High:      it.High,
			Low:       it.Low,
			Close:     it.Close,
			Volume:    it.Volume,
		}
	}
	candles = domain.SortedCandles(candles)
	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

type tradersData struct {
	Items []traderItem `json:"items"`
}

// traderItem uses pointers so missing fields can be told apart from zero.
type traderItem struct {
	Owner      *string  `json:"owner"`
	Volume     *float64 `json:"volume"`
	Trade      *int     `json:"trade"`
	TradeBuy   *int     `json:"tradeBuy"`
	TradeSell  *int     `json:"tradeSell"`
	VolumeBuy  *float64 `json:"volumeBuy"`
	VolumeSell *float64 `json:"volumeSell"`
}

// record converts an item, reporting false for items without owner or volume.
func (it traderItem) record() (domain.TraderRecord, bool) {
	if it.Owner == nil || *it.Owner == "" || it.Volume == nil {
		return domain.TraderRecord{}, false
	}
	r := domain.TraderRecord{
		Address: *it.Owner,
		Volume:  *it.Volume,
	}
	switch {
	case it.Trade != nil:
		r.TradeCount = *it.Trade
	case it.TradeBuy != nil || it.TradeSell != nil:
		if it.TradeBuy != nil {
			r.TradeCount += *it.TradeBuy
		}
		if it.TradeSell != nil {
			r.TradeCount += *it.TradeSell
		}
	}
	if it.VolumeBuy != nil {
		r.BuyVolume = *it.VolumeBuy
	}
	if it.VolumeSell != nil {
		r.SellVolume = *it.VolumeSell
	}
	return r, true
}

// FetchTopTraders pages through top_traders sorted by volume until traderLimit
// records are collected or the API runs out.
func (c *Client) FetchTopTraders(ctx context.Context, token string, window domain.Window) ([]domain.TraderRecord, error) {
	if window.Duration() == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownWindow, string(window))
	}

	var records []domain.TraderRecord
	for offset := 0; offset < c.traderLimit; offset += maxTraderPage {
		page := maxTraderPage
		if rest := c.traderLimit - offset; rest < page {
			page = rest
		}

		params := url.Values{}
		params.Set("address", token)
		params.Set("time_frame", string(window))
		params.Set("sort_type", "desc")
		params.Set("sort_by", "volume")
		params.Set("offset", strconv.Itoa(offset))
		params.Set("limit", strconv.Itoa(page))

		var data tradersData
		if err := c.get(ctx, "/defi/v2/tokens/top_traders", params, &data); err != nil {
			return nil, fmt.Errorf("fetch top traders %s %s: %w", token, window, err)
		}

		for _, it := range data.Items {
			if r, ok := it.record(); ok {
				records = append(records, r)
			}
		}
		if len(data.Items) < page {
			break
		}
	}
	return records, nil
}

type creationData struct {
	BlockUnixTime int64 `json:"blockUnixTime"`
}

// EstimateTokenAge derives the age from the token creation block time.
// Returns nil, nil when the API does not know the creation time.
func (c *Client) EstimateTokenAge(ctx context.Context, token string) (*float64, error) {
	params := url.Values{}
	params.Set("address", token)

	var data *creationData
	if err := c.get(ctx, "/defi/token_creation_info", params, &data); err != nil {
		return nil, fmt.Errorf("fetch token creation %s: %w", token, err)
	}
	if data == nil || data.BlockUnixTime <= 0 {
		return nil, nil
	}

	days := c.now().Sub(time.Unix(data.BlockUnixTime, 0)).Seconds() / 86400
	if days < 0 {
		days = 0
	}
	return &days, nil
}
