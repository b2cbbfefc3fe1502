package kalshi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	requestTimeout = 15 * time.Second

	getMaxRetries   = 3
	writeMaxRetries = 2

	getBackoffCap   = 10 * time.Second
	writeBackoffCap = 5 * time.Second

	// DefaultReadDelay is the minimum spacing between GET starts.
	DefaultReadDelay = 150 * time.Millisecond
)

// APIError is a non-2xx response from the exchange.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// ClientConfig holds configuration for the exchange client.
type ClientConfig struct {
	BaseURL   string
	Signer    *Signer
	ReadDelay time.Duration
	Logger    *zap.Logger
}

// Client talks to the Kalshi trade API. It signs every request, throttles
// the start of GETs to one per ReadDelay, and retries 429s with bounded
// backoff. A single Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *Signer
	logger     *zap.Logger

	readDelay time.Duration
	readMu    sync.Mutex
	lastRead  time.Time
}

// NewClient creates a new exchange client.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if cfg.Signer == nil {
		return nil, fmt.Errorf("signer cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	readDelay := cfg.ReadDelay
	if readDelay <= 0 {
		readDelay = DefaultReadDelay
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		signer:    cfg.Signer,
		logger:    cfg.Logger,
		readDelay: readDelay,
		lastRead:  time.Now(),
	}, nil
}

// ListSeries pages through the full series catalog.
func (c *Client) ListSeries(ctx context.Context) ([]Series, error) {
	var all []Series
	cursor := ""

	for {
		path := "/series"
		if cursor != "" {
			path = "/series?cursor=" + url.QueryEscape(cursor)
		}

		var resp seriesResponse
		if err := c.get(ctx, path, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Series...)

		if resp.Cursor == "" {
			break
		}
		cursor = resp.Cursor
	}

	c.logger.Debug("fetched-series", zap.Int("count", len(all)))
	return all, nil
}

// GetEvents pages through the open events of one series, with each event
// carrying its nested markets.
func (c *Client) GetEvents(ctx context.Context, seriesTicker string) ([]Event, error) {
	var all []Event
	cursor := ""

	for {
		path := fmt.Sprintf("/events?series_ticker=%s&with_nested_markets=true&status=open",
			url.QueryEscape(seriesTicker))
		if cursor != "" {
			path += "&cursor=" + url.QueryEscape(cursor)
		}

		var resp eventsResponse
		if err := c.get(ctx, path, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Events...)

		if resp.Cursor == "" {
			break
		}
		cursor = resp.Cursor
	}

	c.logger.Debug("fetched-events",
		zap.String("series", seriesTicker),
		zap.Int("count", len(all)))
	return all, nil
}

// GetOrderbook fetches the level-5 book for one market.
func (c *Client) GetOrderbook(ctx context.Context, ticker string) (*Orderbook, error) {
	path := fmt.Sprintf("/markets/%s/orderbook?depth=5", url.PathEscape(ticker))

	var resp orderbookResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp.Orderbook, nil
}

// CreateOrder places a limit order.
func (c *Client) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	var resp createOrderResponse
	if err := c.post(ctx, "/portfolio/orders", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

// CancelOrder cancels an order by id. Cancellation is best-effort: rate
// limiting past the retry budget and non-2xx responses are logged and
// reported as success. Only transport failures propagate.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	path := "/portfolio/orders/" + url.PathEscape(orderID)

	for attempt := 0; attempt <= writeMaxRetries; attempt++ {
		status, body, err := c.send(ctx, http.MethodDelete, path, nil)
		if err != nil {
			return fmt.Errorf("DELETE %s: %w", path, err)
		}

		if status == http.StatusTooManyRequests {
			rateLimitsTotal.WithLabelValues(http.MethodDelete).Inc()
			if attempt == writeMaxRetries {
				c.logger.Warn("cancel-order-rate-limited",
					zap.String("order-id", orderID),
					zap.Int("retries", writeMaxRetries))
				return nil
			}
			c.backoff(http.MethodDelete, path, attempt, retryWait(body.retryAfter, attempt, writeBackoffCap))
			continue
		}

		if status < 200 || status >= 300 {
			c.logger.Warn("cancel-order-failed",
				zap.String("order-id", orderID),
				zap.Int("status", status),
				zap.String("body", string(body.payload)))
		}
		return nil
	}

	return nil
}

// get issues a throttled, signed GET and decodes the 2xx body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	c.throttleRead()

	for attempt := 0; attempt <= getMaxRetries; attempt++ {
		status, body, err := c.send(ctx, http.MethodGet, path, nil)
		if err != nil {
			return fmt.Errorf("GET %s: %w", path, err)
		}

		if status == http.StatusTooManyRequests {
			rateLimitsTotal.WithLabelValues(http.MethodGet).Inc()
			if attempt == getMaxRetries {
				return fmt.Errorf("rate limited after %d retries: %w", getMaxRetries,
					&APIError{Method: http.MethodGet, Path: path, Status: status, Body: string(body.payload)})
			}
			c.backoff(http.MethodGet, path, attempt, retryWait(body.retryAfter, attempt, getBackoffCap))
			continue
		}

		if status < 200 || status >= 300 {
			return &APIError{Method: http.MethodGet, Path: path, Status: status, Body: string(body.payload)}
		}

		if err := json.Unmarshal(body.payload, out); err != nil {
			return fmt.Errorf("parse GET %s response: %w", path, err)
		}
		return nil
	}

	return nil
}

// post issues a signed POST and decodes the 2xx body into out.
func (c *Client) post(ctx context.Context, path string, reqBody any, out any) error {
	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	for attempt := 0; attempt <= writeMaxRetries; attempt++ {
		status, body, err := c.send(ctx, http.MethodPost, path, encoded)
		if err != nil {
			return fmt.Errorf("POST %s: %w", path, err)
		}

		if status == http.StatusTooManyRequests {
			rateLimitsTotal.WithLabelValues(http.MethodPost).Inc()
			if attempt == writeMaxRetries {
				return fmt.Errorf("rate limited after %d retries: %w", writeMaxRetries,
					&APIError{Method: http.MethodPost, Path: path, Status: status, Body: string(body.payload)})
			}
			c.backoff(http.MethodPost, path, attempt, retryWait(body.retryAfter, attempt, writeBackoffCap))
			continue
		}

		if status < 200 || status >= 300 {
			return &APIError{Method: http.MethodPost, Path: path, Status: status, Body: string(body.payload)}
		}

		if err := json.Unmarshal(body.payload, out); err != nil {
			return fmt.Errorf("parse POST %s response: %w", path, err)
		}
		return nil
	}

	return nil
}

// responseData carries what a finished attempt needs after the body is drained.
type responseData struct {
	payload    []byte
	retryAfter string
}

// send performs one signed HTTP attempt and fully drains the response.
func (c *Client) send(ctx context.Context, method, path string, body []byte) (int, responseData, error) {
	headers, err := c.signer.Headers(method, path)
	if err != nil {
		return 0, responseData{}, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, responseData{}, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(method, "transport_error").Inc()
		return 0, responseData{}, err
	}
	defer resp.Body.Close()

	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	c.logRateLimitHeaders(resp, method, path)

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, responseData{}, fmt.Errorf("read response body: %w", err)
	}

	outcome := "success"
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = strconv.Itoa(resp.StatusCode)
	}
	requestsTotal.WithLabelValues(method, outcome).Inc()

	return resp.StatusCode, responseData{
		payload:    payload,
		retryAfter: resp.Header.Get("Retry-After"),
	}, nil
}

// throttleRead enforces the minimum spacing between GET starts. The sleep
// happens while the mutex is held so concurrent GETs line up behind it.
func (c *Client) throttleRead() {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	elapsed := time.Since(c.lastRead)
	if elapsed < c.readDelay {
		wait := c.readDelay - elapsed
		c.logger.Debug("throttling-read", zap.Duration("wait", wait))
		time.Sleep(wait)
	}
	c.lastRead = time.Now()
}

func (c *Client) backoff(method, path string, attempt int, wait time.Duration) {
	c.logger.Warn("rate-limited",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("attempt", attempt+1),
		zap.Duration("wait", wait))
	time.Sleep(wait)
}

// retryWait picks the 429 wait: the Retry-After header (seconds, possibly
// fractional) when parseable, else 2^attempt seconds capped at maxWait.
func retryWait(retryAfter string, attempt int, maxWait time.Duration) time.Duration {
	if retryAfter != "" {
		if secs, err := strconv.ParseFloat(retryAfter, 64); err == nil && secs >= 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}

	wait := time.Duration(1<<attempt) * time.Second
	if wait > maxWait {
		wait = maxWait
	}
	return wait
}

// rateLimitHeaders are logged at debug level when present on a response.
//
//nolint:gochecknoglobals // static header list
var rateLimitHeaders = []string{
	"x-ratelimit-remaining",
	"x-ratelimit-limit",
	"x-ratelimit-reset",
	"retry-after",
	"ratelimit-remaining",
	"ratelimit-limit",
	"ratelimit-reset",
}

func (c *Client) logRateLimitHeaders(resp *http.Response, method, path string) {
	for _, name := range rateLimitHeaders {
		value := resp.Header.Get(name)
		if value == "" {
			continue
		}
		c.logger.Debug("rate-limit-header",
			zap.String("header", name),
			zap.String("value", value),
			zap.String("method", method),
			zap.String("path", path))
	}
}
