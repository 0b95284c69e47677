// Package quote fetches the latest price of securities from a quote API
// (Finnhub by default) and keeps them in a cache.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/harvest"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL        = "https://finnhub.io/api/v1"
	DefaultTimeout        = 30 * time.Second
	DefaultRateLimit      = 1.0 // requests per second, Finnhub free tier allows 60 per minute
	DefaultMaxRetries     = 10
	DefaultInitialBackoff = time.Second
	DefaultPricePath      = "$.c" // last price in Finnhub's quote object
)

var (
	// ErrRateLimited is returned when the API kept answering 429 after every retry.
	ErrRateLimited = errors.New("rate limit exceeded, max retries reached")
	// ErrNoPrice is returned when the response has no usable price.
	ErrNoPrice = errors.New("no price in response")
)

// APIError represents a non successful answer of the API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quote API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Client gets the latest price of a ticker.
type Client struct {
	baseURL        string
	apiKey         string
	currency       string
	pricePath      string
	maxRetries     int
	initialBackoff time.Duration
	httpClient     *http.Client
	limiter        *rate.Limiter
	logger         zerolog.Logger
	sleep          func(ctx context.Context, d time.Duration) error
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithRateLimit sets the rate limit, in requests per second. Zero or less
// disables it.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), max(1, int(requestsPerSecond)))
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithRetries sets how many times a rate limited request is retried, and
// the wait before the first retry. The wait doubles after each retry.
func WithRetries(maxRetries int, initialBackoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.initialBackoff = initialBackoff
	}
}

// WithPricePath sets the JSONPath of the price in the response.
func WithPricePath(path string) ClientOption {
	return func(c *Client) { c.pricePath = path }
}

// WithCurrency sets the currency of returned prices.
func WithCurrency(currency string) ClientOption {
	return func(c *Client) { c.currency = currency }
}

// NewClient creates a new quote client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		apiKey:         apiKey,
		currency:       "USD",
		pricePath:      DefaultPricePath,
		maxRetries:     DefaultMaxRetries,
		initialBackoff: DefaultInitialBackoff,
		httpClient:     &http.Client{Timeout: DefaultTimeout},
		limiter:        rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		logger:         zerolog.Nop(),
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Quote returns the latest price of ticker.
func (c *Client) Quote(ctx context.Context, ticker string) (harvest.Money, error) {
	params := url.Values{}
	params.Set("symbol", ticker)

	var body any
	if err := c.get(ctx, "/quote", params, &body); err != nil {
		return harvest.Money{}, fmt.Errorf("quote %s: %w", ticker, err)
	}
	price, err := extractPrice(c.pricePath, body)
	if err != nil {
		return harvest.Money{}, fmt.Errorf("quote %s: %w", ticker, err)
	}
	return harvest.M(price, c.currency), nil
}

// get performs a rate-limited GET request, retrying while the API answers 429.
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	params.Set("token", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	backoff := c.initialBackoff
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		c.logger.Debug().Str("url", c.baseURL+path).Str("symbol", params.Get("symbol")).Int("attempt", attempt).Msg("quote API request")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			if attempt >= c.maxRetries {
				return ErrRateLimited
			}
			c.logger.Warn().Str("symbol", params.Get("symbol")).Dur("backoff", backoff).Msg("rate limited, retrying")
			if err := c.sleep(ctx, backoff); err != nil {
				return err
			}
			backoff *= 2
			continue
		}

		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body)), Endpoint: path}
		}
		dec := json.NewDecoder(resp.Body)
		dec.UseNumber()
		if err := dec.Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}
}

// extractPrice reads a strictly positive price at path in a decoded JSON document.
func extractPrice(path string, doc any) (decimal.Decimal, error) {
	jval, err := jsonpath.Get(path, doc)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w at %q: %v", ErrNoPrice, path, err)
	}
	// jsonpath may return a list of one answer.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return decimal.Zero, fmt.Errorf("%w at %q", ErrNoPrice, path)
		}
		jval = jlist[0]
	}

	var price decimal.Decimal
	switch v := jval.(type) {
	case json.Number:
		price, err = decimal.NewFromString(v.String())
	case float64:
		price = decimal.NewFromFloat(v)
	case string:
		price, err = decimal.NewFromString(v)
	default:
		err = fmt.Errorf("unexpected %T", jval)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w at %q: %v", ErrNoPrice, path, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w at %q: got %s", ErrNoPrice, path, price)
	}
	return price, nil
}
