package quote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/harvest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a client on srv, without rate limit nor real sleeps.
func newTestClient(srv *httptest.Server, waits *[]time.Duration, opts ...ClientOption) *Client {
	opts = append([]ClientOption{WithBaseURL(srv.URL), WithRateLimit(0)}, opts...)
	c := NewClient("test-key", opts...)
	c.sleep = func(ctx context.Context, d time.Duration) error {
		if waits != nil {
			*waits = append(*waits, d)
		}
		return nil
	}
	return c
}

func TestQuote_ParsesResponse(t *testing.T) {
	var capturedPath, capturedSymbol, capturedToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedSymbol = r.URL.Query().Get("symbol")
		capturedToken = r.URL.Query().Get("token")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"c":187.365,"d":1.2,"dp":0.64,"h":188,"l":185.5,"o":186,"pc":186.165,"t":1711670340}`)
	}))
	defer srv.Close()

	price, err := newTestClient(srv, nil).Quote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "/quote", capturedPath)
	assert.Equal(t, "AAPL", capturedSymbol)
	assert.Equal(t, "test-key", capturedToken)
	assert.True(t, price.Equal(harvest.M(187.365, "USD")), "price = %s", price.Decimal())
	assert.Equal(t, "USD", price.Currency())
}

func TestQuote_RetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 3 {
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"c":10.5}`)
	}))
	defer srv.Close()

	var waits []time.Duration
	c := newTestClient(srv, &waits, WithRetries(5, time.Second))
	price, err := c.Quote(context.Background(), "MSFT")
	require.NoError(t, err)

	assert.True(t, price.Equal(harvest.M(10.5, "USD")))
	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, waits)
}

func TestQuote_MaxRetriesExceeded(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, nil, WithRetries(2, time.Millisecond)).Quote(context.Background(), "MSFT")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(3), calls.Load(), "one request and two retries")
}

func TestQuote_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid API key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, nil).Quote(context.Background(), "AAPL")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid API key", apiErr.Message)
	assert.Equal(t, "/quote", apiErr.Endpoint)
}

func TestQuote_NoPrice(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"unknown symbol", `{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0,"t":0}`},
		{"missing field", `{"error":"no data"}`},
		{"negative", `{"c":-1}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv, nil).Quote(context.Background(), "NOPE")
			assert.ErrorIs(t, err, ErrNoPrice)
		})
	}
}

func TestQuote_PricePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quote":{"last":"42.4200"}}`)
	}))
	defer srv.Close()

	price, err := newTestClient(srv, nil, WithPricePath("$.quote.last"), WithCurrency("EUR")).Quote(context.Background(), "SAP")
	require.NoError(t, err)
	assert.Equal(t, "42.42", price.Decimal().String())
	assert.Equal(t, "EUR", price.Currency())
}

func TestQuote_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(0), WithRetries(5, time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Quote(ctx, "AAPL")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
