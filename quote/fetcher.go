package quote

import (
	"context"
	"slices"
	"sync"

	"github.com/etnz/harvest"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// Freshness tells whether a cached price can be used as is.
type Freshness int

const (
	Absent Freshness = iota // never cached, or evicted
	Stale                   // cached, but older than the cache TTL
	Fresh
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "absent"
	}
}

// Cache stores the latest known price of tickers.
type Cache interface {
	Get(ticker string) (harvest.Money, Freshness)
	Put(ticker string, price harvest.Money) error
}

// Quoter gets the latest price of a ticker. *Client is a Quoter.
type Quoter interface {
	Quote(ctx context.Context, ticker string) (harvest.Money, error)
}

// DefaultConcurrency is the maximum number of requests in flight.
const DefaultConcurrency = 10

// Fetcher resolves prices from a cache, and from a Quoter for the tickers
// the cache cannot serve.
type Fetcher struct {
	quoter      Quoter
	cache       Cache
	concurrency int
	currency    string
	logger      zerolog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithCache sets the cache. Without one, every ticker is fetched.
func WithCache(cache Cache) FetcherOption { return func(f *Fetcher) { f.cache = cache } }

// WithConcurrency sets the maximum number of requests in flight.
func WithConcurrency(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithPriceCurrency makes the Fetcher ignore cached prices in any other
// currency, as happens when the configured currency changed since they
// were cached. They are fetched again.
func WithPriceCurrency(currency string) FetcherOption {
	return func(f *Fetcher) { f.currency = currency }
}

// WithFetcherLogger sets the logger used to report failures.
func WithFetcherLogger(logger zerolog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = logger }
}

// NewFetcher creates a Fetcher.
func NewFetcher(quoter Quoter, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{quoter: quoter, concurrency: DefaultConcurrency, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Result is the outcome of a Fetch.
type Result struct {
	Prices  harvest.Prices
	Cached  []string         // served fresh from the cache
	Fetched []string         // fetched from the API
	Stale   []string         // fetch failed, served from an expired cache entry
	Failed  map[string]error // no price at all
}

// Fetch returns the price of every ticker it can resolve.
//
// A failure on one ticker never prevents the others from being returned: it
// is logged and reported in Result.Failed, or served stale when the cache
// still has an expired price. progress, if not nil, is called with the
// percentage of tickers done, from 0 to 100.
func (f *Fetcher) Fetch(ctx context.Context, tickers []string, progress func(percent int)) *Result {
	result := &Result{Prices: make(harvest.Prices), Failed: make(map[string]error)}
	report := func(percent int) {
		if progress != nil {
			progress(percent)
		}
	}

	unique := slices.Clone(tickers)
	slices.Sort(unique)
	unique = slices.Compact(unique)

	var missing []string
	for _, ticker := range unique {
		if price, fresh := f.get(ticker); fresh == Fresh {
			result.Prices[ticker] = price
			result.Cached = append(result.Cached, ticker)
			continue
		}
		missing = append(missing, ticker)
	}
	if len(missing) == 0 {
		report(100)
		return result
	}
	report(0)

	var mu sync.Mutex
	completed := 0
	p := pool.New().WithMaxGoroutines(f.concurrency)
	for _, ticker := range missing {
		p.Go(func() {
			price, err := f.quoter.Quote(ctx, ticker)
			if err == nil && f.cache != nil {
				if perr := f.cache.Put(ticker, price); perr != nil {
					f.logger.Warn().Err(perr).Str("ticker", ticker).Msg("failed to cache price")
				}
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Prices[ticker] = price
				result.Fetched = append(result.Fetched, ticker)
			default:
				if stale, fresh := f.get(ticker); fresh == Stale {
					f.logger.Warn().Err(err).Str("ticker", ticker).Msg("using stale cached price")
					result.Prices[ticker] = stale
					result.Stale = append(result.Stale, ticker)
				} else {
					f.logger.Error().Err(err).Str("ticker", ticker).Msg("failed to fetch price")
					result.Failed[ticker] = err
				}
			}
			completed++
			report(completed * 100 / len(missing))
		})
	}
	p.Wait()

	slices.Sort(result.Fetched)
	slices.Sort(result.Stale)
	return result
}

func (f *Fetcher) get(ticker string) (harvest.Money, Freshness) {
	if f.cache == nil {
		return harvest.Money{}, Absent
	}
	price, fresh := f.cache.Get(ticker)
	if fresh != Absent && f.currency != "" && price.Currency() != f.currency {
		f.logger.Debug().Str("ticker", ticker).Str("currency", price.Currency()).Msg("cached price ignored, currency changed")
		return harvest.Money{}, Absent
	}
	return price, fresh
}
