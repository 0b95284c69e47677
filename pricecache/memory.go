// Package pricecache implements the price cache of the quote package, in
// memory or in a SQLite database.
//
// A price is fresh for the cache TTL (24h by default). After that it is
// still returned, as stale, so that a failed fetch can fall back to it.
package pricecache

import (
	"time"

	"github.com/etnz/harvest"
	"github.com/etnz/harvest/quote"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// DefaultTTL is how long a price stays fresh.
const DefaultTTL = 24 * time.Hour

// Option configures a cache.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger zerolog.Logger
}

// WithClock replaces time.Now to compute the age of prices.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithLogger sets the logger used to report storage errors.
func WithLogger(logger zerolog.Logger) Option { return func(o *options) { o.logger = logger } }

func newOptions(opts []Option) options {
	o := options{now: time.Now, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// freshness classifies a price fetched at fetchedAt.
func freshness(now, fetchedAt time.Time, ttl time.Duration) quote.Freshness {
	if now.Sub(fetchedAt) < ttl {
		return quote.Fresh
	}
	return quote.Stale
}

type entry struct {
	price     harvest.Money
	fetchedAt time.Time
}

// Memory is an in-memory cache. Prices are dropped after twice the TTL.
type Memory struct {
	ttl   time.Duration
	items *cache.Cache
	opts  options
}

var _ quote.Cache = (*Memory)(nil)

// NewMemory returns an empty in-memory cache; ttl <= 0 means DefaultTTL.
func NewMemory(ttl time.Duration, opts ...Option) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:   ttl,
		items: cache.New(2*ttl, ttl),
		opts:  newOptions(opts),
	}
}

// Get returns the cached price of ticker and how fresh it is.
func (m *Memory) Get(ticker string) (harvest.Money, quote.Freshness) {
	v, ok := m.items.Get(ticker)
	if !ok {
		return harvest.Money{}, quote.Absent
	}
	e := v.(entry)
	now := m.opts.now()
	if now.Sub(e.fetchedAt) >= 2*m.ttl {
		return harvest.Money{}, quote.Absent
	}
	return e.price, freshness(now, e.fetchedAt, m.ttl)
}

// Put stores the price of ticker, fetched now.
func (m *Memory) Put(ticker string, price harvest.Money) error {
	m.items.Set(ticker, entry{price: price, fetchedAt: m.opts.now()}, 2*m.ttl)
	return nil
}
