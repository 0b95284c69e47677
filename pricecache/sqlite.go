package pricecache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/harvest"
	"github.com/etnz/harvest/quote"
	_ "modernc.org/sqlite"
)

const createPricesTable = `
CREATE TABLE IF NOT EXISTS prices (
	ticker TEXT PRIMARY KEY,
	price TEXT NOT NULL,
	currency TEXT NOT NULL,
	fetched_at INTEGER NOT NULL
);`

// SQLite is a persistent cache. Prices are kept until overwritten: past
// the TTL they are returned as stale.
type SQLite struct {
	db   *sql.DB
	ttl  time.Duration
	opts options
}

var _ quote.Cache = (*SQLite)(nil)

// OpenSQLite opens, or creates, the cache database at path; ttl <= 0 means
// DefaultTTL. Use ":memory:" for a throw-away database.
func OpenSQLite(path string, ttl time.Duration, opts ...Option) (*SQLite, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price cache at %s: %w", path, err)
	}
	// a single connection, so that ":memory:" is one database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(createPricesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create prices table in %s: %w", path, err)
	}
	return &SQLite{db: db, ttl: ttl, opts: newOptions(opts)}, nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// Get returns the cached price of ticker and how fresh it is. Storage
// errors are logged and reported as Absent.
func (s *SQLite) Get(ticker string) (harvest.Money, quote.Freshness) {
	var amount, currency string
	var fetchedAt int64
	err := s.db.QueryRow(`SELECT price, currency, fetched_at FROM prices WHERE ticker = ?`, ticker).Scan(&amount, &currency, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return harvest.Money{}, quote.Absent
	}
	if err != nil {
		s.opts.logger.Error().Err(err).Str("ticker", ticker).Msg("failed to read cached price")
		return harvest.Money{}, quote.Absent
	}
	price, err := harvest.ParseMoney(amount, currency)
	if err != nil {
		s.opts.logger.Error().Err(err).Str("ticker", ticker).Str("price", amount).Msg("invalid cached price")
		return harvest.Money{}, quote.Absent
	}
	return price, freshness(s.opts.now(), time.Unix(fetchedAt, 0), s.ttl)
}

// Put stores the price of ticker, fetched now. The amount is stored as
// text to keep every digit.
func (s *SQLite) Put(ticker string, price harvest.Money) error {
	_, err := s.db.Exec(`INSERT INTO prices (ticker, price, currency, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET price = excluded.price, currency = excluded.currency, fetched_at = excluded.fetched_at`,
		ticker, price.Decimal().String(), price.Currency(), s.opts.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to cache price of %s: %w", ticker, err)
	}
	return nil
}

// Tickers returns the sorted tickers in the cache.
func (s *SQLite) Tickers() ([]string, error) {
	rows, err := s.db.Query(`SELECT ticker FROM prices ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}
