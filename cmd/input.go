package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/etnz/harvest"
	"github.com/etnz/harvest/date"
	"github.com/etnz/harvest/importer"
	"github.com/etnz/harvest/pricecache"
	"github.com/etnz/harvest/quote"
	"github.com/shopspring/decimal"
)

// priceFlags collects repeated -price TICKER=PRICE flags.
type priceFlags map[string]decimal.Decimal

func (p priceFlags) String() string {
	var pairs []string
	for t, v := range p {
		pairs = append(pairs, t+"="+v.String())
	}
	slices.Sort(pairs)
	return strings.Join(pairs, ",")
}

func (p priceFlags) Set(value string) error {
	ticker, price, ok := strings.Cut(value, "=")
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !ok || ticker == "" {
		return fmt.Errorf("invalid price %q, want TICKER=PRICE", value)
	}
	v, err := importer.ParseNumber(price)
	if err != nil {
		return err
	}
	if !v.IsPositive() {
		return fmt.Errorf("invalid price %q: must be positive", value)
	}
	p[ticker] = v
	return nil
}

// prices returns the flag prices in currency.
func (p priceFlags) prices(currency string) harvest.Prices {
	prices := make(harvest.Prices, len(p))
	for t, v := range p {
		prices[t] = harvest.M(v, currency)
	}
	return prices
}

// tickerList is a comma separated list of tickers.
type tickerList []string

func (l *tickerList) String() string { return strings.Join(*l, ",") }

func (l *tickerList) Set(value string) error {
	for _, t := range strings.Split(value, ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			*l = append(*l, t)
		}
	}
	return nil
}

// parseDate parses a -d flag, empty means today.
func parseDate(s string) (date.Date, error) {
	if s == "" {
		return date.Today(), nil
	}
	return date.Parse(s)
}

// source holds the flags of the commands reading an export.
type source struct {
	file   string
	mode   string
	fetch  bool
	prices priceFlags
}

func (s *source) setFlags(f *flag.FlagSet) {
	f.StringVar(&s.file, "f", "", "Brokerage CSV export to read")
	f.StringVar(&s.mode, "mode", "", "Invalid records handling: lenient or strict. Defaults to the import.mode configuration")
}

// setPriceFlags adds the flags to choose prices.
func (s *source) setPriceFlags(f *flag.FlagSet) {
	s.prices = make(priceFlags)
	f.BoolVar(&s.fetch, "fetch", false, "Fetch the last prices from the quote API")
	f.Var(s.prices, "price", "Price of a ticker, as TICKER=PRICE. Can be repeated, wins over fetched prices")
}

// read imports the export file.
func (s *source) read(a *app) (*importer.Result, error) {
	if s.file == "" {
		return nil, errors.New("no export file, use -f <file.csv>")
	}
	mode := a.cfg.ImportMode()
	if s.mode != "" {
		m, err := importer.ParseMode(s.mode)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	f, err := os.Open(s.file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, err := importer.Read(f,
		importer.WithMode(mode),
		importer.WithCurrency(a.cfg.Currency),
		importer.WithLogger(a.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.file, err)
	}
	return res, nil
}

// portfolio imports the export file and prices its positions.
func (s *source) portfolio(ctx context.Context, a *app) (*harvest.Portfolio, error) {
	res, err := s.read(a)
	if err != nil {
		return nil, err
	}
	if n := len(res.Invalid); n > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d invalid records discarded, see 'tlh import -f %s'\n", n, s.file)
	}

	p := harvest.NewPortfolio(res.Transactions,
		harvest.WithLogger(a.logger),
		harvest.WithWashSaleDays(a.cfg.WashSale.WindowDays),
	)

	if s.fetch {
		fetched, err := a.fetchPrices(ctx, p.Tickers())
		if err != nil {
			return nil, err
		}
		for _, t := range sortedKeys(fetched.Failed) {
			fmt.Fprintf(os.Stderr, "Warning: no price for %s: %v\n", t, fetched.Failed[t])
		}
		p.UpdatePrices(fetched.Prices)
	}
	p.UpdatePrices(s.prices.prices(a.cfg.Currency))
	return p, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// fetchPrices fetches the prices of tickers through the configured cache.
func (a *app) fetchPrices(ctx context.Context, tickers []string) (*quote.Result, error) {
	q := a.cfg.Quote
	if q.APIKey == "" {
		return nil, errors.New("no quote API key: set quote.api_key, TLH_QUOTE_API_KEY or FINNHUB_API_KEY")
	}
	client := quote.NewClient(q.APIKey,
		quote.WithBaseURL(q.BaseURL),
		quote.WithLogger(a.logger),
		quote.WithRateLimit(q.RateLimit),
		quote.WithTimeout(q.Timeout),
		quote.WithRetries(q.MaxRetries, q.InitialBackoff),
		quote.WithPricePath(q.PricePath),
		quote.WithCurrency(a.cfg.Currency),
	)

	cache, closeCache, err := a.openCache()
	if err != nil {
		return nil, err
	}
	defer closeCache()

	fetcher := quote.NewFetcher(client,
		quote.WithCache(cache),
		quote.WithConcurrency(q.Concurrency),
		quote.WithPriceCurrency(a.cfg.Currency),
		quote.WithFetcherLogger(a.logger),
	)
	res := fetcher.Fetch(ctx, tickers, func(percent int) {
		fmt.Fprintf(os.Stderr, "\rFetching %d prices... %3d%%", len(tickers), percent)
	})
	fmt.Fprintln(os.Stderr)
	return res, nil
}

// openCache opens the SQLite cache if cache.path is set, a memory cache otherwise.
func (a *app) openCache() (quote.Cache, func() error, error) {
	opts := []pricecache.Option{pricecache.WithLogger(a.logger)}
	if a.cfg.Cache.Path == "" {
		return pricecache.NewMemory(a.cfg.Cache.TTL, opts...), func() error { return nil }, nil
	}
	db, err := pricecache.OpenSQLite(a.cfg.Cache.Path, a.cfg.Cache.TTL, opts...)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}
