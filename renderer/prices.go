package renderer

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/harvest/quote"
)

// Prices renders the outcome of a price fetch, one row per ticker with the
// source of its price.
func Prices(res *quote.Result) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Prices\n\n")

	source := make(map[string]string)
	for _, t := range res.Cached {
		source[t] = "cache"
	}
	for _, t := range res.Fetched {
		source[t] = "fetched"
	}
	for _, t := range res.Stale {
		source[t] = "stale cache"
	}
	tickers := make([]string, 0, len(source))
	for t := range source {
		tickers = append(tickers, t)
	}
	slices.Sort(tickers)

	if len(tickers) > 0 {
		t := newTable(&b, "lrl", "Ticker", "Price", "Source")
		for _, ticker := range tickers {
			t.Row(ticker, res.Prices[ticker].String(), source[ticker])
		}
		fmt.Fprintln(&b)
	}

	section(&b, "Failures", func(w io.Writer) bool {
		if len(res.Failed) == 0 {
			return false
		}
		failed := make([]string, 0, len(res.Failed))
		for t := range res.Failed {
			failed = append(failed, t)
		}
		slices.Sort(failed)
		for _, t := range failed {
			fmt.Fprintf(w, "* %s: %v\n", t, res.Failed[t])
		}
		return true
	})
	return b.String()
}
