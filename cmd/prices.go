package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/harvest/renderer"
	"github.com/google/subcommands"
)

// pricesCmd holds the flags for the 'prices' subcommand.
type pricesCmd struct {
	source  source
	tickers tickerList
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "fetch and cache the last prices" }
func (*pricesCmd) Usage() string {
	return `tlh prices [-f <file.csv>] [-t T1,T2]

  Fetches the last price of the open positions of an export, and of the -t
  tickers, through the price cache. See 'tlh topic prices'.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	c.source.setFlags(f)
	f.Var(&c.tickers, "t", "Comma separated tickers to fetch")
}

func (c *pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.source.file == "" && len(c.tickers) == 0 {
		fmt.Fprintln(os.Stderr, "Error: nothing to fetch, use -f or -t")
		return subcommands.ExitUsageError
	}
	a, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	tickers := c.tickers
	if c.source.file != "" {
		p, err := c.source.portfolio(ctx, a)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
			return subcommands.ExitFailure
		}
		tickers = append(tickers, p.Tickers()...)
	}

	res, err := a.fetchPrices(ctx, tickers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching prices: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.Prices(res))
	if len(res.Failed) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
