package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/harvest"
	"github.com/etnz/harvest/date"
	"github.com/etnz/harvest/renderer"
	"github.com/google/subcommands"
)

// holdingsCmd holds the flags for the 'holdings' subcommand.
type holdingsCmd struct {
	source source
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "value the open positions" }
func (*holdingsCmd) Usage() string {
	return `tlh holdings -f <file.csv> [-fetch] [-price TICKER=PRICE]...

  Displays every open position with its cost basis, market value and
  unrealized gain or loss. Prices default to the last transaction price of
  each ticker, see 'tlh topic prices'.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	c.source.setFlags(f)
	c.source.setPriceFlags(f)
}

func (c *holdingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	p, err := c.source.portfolio(ctx, a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.Holdings(date.Today(), harvest.Valuate(p.Holdings(), p.Prices())))
	return subcommands.ExitSuccess
}
