package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/etnz/harvest"
	"github.com/etnz/harvest/date"
	"github.com/etnz/harvest/renderer"
	"github.com/google/subcommands"
)

// harvestCmd holds the flags for the 'harvest' subcommand.
type harvestCmd struct {
	source  source
	date    string
	harvest tickerList
	balance tickerList
	all     bool
}

func (*harvestCmd) Name() string { return "harvest" }
func (*harvestCmd) Synopsis() string {
	return "list tax-loss harvesting and gain balancing opportunities"
}
func (*harvestCmd) Usage() string {
	return `tlh harvest -f <file.csv> [-d <date>] [-harvest T1,T2] [-balance T3] [-all] [-fetch] [-price TICKER=PRICE]...

  Lists the positions at a loss, largest loss first, with a warning when the
  ticker was bought within the wash-sale window before the target date, and
  the positions at a gain, largest gain first.

  Selecting positions with -harvest and -balance simulates their sale: the
  summary then shows the net realized gain if they were sold.

Usage Examples:
# Simulates selling TSLA at a loss and MSFT at a gain, at live prices.
$ tlh harvest -f export.csv -fetch -harvest TSLA -balance MSFT
`
}

func (c *harvestCmd) SetFlags(f *flag.FlagSet) {
	c.source.setFlags(f)
	c.source.setPriceFlags(f)
	f.StringVar(&c.date, "d", "", "Target date of the wash-sale check. Defaults to today")
	f.Var(&c.harvest, "harvest", "Comma separated tickers to sell at a loss")
	f.Var(&c.balance, "balance", "Comma separated tickers to sell at a gain")
	f.BoolVar(&c.all, "all", false, "Select every opportunity")
}

func (c *harvestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	target, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
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

	if c.all {
		p.SelectAllHarvest(true)
		p.SelectAllBalancing(true)
	} else {
		c.selectTickers(p, target)
	}

	printMarkdown(renderer.Report(p.Analyze(target)))
	return subcommands.ExitSuccess
}

// selectTickers selects the -harvest and -balance tickers, warning about
// the ones that are not opportunities.
func (c *harvestCmd) selectTickers(p *harvest.Portfolio, target date.Date) {
	r := p.Analyze(target)
	losses := harvest.HarvestTickers(r.Harvest)
	gains := harvest.BalancingTickers(r.Balancing)

	for _, t := range c.harvest {
		if !slices.Contains(losses, t) {
			fmt.Fprintf(os.Stderr, "Warning: %s is not at a loss, it does not change the simulation\n", t)
		}
	}
	for _, t := range c.balance {
		if !slices.Contains(gains, t) {
			fmt.Fprintf(os.Stderr, "Warning: %s is not at a gain, it does not change the simulation\n", t)
		}
	}
	p.Selection().SetHarvest(c.harvest...)
	p.Selection().SetBalancing(c.balance...)
}
