package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/harvest/renderer"
	"github.com/google/subcommands"
)

type lotsCmd struct {
	source source
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "list the open lots of every ticker" }
func (*lotsCmd) Usage() string {
	return `tlh lots -f <file.csv>

  Lists the lots still open after matching every sale to the oldest buys
  (FIFO), with their acquisition date and remaining cost.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	c.source.setFlags(f)
}

func (c *lotsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	printMarkdown(renderer.Lots(p.Holdings()))
	return subcommands.ExitSuccess
}
