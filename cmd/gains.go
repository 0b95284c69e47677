package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/harvest/renderer"
	"github.com/google/subcommands"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	source source
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized gains and losses of every sale" }
func (*gainsCmd) Usage() string {
	return `tlh gains -f <file.csv>

  Lists the realized gain or loss of every sale, computed with the FIFO
  method, and their total.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	c.source.setFlags(f)
}

func (c *gainsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	printMarkdown(renderer.Gains(p.Realized()))
	return subcommands.ExitSuccess
}
