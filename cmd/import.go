package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/harvest/renderer"
	"github.com/google/subcommands"
)

type importCmd struct {
	source source
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "check a brokerage export and list its transactions" }
func (*importCmd) Usage() string {
	return `tlh import -f <file.csv> [-mode lenient|strict]

  Reads a brokerage CSV export and lists the buys and sells it contains,
  sorted by date, then the records that were ignored or invalid.
  See 'tlh topic import' for the supported formats.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	c.source.setFlags(f)
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	res, err := c.source.read(a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.Import(res))
	return subcommands.ExitSuccess
}
