// Command tlh finds tax-loss harvesting opportunities in a brokerage export.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/harvest/cmd"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, "tlh")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// Answers the shell completion requests, and exits, when COMP_LINE is set.
	cmd.Completion(commander, flag.CommandLine).Complete("tlh")

	flag.Parse()
	if name := flag.Arg(0); name != "" && !cmd.Has(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}
