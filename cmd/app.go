// Package cmd implements the subcommands of the tlh tool.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/harvest/config"
	"github.com/etnz/harvest/logging"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// EnvConfig is the environment variable holding the default -config value.
const EnvConfig = "TLH_CONFIG"

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&importCmd{}, "portfolio")
	c.Register(&lotsCmd{}, "portfolio")
	c.Register(&gainsCmd{}, "portfolio")
	c.Register(&holdingsCmd{}, "portfolio")
	c.Register(&harvestCmd{}, "portfolio")
	c.Register(&exportCmd{}, "portfolio")

	c.Register(&pricesCmd{}, "prices")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configPath = flag.String("config", os.Getenv(EnvConfig), "Path to the configuration file. Defaults to tlh.toml in the working directory or in ~/.config/tlh")
var verbose = flag.Bool("v", false, "Log debug messages")
var rawMarkdown = flag.Bool("raw", false, "Print reports as raw markdown, without terminal rendering")

// stdout receives the reports.
var stdout io.Writer = os.Stdout

// app is what every subcommand needs: the configuration and a logger.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// setup loads the configuration and builds the logger.
func setup() (*app, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	return &app{cfg: cfg, logger: logging.New(cfg.Log, os.Stderr)}, nil
}

// printMarkdown prints a markdown report, rendered for the terminal unless
// -raw is set or the rendering fails.
func printMarkdown(md string) {
	if !*rawMarkdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(120),
		)
		if err == nil {
			if out, err := r.Render(md); err == nil {
				fmt.Fprint(stdout, out)
				return
			}
		}
	}
	fmt.Fprint(stdout, md)
	if !strings.HasSuffix(md, "\n") {
		fmt.Fprintln(stdout)
	}
}
