// Package cmd implements the tsim command line application: an interactive
// trading account simulator.
//
// Top-level commands (shell, run, serve, prices, topic) are registered on the
// main commander with Register. Inside a session every input line is itself
// dispatched to the session commands (deposit, buy, value, ...).
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/brokerage/config"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the top-level subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&shellCmd{}, "session")
	c.Register(&runCmd{}, "session")
	c.Register(&serveCmd{}, "session")

	c.Register(&pricesCmd{}, "market")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile   = flag.String("config", os.Getenv(config.EnvConfig), "Path to a YAML configuration file")
	ownerFlag    = flag.String("owner", "", "Owner of the account opened at startup, overrides the configuration")
	currencyFlag = flag.String("currency", "", "Currency of the account (ISO 4217), overrides the configuration")
	pricesFile   = flag.String("prices", "", "Price table file, .yaml or .json, overrides the configuration")
	pricesPath   = flag.String("prices-path", "", "JSONPath selecting the price table inside a .json prices file")
	// Verbose enables debug logs.
	Verbose = flag.Bool("v", false, "Print debug logs")
	rawFlag = flag.Bool("raw", false, "Print markdown as is, without terminal styling")
)

// loadConfig resolves the configuration file, the environment, then the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *ownerFlag != "" {
		cfg.Owner = *ownerFlag
	}
	if *currencyFlag != "" {
		cfg.Currency = strings.ToUpper(*currencyFlag)
	}
	if *pricesFile != "" {
		cfg.PricesFile = *pricesFile
	}
	if *pricesPath != "" {
		cfg.PricesPath = *pricesPath
	}
	if *Verbose {
		cfg.Log = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger creates a console logger for a module of the application.
func newLogger(w io.Writer, cfg *config.Config, module string) zerolog.Logger {
	level, err := cfg.LogLevel()
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).
		Level(level).
		With().Str("Module", module).Timestamp().
		Logger()
}

// printMarkdown writes md to w, styled for the terminal unless raw is set.
func printMarkdown(w io.Writer, md string, raw bool) {
	if raw {
		fmt.Fprint(w, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprint(w, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(w, md)
		return
	}
	fmt.Fprint(w, out)
}
