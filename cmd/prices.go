package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/brokerage/renderer"
	"github.com/google/subcommands"
)

type pricesCmd struct{}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "list the prices shares trade at" }
func (*pricesCmd) Usage() string {
	return `prices

  Lists the price table used to value and trade shares. Any symbol missing
  from the table trades at zero.
`
}
func (*pricesCmd) SetFlags(*flag.FlagSet) {}

func (c *pricesCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if s, ok := sessionOf(args); ok {
		s.printMarkdown(renderer.Prices(s.Oracle, s.Account.Currency()))
		return subcommands.ExitSuccess
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	oracle, err := cfg.Oracle()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(os.Stdout, renderer.Prices(oracle, cfg.Currency), *rawFlag)
	return subcommands.ExitSuccess
}
