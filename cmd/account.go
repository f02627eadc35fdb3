package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/brokerage/renderer"
	"github.com/google/subcommands"
)

// --- Create Command ---

type createCmd struct{}

func (*createCmd) Name() string     { return "create" }
func (*createCmd) Synopsis() string { return "open a new empty account, replacing the current one" }
func (*createCmd) Usage() string {
	return `create <owner>

  Opens a new account for <owner> with no cash, holdings nor transactions.
  The current account is discarded.
`
}
func (*createCmd) SetFlags(*flag.FlagSet) {}

func (c *createCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, ok := sessionOf(args)
	if !ok || f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	owner := strings.Join(f.Args(), " ")
	s.Open(owner)
	fmt.Fprintf(s.Out, "Account created for %s\n", owner)
	return subcommands.ExitSuccess
}

// --- Value Command ---

type valueCmd struct{}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "print the total portfolio value" }
func (*valueCmd) Usage() string {
	return `value

  Prints cash plus the value of every holding at current prices.
`
}
func (*valueCmd) SetFlags(*flag.FlagSet) {}

func (c *valueCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, ok := sessionOf(args)
	if !ok {
		return subcommands.ExitUsageError
	}
	fmt.Fprintf(s.Out, "Total Portfolio Value: %s\n", s.Account.Value())
	return subcommands.ExitSuccess
}

// --- Profit/Loss Command ---

type pnlCmd struct{}

func (*pnlCmd) Name() string     { return "pnl" }
func (*pnlCmd) Synopsis() string { return "print the profit or loss since the first deposit" }
func (*pnlCmd) Usage() string {
	return `pnl

  Prints the portfolio value minus the sum of all deposits.
`
}
func (*pnlCmd) SetFlags(*flag.FlagSet) {}

func (c *pnlCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, ok := sessionOf(args)
	if !ok {
		return subcommands.ExitUsageError
	}
	fmt.Fprintf(s.Out, "Profit/Loss: %s\n", s.Account.ProfitOrLoss())
	return subcommands.ExitSuccess
}

// --- Holdings Command ---

type holdingsCmd struct{}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "list the shares held per symbol" }
func (*holdingsCmd) Usage() string {
	return `holdings

  Lists every symbol held with its number of shares.
`
}
func (*holdingsCmd) SetFlags(*flag.FlagSet) {}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, ok := sessionOf(args)
	if !ok {
		return subcommands.ExitUsageError
	}
	s.printMarkdown(renderer.Holdings(s.Account.Holdings()))
	return subcommands.ExitSuccess
}

// --- Statement Command ---

type statementCmd struct{}

func (*statementCmd) Name() string     { return "statement" }
func (*statementCmd) Synopsis() string { return "print balances and valued positions" }
func (*statementCmd) Usage() string {
	return `statement

  Prints cash, deposits, value, profit or loss and every position valued at
  the current price.
`
}
func (*statementCmd) SetFlags(*flag.FlagSet) {}

func (c *statementCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, ok := sessionOf(args)
	if !ok {
		return subcommands.ExitUsageError
	}
	s.printMarkdown(renderer.Statement(s.Account.Statement()))
	return subcommands.ExitSuccess
}
