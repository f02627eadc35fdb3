package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/brokerage"
	"github.com/google/subcommands"
)

// --- Deposit Command ---

type depositCmd struct {
	amount string
	memo   string
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "add cash to the account" }
func (*depositCmd) Usage() string {
	return `deposit -a <amount> [-m <memo>]

  Adds cash to the account. The amount counts toward the total invested.
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Amount to deposit")
	f.StringVar(&c.memo, "m", "", "An optional note for the transaction")
}

func (c *depositCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, ok := sessionOf(args)
	if !ok || c.amount == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	amount, err := brokerage.ParseMoney(c.amount, s.Account.Currency())
	if err != nil {
		fmt.Fprintf(s.Err, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	tx, err := s.Account.Apply(brokerage.NewDeposit(c.memo, amount))
	if err != nil {
		return s.failed(err)
	}
	fmt.Fprintf(s.Out, "Deposited: %s\nUpdated Balance: %s\n", tx.(brokerage.Deposit).Amount, s.Account.Cash())
	return subcommands.ExitSuccess
}

// --- Withdraw Command ---

type withdrawCmd struct {
	amount string
	memo   string
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "take cash out of the account" }
func (*withdrawCmd) Usage() string {
	return `withdraw -a <amount> [-m <memo>]

  Takes cash out of the account. Fails if the cash balance is too low.
`
}

func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Amount to withdraw")
	f.StringVar(&c.memo, "m", "", "An optional note for the transaction")
}

func (c *withdrawCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, ok := sessionOf(args)
	if !ok || c.amount == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	amount, err := brokerage.ParseMoney(c.amount, s.Account.Currency())
	if err != nil {
		fmt.Fprintf(s.Err, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	tx, err := s.Account.Apply(brokerage.NewWithdraw(c.memo, amount))
	if err != nil {
		return s.failed(err)
	}
	fmt.Fprintf(s.Out, "Withdrew: %s\nUpdated Balance: %s\n", tx.(brokerage.Withdraw).Amount, s.Account.Cash())
	return subcommands.ExitSuccess
}

// --- Buy Command ---

type buyCmd struct {
	symbol   string
	quantity int64
	memo     string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "purchase shares at the current price" }
func (*buyCmd) Usage() string {
	return `buy -s <symbol> -q <quantity> [-m <memo>]

  Purchases shares of a symbol at the current price. The cost is debited from cash.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Symbol of the shares")
	f.Int64Var(&c.quantity, "q", 0, "Number of shares")
	f.StringVar(&c.memo, "m", "", "An optional note for the transaction")
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, ok := sessionOf(args)
	if !ok || c.symbol == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	tx, err := s.Account.Apply(brokerage.NewBuy(c.memo, c.symbol, brokerage.Quantity(c.quantity)))
	if err != nil {
		return s.failed(err)
	}
	buy := tx.(brokerage.Buy)
	fmt.Fprintf(s.Out, "Bought %s shares of %s at %s\nUpdated Balance: %s\n", buy.Quantity, buy.Symbol, buy.Price, s.Account.Cash())
	return subcommands.ExitSuccess
}

// --- Sell Command ---

type sellCmd struct {
	symbol   string
	quantity int64
	memo     string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell held shares at the current price" }
func (*sellCmd) Usage() string {
	return `sell -s <symbol> -q <quantity> [-m <memo>]

  Sells held shares of a symbol at the current price. The proceeds are credited to cash.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Symbol of the shares")
	f.Int64Var(&c.quantity, "q", 0, "Number of shares")
	f.StringVar(&c.memo, "m", "", "An optional note for the transaction")
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, ok := sessionOf(args)
	if !ok || c.symbol == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	tx, err := s.Account.Apply(brokerage.NewSell(c.memo, c.symbol, brokerage.Quantity(c.quantity)))
	if err != nil {
		return s.failed(err)
	}
	sell := tx.(brokerage.Sell)
	fmt.Fprintf(s.Out, "Sold %s shares of %s at %s\nUpdated Balance: %s\n", sell.Quantity, sell.Symbol, sell.Price, s.Account.Cash())
	return subcommands.ExitSuccess
}
