package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/brokerage"
	"github.com/etnz/brokerage/renderer"
	"github.com/google/subcommands"
)

type txCmd struct {
	head int
	tail int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list all transactions of the account" }
func (*txCmd) Usage() string {
	return `tx [-head <n>] [-tail <n>]

  Lists transactions in the order they were recorded, with options for limiting the output.
`
}

func (p *txCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&p.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&p.tail, "tail", 0, "Show only the last N transactions.")
}

func (p *txCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, ok := sessionOf(args)
	if !ok {
		return subcommands.ExitUsageError
	}
	if p.head > 0 && p.tail > 0 {
		fmt.Fprintln(s.Err, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}

	transactions := s.Account.Transactions()
	if p.head > 0 && len(transactions) > p.head {
		transactions = transactions[:p.head]
	}
	if p.tail > 0 && len(transactions) > p.tail {
		transactions = transactions[len(transactions)-p.tail:]
	}

	s.printMarkdown(renderer.Transactions(transactions))
	return subcommands.ExitSuccess
}

// --- Export Command ---

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the journal as JSONL" }
func (*exportCmd) Usage() string {
	return `export [-o <file>]

  Writes every transaction as one JSON object per line, to <file> or to the output.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "File to write, the output if empty")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, ok := sessionOf(args)
	if !ok {
		return subcommands.ExitUsageError
	}
	txs := s.Account.Transactions()
	if c.output == "" {
		if err := brokerage.EncodeJournal(s.Out, txs); err != nil {
			fmt.Fprintf(s.Err, "Error exporting journal: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	out, err := os.Create(c.output)
	if err != nil {
		fmt.Fprintf(s.Err, "Error creating %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	defer out.Close()
	if err := brokerage.EncodeJournal(out, txs); err != nil {
		fmt.Fprintf(s.Err, "Error writing %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(s.Out, "Exported %d transactions to %s\n", len(txs), c.output)
	return subcommands.ExitSuccess
}
