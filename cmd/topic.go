package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/brokerage/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `topic [-list] [<topic>...]

  Show documentation for the given topics, "*" shows them all.
  Without topic, shows the index.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "list the topics and their titles")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	var doc string
	var err error
	if c.list {
		doc, err = docs.Listing()
	} else {
		doc, err = docs.Read(f.Args()...)
	}

	s, inSession := sessionOf(args)
	if err != nil {
		if inSession {
			fmt.Fprintf(s.Err, "Error reading doc: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error reading doc: %v\n", err)
		}
		return subcommands.ExitFailure
	}
	if inSession {
		s.printMarkdown(doc)
	} else {
		printMarkdown(os.Stdout, doc, *rawFlag)
	}
	return subcommands.ExitSuccess
}
