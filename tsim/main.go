// Command tsim is a trading account simulator.
//
// Run 'tsim help' for the list of commands and 'tsim topic' for the
// documentation. Shell completion is installed with COMP_INSTALL=1 tsim.
//
// Unknown commands run the tsim-<command> binary found in the PATH, if any.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/brokerage/cmd"
	"github.com/google/subcommands"
)

func main() {
	// answers completion requests from the shell and exits, does nothing otherwise.
	cmd.Completion().Complete("tsim")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cmd.Register(commander)

	flag.Parse()

	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func registered(c *subcommands.Commander, name string) (found bool) {
	c.VisitCommands(func(_ *subcommands.CommandGroup, sc subcommands.Command) {
		found = found || sc.Name() == name
	})
	return found
}
