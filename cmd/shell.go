package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
)

// openSession builds a session from the configuration, on the standard streams.
func openSession() (*Session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	oracle, err := cfg.Oracle()
	if err != nil {
		return nil, fmt.Errorf("could not load prices: %w", err)
	}
	s := NewSession(cfg, oracle, os.Stdout, os.Stderr)
	s.In = os.Stdin
	s.Raw = *rawFlag
	s.Log = newLogger(os.Stderr, cfg, "Session")
	// reopen so that the account logs with the session logger.
	s.Open(cfg.Owner)
	return s, nil
}

// --- Shell Command ---

type shellCmd struct{}

func (*shellCmd) Name() string     { return "shell" }
func (*shellCmd) Synopsis() string { return "start an interactive trading session" }
func (*shellCmd) Usage() string {
	return `shell

  Opens an empty account and reads commands from the standard input, one per
  line, until 'exit', 'quit' or end of input. Type 'help' to list them.
`
}
func (*shellCmd) SetFlags(*flag.FlagSet) {}

func (c *shellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := Shell(ctx, s, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// --- Run Command ---

type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run session commands from script files" }
func (*runCmd) Usage() string {
	return `run <script>...

  Opens an empty account and executes every line of the scripts as a session
  command. Use '-' to read the standard input. Lines starting with '#' are
  comments. Rejected transactions are reported and the script goes on; a
  malformed command stops it.
`
}
func (*runCmd) SetFlags(*flag.FlagSet) {}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, name := range f.Args() {
		if err := runFile(ctx, s, name); err != nil {
			fmt.Fprintf(os.Stderr, "Error in %s: %v\n", name, err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

func runFile(ctx context.Context, s *Session, name string) error {
	var r io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	return RunScript(ctx, s, r)
}
