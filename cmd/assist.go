package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/brokerage/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd opens a chat with the AI assistant on the session account.
type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "chat with the AI assistant about the account" }
func (*assistCmd) Usage() string {
	return `assist [<prompt>...]

  Starts a chat with an assistant able to read the account and to record
  transactions on it. The optional prompt is sent first. Type 'bye' to go
  back to the session.

  Requires GEMINI_API_KEY or GOOGLE_API_KEY in the environment.
`
}

func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, ok := sessionOf(args)
	if !ok {
		return subcommands.ExitUsageError
	}
	initialPrompt := strings.Join(f.Args(), " ")

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(s.Err, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	in := s.In
	if in == nil {
		in = os.Stdin
	}
	accountant := agent.NewAccountant(s.Account, s.Oracle, s.Config.Model)
	a := agent.New(s.Out, in, s.Log, s.Config.Model, accountant)

	if err := a.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(s.Err, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
