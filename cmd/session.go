package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/brokerage"
	"github.com/etnz/brokerage/config"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Session is the state shared by the commands of an interactive session: one
// account at a time and the price table it trades at.
type Session struct {
	Account *brokerage.Account
	Oracle  brokerage.Prices
	Config  *config.Config

	Out io.Writer
	Err io.Writer
	In  io.Reader // used by interactive commands like assist

	Raw bool // print markdown as is
	Log zerolog.Logger
}

// NewSession creates a session with an empty account for cfg.Owner.
func NewSession(cfg *config.Config, oracle brokerage.Prices, out, errOut io.Writer) *Session {
	s := &Session{
		Config: cfg,
		Oracle: oracle,
		Out:    out,
		Err:    errOut,
		Log:    zerolog.Nop(),
	}
	s.Open(cfg.Owner)
	return s
}

// Open replaces the current account by a new empty one for owner.
func (s *Session) Open(owner string) {
	s.Account = brokerage.NewAccount(owner, s.Oracle,
		brokerage.WithCurrency(s.Config.Currency),
		brokerage.WithLogger(s.Log),
	)
}

// printMarkdown prints md with the session settings.
func (s *Session) printMarkdown(md string) { printMarkdown(s.Out, md, s.Raw) }

// registerSession registers the commands available inside a session.
func registerSession(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")

	c.Register(&createCmd{}, "account")
	c.Register(&valueCmd{}, "account")
	c.Register(&pnlCmd{}, "account")
	c.Register(&holdingsCmd{}, "account")
	c.Register(&statementCmd{}, "account")

	c.Register(&depositCmd{}, "transactions")
	c.Register(&withdrawCmd{}, "transactions")
	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&txCmd{}, "transactions")
	c.Register(&exportCmd{}, "transactions")

	c.Register(&pricesCmd{}, "market")
	c.Register(&assistCmd{}, "assistant")
	c.Register(&topicCmd{}, "help")
}

// Exec runs a single session command line.
func (s *Session) Exec(ctx context.Context, line string) subcommands.ExitStatus {
	args, err := splitLine(line)
	if err != nil {
		fmt.Fprintf(s.Err, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if len(args) == 0 {
		return subcommands.ExitSuccess
	}

	top := flag.NewFlagSet("tsim", flag.ContinueOnError)
	top.SetOutput(s.Err)
	c := subcommands.NewCommander(top, "")
	c.Output, c.Error = s.Out, s.Err
	registerSession(c)
	if err := top.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}
	return c.Execute(ctx, s)
}

var errUsage = errors.New("usage error")

// RunScript executes every line of r as a session command. Empty lines and
// lines starting with '#' are skipped. Rejected transactions do not stop the
// script, usage errors do.
func RunScript(ctx context.Context, s *Session, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if status := s.Exec(ctx, line); status == subcommands.ExitUsageError {
			return fmt.Errorf("line %d: %q: %w", n, line, errUsage)
		}
	}
	return scanner.Err()
}

const prompt = "tsim> "

// Shell reads and executes commands from r until EOF, "exit" or "quit".
func Shell(ctx context.Context, s *Session, r io.Reader) error {
	reader := bufio.NewReader(r)
	fmt.Fprintf(s.Out, "Trading account of %s. Type 'help' for commands, 'exit' to leave.\n", s.Account.Owner())
	for {
		fmt.Fprint(s.Out, prompt)
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			if line == "exit" || line == "quit" {
				return nil
			}
			s.Exec(ctx, line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.Out)
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// sessionOf returns the session passed by Session.Exec to a command.
func sessionOf(args []any) (*Session, bool) {
	if len(args) == 0 {
		return nil, false
	}
	s, ok := args[0].(*Session)
	return s, ok
}

// splitLine splits a command line into words. Double quotes group words,
// a backslash escapes the next character.
func splitLine(line string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		inWord  bool
		quoted  bool
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped, inWord = true, true
		case r == '"':
			quoted, inWord = !quoted, true
		case !quoted && (r == ' ' || r == '\t'):
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote in %q", line)
	}
	if escaped {
		return nil, fmt.Errorf("trailing backslash in %q", line)
	}
	if inWord {
		words = append(words, current.String())
	}
	return words, nil
}

// reasons maps rejections to the messages shown to the user.
var reasons = map[string]string{
	"invalid_amount":        "Invalid amount",
	"insufficient_funds":    "Insufficient funds",
	"invalid_quantity":      "Invalid quantity",
	"insufficient_holdings": "Insufficient holdings",
}

// failed reports a rejected transaction.
func (s *Session) failed(err error) subcommands.ExitStatus {
	msg, ok := reasons[brokerage.Reason(err)]
	if !ok {
		msg = err.Error()
	}
	fmt.Fprintf(s.Out, "Transaction Failed: %s\n", msg)
	s.Log.Debug().Err(err).Msg("transaction rejected")
	return subcommands.ExitFailure
}
