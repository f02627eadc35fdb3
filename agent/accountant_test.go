package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/etnz/brokerage"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

func newAccount() (*brokerage.Account, brokerage.Prices) {
	prices := brokerage.Prices{
		"AAPL": decimal.NewFromInt(150),
		"TSLA": decimal.NewFromInt(800),
	}
	return brokerage.NewAccount("alice", prices), prices
}

func call(lib Library, name string, args map[string]any) map[string]any {
	return lib(context.Background(), &genai.FunctionCall{ID: "1", Name: name, Args: args}).Response
}

func TestAccountingDeclarations(t *testing.T) {
	a, prices := newAccount()
	var names []string
	for _, d := range NewDeclaration(Accounting(a, prices)) {
		names = append(names, d.Name)
	}
	want := []string{"statement", "holdings", "transactions", "prices", "deposit", "withdraw", "buy", "sell"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("declarations mismatch (-want +got):\n%s", diff)
	}
}

func TestAccountingTransactions(t *testing.T) {
	a, prices := newAccount()
	lib := NewLibrary(Accounting(a, prices))

	steps := []struct {
		name   string
		args   map[string]any
		ok     bool
		reason string
		tx     string
	}{
		{"deposit", map[string]any{"amount": 10000.0}, true, "", "Deposited $10,000.00"},
		{"buy", map[string]any{"symbol": "AAPL", "quantity": 20.0, "memo": "long"}, true, "", "Bought 20 AAPL at $150.00 for $3,000.00 (long)"},
		{"withdraw", map[string]any{"amount": "500"}, true, "", "Withdrew $500.00"},
		{"sell", map[string]any{"symbol": "TSLA", "quantity": 1.0}, false, "insufficient_holdings", ""},
		{"withdraw", map[string]any{"amount": 7000.0}, false, "insufficient_funds", ""},
		{"buy", map[string]any{"symbol": "AAPL", "quantity": -1.0}, false, "invalid_quantity", ""},
	}
	for i, s := range steps {
		out := call(lib, s.name, s.args)
		if out["ok"] != s.ok {
			t.Fatalf("step %d %s(%v): ok = %v, want %v (%v)", i, s.name, s.args, out["ok"], s.ok, out)
		}
		if s.reason != "" && out["reason"] != s.reason {
			t.Errorf("step %d %s(%v): reason = %v, want %q", i, s.name, s.args, out["reason"], s.reason)
		}
		if s.tx != "" && out["transaction"] != s.tx {
			t.Errorf("step %d %s(%v): transaction = %v, want %q", i, s.name, s.args, out["transaction"], s.tx)
		}
		if _, ok := out["statement"].(string); !ok {
			t.Errorf("step %d %s(%v): no statement in %v", i, s.name, s.args, out)
		}
	}

	if got, want := a.Cash(), brokerage.M(6500, "USD"); !got.Equal(want) {
		t.Errorf("cash = %v, want %v", got, want)
	}
	if got, want := a.ProfitOrLoss(), brokerage.M(-500, "USD"); !got.Equal(want) {
		t.Errorf("profit or loss = %v, want %v", got, want)
	}
}

func TestAccountingInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"deposit", map[string]any{}},
		{"deposit", map[string]any{"amount": true}},
		{"withdraw", map[string]any{"amount": "ten"}},
		{"buy", map[string]any{"quantity": 1.0}},
		{"buy", map[string]any{"symbol": "AAPL", "quantity": 1.5}},
		{"sell", map[string]any{"symbol": "AAPL"}},
		{"rebalance", map[string]any{}},
	}
	for _, tt := range tests {
		a, prices := newAccount()
		out := call(NewLibrary(Accounting(a, prices)), tt.name, tt.args)
		if _, ok := out["error"].(string); !ok {
			t.Errorf("%s(%v) = %v, want an error", tt.name, tt.args, out)
		}
		if n := len(a.Transactions()); n != 0 {
			t.Errorf("%s(%v) recorded %d transactions", tt.name, tt.args, n)
		}
	}
}

func TestAccountingReports(t *testing.T) {
	a, prices := newAccount()
	a.Deposit(brokerage.M(1000, "USD"))
	a.Buy("TSLA", 1)
	lib := NewLibrary(Accounting(a, prices))

	tests := []struct {
		name string
		want string
	}{
		{"statement", "# Account of alice"},
		{"holdings", "| TSLA | 1 |"},
		{"transactions", "| Command |"},
		{"prices", "| AAPL | $150.00 |"},
	}
	for _, tt := range tests {
		out := call(lib, tt.name, nil)
		got, _ := out["output"].(string)
		if !strings.Contains(got, tt.want) {
			t.Errorf("%s output = %q, want it to contain %q", tt.name, got, tt.want)
		}
	}
}
