package renderer

import (
	"testing"

	"github.com/etnz/brokerage"
	"github.com/google/go-cmp/cmp"
)

func usd(v float64) brokerage.Money { return brokerage.M(v, "USD") }

func scenario(t *testing.T) *brokerage.Account {
	t.Helper()
	acc := brokerage.NewAccount("alice", brokerage.DefaultPrices())
	acc.Deposit(usd(10000))
	if _, err := acc.Apply(brokerage.NewBuy("core position", "AAPL", 20)); err != nil {
		t.Fatalf("Apply(buy) unexpected error: %v", err)
	}
	if !acc.Withdraw(usd(500)) {
		t.Fatalf("Withdraw(500) = false, want true")
	}
	return acc
}

func TestStatement(t *testing.T) {
	got := Statement(scenario(t).Statement())
	want := `# Account of alice

| Cash | Deposits | Value | Profit/Loss |
|---:|---:|---:|---:|
| $6,500.00 | $10,000.00 | $9,500.00 | -$500.00 |

## Positions

| Symbol | Quantity | Price | Value |
|:---|---:|---:|---:|
| AAPL | 20 | $150.00 | $3,000.00 |
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Statement() mismatch (-want +got):\n%s", diff)
	}
}

func TestStatementEmpty(t *testing.T) {
	got := Statement(brokerage.NewAccount("bob", nil).Statement())
	want := `# Account of bob

| Cash | Deposits | Value | Profit/Loss |
|---:|---:|---:|---:|
| $0.00 | $0.00 | $0.00 | - |

No holdings
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Statement() mismatch (-want +got):\n%s", diff)
	}
}

func TestTransactions(t *testing.T) {
	acc := scenario(t)
	got := Transactions(acc.Transactions())
	want := `| # | Command | Symbol | Quantity | Price | Amount | Memo |
|---:|:---|:---|---:|---:|---:|:---|
| 1 | deposit |  |  |  | $10,000.00 |  |
| 2 | buy | AAPL | 20 | $150.00 | $3,000.00 | core position |
| 3 | withdraw |  |  |  | $500.00 |  |
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Transactions() mismatch (-want +got):\n%s", diff)
	}
	if got := Transactions(nil); got != "No transactions\n" {
		t.Errorf("Transactions(nil) = %q, want %q", got, "No transactions\n")
	}
}

func TestTransaction(t *testing.T) {
	txs := scenario(t).Transactions()
	tests := []struct {
		tx   brokerage.Transaction
		want string
	}{
		{txs[0], "Deposited $10,000.00"},
		{txs[1], "Bought 20 AAPL at $150.00 for $3,000.00 (core position)"},
		{txs[2], "Withdrew $500.00"},
	}
	for _, tc := range tests {
		if got := Transaction(tc.tx); got != tc.want {
			t.Errorf("Transaction(%v) = %q, want %q", tc.tx.What(), got, tc.want)
		}
	}
}

func TestHoldings(t *testing.T) {
	got := Holdings(map[string]brokerage.Quantity{"TSLA": 1, "AAPL": 20})
	want := "| Symbol | Quantity |\n|:---|---:|\n| AAPL | 20 |\n| TSLA | 1 |\n"
	if got != want {
		t.Errorf("Holdings() = %q, want %q", got, want)
	}
	if got := Holdings(nil); got != "No holdings\n" {
		t.Errorf("Holdings(nil) = %q, want %q", got, "No holdings\n")
	}
}

func TestPrices(t *testing.T) {
	got := Prices(brokerage.DefaultPrices(), "USD")
	want := "| Symbol | Price |\n|:---|---:|\n| AAPL | $150.00 |\n| GOOGL | $2,800.00 |\n| TSLA | $800.00 |\n"
	if got != want {
		t.Errorf("Prices() = %q, want %q", got, want)
	}
}
