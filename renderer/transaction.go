package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/brokerage"
)

// Transaction renders a transaction to a one line sentence.
func Transaction(tx brokerage.Transaction) string {
	var s, memo string
	switch v := tx.(type) {
	case brokerage.Deposit:
		s, memo = fmt.Sprintf("Deposited %s", v.Amount), v.Memo
	case brokerage.Withdraw:
		s, memo = fmt.Sprintf("Withdrew %s", v.Amount), v.Memo
	case brokerage.Buy:
		s, memo = fmt.Sprintf("Bought %s %s at %s for %s", v.Quantity, v.Symbol, v.Price, v.Cost()), v.Memo
	case brokerage.Sell:
		s, memo = fmt.Sprintf("Sold %s %s at %s for %s", v.Quantity, v.Symbol, v.Price, v.Proceeds()), v.Memo
	default:
		return string(tx.What())
	}
	if memo != "" {
		s += fmt.Sprintf(" (%s)", memo)
	}
	return s
}

// Transactions renders the journal as a table, oldest first.
func Transactions(txs []brokerage.Transaction) string {
	if len(txs) == 0 {
		return "No transactions\n"
	}
	var b strings.Builder
	fmt.Fprintln(&b, "| # | Command | Symbol | Quantity | Price | Amount | Memo |")
	fmt.Fprintln(&b, "|---:|:---|:---|---:|---:|---:|:---|")
	for i, tx := range txs {
		var symbol, quantity, price, amount, memo string
		switch v := tx.(type) {
		case brokerage.Deposit:
			amount, memo = v.Amount.String(), v.Memo
		case brokerage.Withdraw:
			amount, memo = v.Amount.String(), v.Memo
		case brokerage.Buy:
			symbol, quantity, price, amount, memo = v.Symbol, v.Quantity.String(), v.Price.String(), v.Cost().String(), v.Memo
		case brokerage.Sell:
			symbol, quantity, price, amount, memo = v.Symbol, v.Quantity.String(), v.Price.String(), v.Proceeds().String(), v.Memo
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s |\n", i+1, tx.What(), symbol, quantity, price, amount, memo)
	}
	return b.String()
}
