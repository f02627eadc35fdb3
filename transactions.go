package brokerage

import (
	"fmt"
	"math"
)

// CommandType is a typed string for identifying transaction commands.
type CommandType string

// Command types used for identifying transactions.
const (
	CmdDeposit  CommandType = "deposit"
	CmdWithdraw CommandType = "withdraw"
	CmdBuy      CommandType = "buy"
	CmdSell     CommandType = "sell"
)

// Transaction is one record of the account journal. The set of transactions
// is closed: Deposit, Withdraw, Buy and Sell.
type Transaction interface {
	What() CommandType // What returns the command type of the transaction (e.g., "buy", "sell").
	Equal(Transaction) bool
	// validate checks the transaction against the account state and returns
	// a possibly completed copy. The account lock is held.
	validate(a *Account) (Transaction, error)
}

type baseCmd struct {
	Command CommandType `json:"command"`
	Memo    string      `json:"memo,omitempty"` // Memo is an optional note attached to the transaction.
}

// What returns the command name for the transaction.
func (t baseCmd) What() CommandType { return t.Command }

// Rationale returns the memo associated with the transaction.
func (t baseCmd) Rationale() string { return t.Memo }

func (t baseCmd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", t.Command)
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}

// secCmd is a component for trades on a symbol.
type secCmd struct {
	baseCmd
	Symbol string `json:"symbol"`
}

func (t secCmd) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.Append("symbol", t.Symbol)
	return w.MarshalJSON()
}

// amount checks and quick fixes an amount submitted to account a: a weak
// currency takes the account currency, and the amount must be positive.
func amount(a *Account, cmd CommandType, m Money) (Money, error) {
	if m.Currency() == "" {
		m = m.In(a.currency)
	} else if m.Currency() != a.currency {
		return m, fmt.Errorf("%s %s: currency does not match account currency %s: %w", cmd, m, a.currency, ErrInvalidAmount)
	}
	if !m.IsPositive() {
		return m, fmt.Errorf("%s amount must be positive, got %s: %w", cmd, m, ErrInvalidAmount)
	}
	return m, nil
}

// --- Deposit ---

// Deposit adds cash to the account and counts toward the amount invested.
type Deposit struct {
	baseCmd
	Amount Money
}

// NewDeposit creates a new Deposit transaction.
func NewDeposit(memo string, amount Money) Deposit {
	return Deposit{baseCmd: baseCmd{Command: CmdDeposit, Memo: memo}, Amount: amount}
}

func (t Deposit) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.EmbedFrom(t.Amount)
	return w.MarshalJSON()
}

func (t Deposit) Equal(other Transaction) bool {
	o, ok := other.(Deposit)
	return ok && t.baseCmd == o.baseCmd && t.Amount.Equal(o.Amount)
}

func (t Deposit) validate(a *Account) (Transaction, error) {
	var err error
	t.Amount, err = amount(a, t.Command, t.Amount)
	return t, err
}

// --- Withdraw ---

// Withdraw removes cash from the account. It never reduces the amount invested.
type Withdraw struct {
	baseCmd
	Amount Money
}

// NewWithdraw creates a new Withdraw transaction.
func NewWithdraw(memo string, amount Money) Withdraw {
	return Withdraw{baseCmd: baseCmd{Command: CmdWithdraw, Memo: memo}, Amount: amount}
}

func (t Withdraw) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseCmd)
	w.EmbedFrom(t.Amount)
	return w.MarshalJSON()
}

func (t Withdraw) Equal(other Transaction) bool {
	o, ok := other.(Withdraw)
	return ok && t.baseCmd == o.baseCmd && t.Amount.Equal(o.Amount)
}

func (t Withdraw) validate(a *Account) (Transaction, error) {
	var err error
	if t.Amount, err = amount(a, t.Command, t.Amount); err != nil {
		return t, err
	}
	if a.cash.LessThan(t.Amount) {
		return t, fmt.Errorf("cannot withdraw %s, cash balance is %s: %w", t.Amount, a.cash, ErrInsufficientFunds)
	}
	return t, nil
}

// --- Buy ---

// Buy purchases shares at the price quoted by the oracle when it executes.
type Buy struct {
	secCmd
	Quantity Quantity
	Price    Money // Price is the unit price at execution, set by the account.
}

// NewBuy creates a new Buy transaction. The price is resolved when the
// transaction is applied to an account.
func NewBuy(memo, symbol string, quantity Quantity) Buy {
	return Buy{
		secCmd:   secCmd{baseCmd: baseCmd{Command: CmdBuy, Memo: memo}, Symbol: symbol},
		Quantity: quantity,
	}
}

// Cost returns the total amount debited from cash.
func (t Buy) Cost() Money { return t.Price.Mul(t.Quantity) }

func (t Buy) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secCmd)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price.Decimal())
	w.EmbedFrom(t.Cost())
	return w.MarshalJSON()
}

func (t Buy) Equal(other Transaction) bool {
	o, ok := other.(Buy)
	return ok && t.secCmd == o.secCmd && t.Quantity == o.Quantity && t.Price.Equal(o.Price)
}

// validate quotes the symbol and checks the cost against cash. Unknown
// symbols are quoted at zero and therefore always affordable.
func (t Buy) validate(a *Account) (Transaction, error) {
	if !t.Quantity.IsPositive() {
		return t, fmt.Errorf("buy quantity must be positive, got %s: %w", t.Quantity, ErrInvalidQuantity)
	}
	if held := a.holdings[t.Symbol]; t.Quantity > math.MaxInt64-held {
		return t, fmt.Errorf("cannot buy %s %s on top of %s held, the position would overflow: %w", t.Quantity, t.Symbol, held, ErrInvalidQuantity)
	}
	t.Price = a.price(t.Symbol)
	if cost := t.Cost(); a.cash.LessThan(cost) {
		return t, fmt.Errorf("cannot buy %s %s for %s, cash balance is %s: %w", t.Quantity, t.Symbol, cost, a.cash, ErrInsufficientFunds)
	}
	return t, nil
}

// --- Sell ---

// Sell disposes of held shares at the price quoted by the oracle when it executes.
type Sell struct {
	secCmd
	Quantity Quantity
	Price    Money // Price is the unit price at execution, set by the account.
}

// NewSell creates a new Sell transaction. The price is resolved when the
// transaction is applied to an account.
func NewSell(memo, symbol string, quantity Quantity) Sell {
	return Sell{
		secCmd:   secCmd{baseCmd: baseCmd{Command: CmdSell, Memo: memo}, Symbol: symbol},
		Quantity: quantity,
	}
}

// Proceeds returns the total amount credited to cash.
func (t Sell) Proceeds() Money { return t.Price.Mul(t.Quantity) }

func (t Sell) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secCmd)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price.Decimal())
	w.EmbedFrom(t.Proceeds())
	return w.MarshalJSON()
}

func (t Sell) Equal(other Transaction) bool {
	o, ok := other.(Sell)
	return ok && t.secCmd == o.secCmd && t.Quantity == o.Quantity && t.Price.Equal(o.Price)
}

func (t Sell) validate(a *Account) (Transaction, error) {
	if !t.Quantity.IsPositive() {
		return t, fmt.Errorf("sell quantity must be positive, got %s: %w", t.Quantity, ErrInvalidQuantity)
	}
	if held := a.holdings[t.Symbol]; held < t.Quantity {
		return t, fmt.Errorf("cannot sell %s %s, position is only %s: %w", t.Quantity, t.Symbol, held, ErrInsufficientHoldings)
	}
	t.Price = a.price(t.Symbol)
	return t, nil
}
