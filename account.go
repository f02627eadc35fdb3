package brokerage

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency of accounts created without WithCurrency.
const DefaultCurrency = "USD"

// Account is a single trading account.
//
// All methods are safe for concurrent use; operations are serialized.
type Account struct {
	mu sync.Mutex

	id       uuid.UUID
	owner    string
	currency string

	cash     Money
	deposits Money
	holdings map[string]Quantity // only positive quantities
	journal  []Transaction

	oracle    PriceOracle
	log       zerolog.Logger
	observers []func(Transaction)
}

// Option configures an Account at creation.
type Option func(*Account)

// WithCurrency sets the ISO 4217 currency of the account.
func WithCurrency(code string) Option {
	return func(a *Account) { a.currency = code }
}

// WithLogger sets the logger used to trace applied and rejected transactions.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Account) { a.log = l }
}

// WithObserver registers a function called with every transaction appended to
// the journal. It runs while the account is locked and must not call the
// account back.
func WithObserver(f func(Transaction)) Option {
	return func(a *Account) { a.observers = append(a.observers, f) }
}

// NewAccount creates an empty account for owner, quoting prices with oracle.
// A nil oracle quotes from DefaultPrices.
func NewAccount(owner string, oracle PriceOracle, opts ...Option) *Account {
	if oracle == nil {
		oracle = DefaultPrices()
	}
	a := &Account{
		id:       uuid.New(),
		owner:    owner,
		currency: DefaultCurrency,
		holdings: make(map[string]Quantity),
		oracle:   oracle,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.cash = M(0, a.currency)
	a.deposits = M(0, a.currency)
	a.log = a.log.With().Str("account", a.id.String()).Logger()
	return a
}

// ID identifies the account, a new one is drawn for every account.
func (a *Account) ID() uuid.UUID { return a.id }

// Owner returns the name of the account holder.
func (a *Account) Owner() string { return a.owner }

// Currency returns the ISO 4217 code every amount of the account is in.
func (a *Account) Currency() string { return a.currency }

// Apply validates tx against the current state and, if valid, applies it and
// appends it to the journal. It returns the transaction as recorded, Buy and
// Sell carrying their execution price.
//
// A rejected transaction leaves the account untouched and the error wraps one
// of ErrInvalidAmount, ErrInsufficientFunds, ErrInvalidQuantity or
// ErrInsufficientHoldings.
func (a *Account) Apply(tx Transaction) (Transaction, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.apply(tx)
}

func (a *Account) apply(tx Transaction) (Transaction, error) {
	if tx == nil {
		return nil, fmt.Errorf("nil transaction: %w", ErrInvalidAmount)
	}
	tx, err := tx.validate(a)
	if err != nil {
		a.log.Debug().Str("command", string(tx.What())).Err(err).Msg("rejected")
		return tx, err
	}

	switch v := tx.(type) {
	case Deposit:
		a.cash = a.cash.Add(v.Amount)
		a.deposits = a.deposits.Add(v.Amount)
	case Withdraw:
		a.cash = a.cash.Sub(v.Amount)
	case Buy:
		a.cash = a.cash.Sub(v.Cost())
		a.holdings[v.Symbol] += v.Quantity
	case Sell:
		a.cash = a.cash.Add(v.Proceeds())
		a.holdings[v.Symbol] -= v.Quantity
		if a.holdings[v.Symbol] == 0 {
			delete(a.holdings, v.Symbol)
		}
	}
	a.journal = append(a.journal, tx)
	a.log.Debug().Str("command", string(tx.What())).Str("cash", a.cash.String()).Msg("applied")

	for _, f := range a.observers {
		f(tx)
	}
	return tx, nil
}

// Deposit adds amount to cash and to the cumulative deposits. A non positive
// amount is silently ignored.
func (a *Account) Deposit(amount Money) {
	a.Apply(NewDeposit("", amount))
}

// Withdraw removes amount from cash. It reports false, and does nothing, if
// amount is not positive or exceeds the cash balance.
func (a *Account) Withdraw(amount Money) bool {
	_, err := a.Apply(NewWithdraw("", amount))
	return err == nil
}

// Buy purchases quantity shares of symbol at the oracle price. It reports
// false, and does nothing, if quantity is not positive or the cost exceeds the
// cash balance.
func (a *Account) Buy(symbol string, quantity Quantity) bool {
	_, err := a.Apply(NewBuy("", symbol, quantity))
	return err == nil
}

// Sell disposes of quantity shares of symbol at the oracle price. It reports
// false, and does nothing, if quantity is not positive or exceeds the shares
// held.
func (a *Account) Sell(symbol string, quantity Quantity) bool {
	_, err := a.Apply(NewSell("", symbol, quantity))
	return err == nil
}

// price quotes symbol in the account currency. Negative quotes are treated as
// zero so that no trade can drive cash below zero.
func (a *Account) price(symbol string) Money {
	p := a.oracle.Price(symbol)
	if p.IsNegative() {
		p = decimal.Zero
	}
	return M(p, a.currency)
}

// Cash returns the current cash balance.
func (a *Account) Cash() Money {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cash
}

// Deposits returns the sum of all successful deposits.
func (a *Account) Deposits() Money {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deposits
}

// Value returns the cash balance plus the market value of all holdings at
// current oracle prices.
func (a *Account) Value() Money {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value()
}

func (a *Account) value() Money {
	total := a.cash
	for symbol, q := range a.holdings {
		total = total.Add(a.price(symbol).Mul(q))
	}
	return total
}

// ProfitOrLoss returns Value minus Deposits.
func (a *Account) ProfitOrLoss() Money {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value().Sub(a.deposits)
}

// Holdings returns a copy of the shares held per symbol.
func (a *Account) Holdings() map[string]Quantity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return maps.Clone(a.holdings)
}

// Transactions returns a copy of the journal in the order it was recorded.
func (a *Account) Transactions() []Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.journal)
}

// Position is a holding valued at the current price.
type Position struct {
	Symbol   string   `json:"symbol"`
	Quantity Quantity `json:"quantity"`
	Price    Money    `json:"price"`
	Value    Money    `json:"value"`
}

// Statement is a consistent snapshot of an account.
type Statement struct {
	ID           uuid.UUID  `json:"id"`
	Owner        string     `json:"owner"`
	Currency     string     `json:"currency"`
	Cash         Money      `json:"cash"`
	Deposits     Money      `json:"deposits"`
	Positions    []Position `json:"positions"`
	Value        Money      `json:"value"`
	ProfitOrLoss Money      `json:"profit_or_loss"`
	Transactions int        `json:"transactions"`
}

// Statement returns a snapshot of the account. Positions are sorted by symbol
// and each symbol is quoted exactly once.
func (a *Account) Statement() Statement {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Statement{
		ID:           a.id,
		Owner:        a.owner,
		Currency:     a.currency,
		Cash:         a.cash,
		Deposits:     a.deposits,
		Positions:    make([]Position, 0, len(a.holdings)),
		Value:        a.cash,
		Transactions: len(a.journal),
	}
	for _, symbol := range slices.Sorted(maps.Keys(a.holdings)) {
		q := a.holdings[symbol]
		price := a.price(symbol)
		p := Position{Symbol: symbol, Quantity: q, Price: price, Value: price.Mul(q)}
		s.Positions = append(s.Positions, p)
		s.Value = s.Value.Add(p.Value)
	}
	s.ProfitOrLoss = s.Value.Sub(a.deposits)
	return s
}
