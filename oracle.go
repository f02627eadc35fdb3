package brokerage

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// PriceOracle quotes the current unit price of a symbol.
//
// Implementations must be synchronous and free of side effects, and return a
// zero price for symbols they do not know.
type PriceOracle interface {
	Price(symbol string) decimal.Decimal
}

// OracleFunc adapts a function to the PriceOracle interface.
type OracleFunc func(symbol string) decimal.Decimal

func (f OracleFunc) Price(symbol string) decimal.Decimal { return f(symbol) }

// Prices is a fixed price table. Unknown symbols are quoted at zero.
type Prices map[string]decimal.Decimal

func (p Prices) Price(symbol string) decimal.Decimal {
	// a missing key yields the zero decimal.
	return p[symbol]
}

// Symbols returns the known symbols in alphabetical order.
func (p Prices) Symbols() []string {
	return slices.Sorted(maps.Keys(p))
}

// DefaultPrices returns the reference price table.
func DefaultPrices() Prices {
	return Prices{
		"AAPL":  decimal.NewFromInt(150),
		"TSLA":  decimal.NewFromInt(800),
		"GOOGL": decimal.NewFromInt(2800),
	}
}
