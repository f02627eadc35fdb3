package brokerage

import "github.com/shopspring/decimal"

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// NO is a helper for test to create money from const with no currency set
func NO(v float64) Money { return M(v, "") }

// fixed returns an oracle quoting the given prices, any other symbol at zero.
func fixed(prices map[string]float64) Prices {
	p := make(Prices, len(prices))
	for s, v := range prices {
		p[s] = decimal.NewFromFloat(v)
	}
	return p
}
