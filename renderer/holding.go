package renderer

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/brokerage"
)

// Holdings renders the shares held per symbol, sorted by symbol.
func Holdings(h map[string]brokerage.Quantity) string {
	if len(h) == 0 {
		return "No holdings\n"
	}
	var b strings.Builder
	fmt.Fprintln(&b, "| Symbol | Quantity |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, s := range slices.Sorted(maps.Keys(h)) {
		fmt.Fprintf(&b, "| %s | %s |\n", s, h[s])
	}
	return b.String()
}

// Prices renders a price table in the given currency.
func Prices(p brokerage.Prices, currency string) string {
	if len(p) == 0 {
		return "No prices\n"
	}
	var b strings.Builder
	fmt.Fprintln(&b, "| Symbol | Price |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, s := range p.Symbols() {
		fmt.Fprintf(&b, "| %s | %s |\n", s, brokerage.M(p.Price(s), currency))
	}
	return b.String()
}
