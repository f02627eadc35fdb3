package brokerage

import "errors"

// Rejection reasons. Every error returned by Account.Apply wraps exactly one
// of them.
var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
)

// Reason returns a stable machine readable code for a rejection error, or ""
// if err is nil or not a rejection.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrInsufficientHoldings):
		return "insufficient_holdings"
	default:
		return ""
	}
}
