// Package brokerage models a single trading account: a cash balance, share
// holdings and an append-only journal of the transactions that produced them.
//
// An Account is created with NewAccount and is bound to a PriceOracle, the
// external collaborator that quotes a unit price for a symbol. Every operation
// (Deposit, Withdraw, Buy, Sell) is validated against the current state and
// either applied entirely or rejected without any effect. Rejections carry one
// of the sentinel errors ErrInvalidAmount, ErrInsufficientFunds,
// ErrInvalidQuantity or ErrInsufficientHoldings when going through Apply.
//
// Valuation queries (Value, ProfitOrLoss, Statement) re-query the oracle on
// every call, so they always reflect current prices.
//
// The journal can be exported as JSONL, one canonical JSON object per line, with
// EncodeJournal. Nothing is ever read back: accounts live in memory only.
//
// This package is the foundation of the `tsim` command line tool and of its
// HTTP API.
package brokerage
