package cmd

import (
	"github.com/etnz/brokerage/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the top-level command line for shell completion.
func Completion() *complete.Command {
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"shell":    {},
			"run":      {Args: predict.Or(predict.Files("*.tsim"), predict.Files("*.txt"))},
			"serve":    {Flags: map[string]complete.Predictor{"addr": predict.Something}},
			"prices":   {},
			"topic":    {Args: predict.Set(append(docs.Names(), "*")), Flags: map[string]complete.Predictor{"list": predict.Nothing}},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
		Flags: map[string]complete.Predictor{
			"config":      predict.Files("*.yaml"),
			"owner":       predict.Something,
			"currency":    predict.Set{"USD", "EUR", "GBP", "JPY", "CHF"},
			"prices":      predict.Or(predict.Files("*.yaml"), predict.Files("*.json")),
			"prices-path": predict.Something,
			"v":           predict.Nothing,
			"raw":         predict.Nothing,
		},
	}
}
