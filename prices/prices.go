// Package prices loads static price tables used as the account price oracle.
//
// Two formats are supported:
//
//   - YAML: a mapping from symbol to unit price.
//
//     AAPL: 150
//     TSLA: 800
//
//   - JSON: any document, a JSONPath expression selects the object mapping
//     symbols to prices, e.g. "$.quotes" in {"quotes": {"AAPL": 150}}.
package prices

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/brokerage"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultPath selects the whole JSON document.
const DefaultPath = "$"

// ParseYAML reads a YAML mapping of symbol to price.
func ParseYAML(r io.Reader) (brokerage.Prices, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return brokerage.Prices{}, nil
		}
		return nil, fmt.Errorf("could not decode yaml prices: %w", err)
	}
	return fromMap(raw)
}

// ParseJSON reads a JSON document and extracts the symbol to price object
// selected by path. An empty path selects the whole document.
func ParseJSON(r io.Reader, path string) (brokerage.Prices, error) {
	if path == "" {
		path = DefaultPath
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("could not decode json prices: %w", err)
	}

	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	// jsonpath returns a list for wildcard and filter expressions: keep the first match.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	table, ok := jval.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%q does not select an object of prices but %T", path, jval)
	}
	return fromMap(table)
}

// Open loads a price file, the format is chosen from the extension: .json
// uses ParseJSON with path, anything else is read as YAML.
func Open(file, path string) (brokerage.Prices, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("could not open prices file %q: %w", file, err)
	}
	defer f.Close()

	var p brokerage.Prices
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		p, err = ParseJSON(f, path)
	default:
		p, err = ParseYAML(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return p, nil
}

// FromFloats converts an inline table, as found in configuration files.
func FromFloats(table map[string]float64) (brokerage.Prices, error) {
	raw := make(map[string]any, len(table))
	for s, v := range table {
		raw[s] = v
	}
	return fromMap(raw)
}

func fromMap(raw map[string]any) (brokerage.Prices, error) {
	p := make(brokerage.Prices, len(raw))
	var errs []error
	for symbol, v := range raw {
		if strings.TrimSpace(symbol) == "" {
			errs = append(errs, errors.New("empty symbol"))
			continue
		}
		d, err := toDecimal(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("price of %s: %w", symbol, err))
			continue
		}
		if d.IsNegative() {
			errs = append(errs, fmt.Errorf("price of %s must not be negative, got %s", symbol, d))
			continue
		}
		p[symbol] = d
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return p, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case json.Number:
		return decimal.NewFromString(t.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(t))
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case uint64:
		return decimal.NewFromUint64(t), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, fmt.Errorf("not a finite number: %v", t)
		}
		return decimal.NewFromFloat(t), nil
	default:
		return decimal.Zero, fmt.Errorf("not a number: %v", v)
	}
}
