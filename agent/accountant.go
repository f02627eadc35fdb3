package agent

import (
	"context"
	"fmt"
	"math"

	"github.com/etnz/brokerage"
	"github.com/etnz/brokerage/renderer"
	"google.golang.org/genai"
)

// creates the facilitator
func newFacilitator(model string, experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user is operating a simulated trading account: cash, deposits, and shares bought and
			sold at fixed prices. Never pretend a transaction happened, ask the experts to perform it
			and report their outcome. Before any transaction the user did not explicitly ask for,
			seek for a clear user approval.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewAccountant creates the expert in charge of account a, trading at prices.
func NewAccountant(a *brokerage.Account, prices brokerage.Prices, model string) *Expert {
	lib := Accounting(a, prices)
	return &Expert{
		Name: "Accountant",
		Description: `This is the Accountant, in charge of reading and operating the user's trading account.
		Ask the Accountant for the cash balance, holdings, journal, value and profit or loss, or to
		deposit, withdraw, buy and sell on behalf of the user.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an accountant in charge of the user's trading account.
				You know how to use the Tools to read the account and to record transactions.
				Transactions can be rejected, always report the reason of a rejection.

				Amounts are in the account currency. Shares are traded in whole quantities at the
				listed prices; a symbol that is not listed trades at zero.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Accounting returns the functions operating account a, trading at prices.
func Accounting(a *brokerage.Account, prices brokerage.Prices) []Function {
	report := func(name, description string, output func() string) Function {
		return &Func{
			Decl: &genai.FunctionDeclaration{
				Name:        name,
				Description: description,
				Response: &genai.Schema{
					Type:        genai.TypeString,
					Description: "A markdown-formatted report.",
				},
			},
			Func: func(_ context.Context, id string, _ map[string]any) *genai.FunctionResponse {
				return success(id, name, map[string]any{"output": output()})
			},
		}
	}
	cash := func(name, description string, newTx func(memo string, m brokerage.Money) brokerage.Transaction) Function {
		return &Func{
			Decl: &genai.FunctionDeclaration{
				Name:        name,
				Description: description,
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"amount": {Type: genai.TypeNumber, Description: "The amount in the account currency, e.g. 1000.50"},
						"memo":   memoSchema,
					},
					Required: []string{"amount"},
				},
				Response: outcomeSchema,
			},
			Func: func(_ context.Context, id string, args map[string]any) *genai.FunctionResponse {
				m, err := amountArg(args, a.Currency())
				if err != nil {
					return failure(id, name, err)
				}
				return success(id, name, apply(a, newTx(memoArg(args), m)))
			},
		}
	}
	trade := func(name, description string, newTx func(memo, symbol string, q brokerage.Quantity) brokerage.Transaction) Function {
		return &Func{
			Decl: &genai.FunctionDeclaration{
				Name:        name,
				Description: description,
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"symbol":   {Type: genai.TypeString, Description: "The ticker symbol, e.g. AAPL"},
						"quantity": {Type: genai.TypeInteger, Description: "The whole number of shares"},
						"memo":     memoSchema,
					},
					Required: []string{"symbol", "quantity"},
				},
				Response: outcomeSchema,
			},
			Func: func(_ context.Context, id string, args map[string]any) *genai.FunctionResponse {
				symbol, _ := args["symbol"].(string)
				if symbol == "" {
					return failure(id, name, fmt.Errorf("missing symbol"))
				}
				q, err := quantityArg(args)
				if err != nil {
					return failure(id, name, err)
				}
				return success(id, name, apply(a, newTx(memoArg(args), symbol, q)))
			},
		}
	}

	return []Function{
		report("statement", "The account statement: cash, deposits, positions valued at current prices, total value and profit or loss.",
			func() string { return renderer.Statement(a.Statement()) }),
		report("holdings", "The number of shares held per symbol.",
			func() string { return renderer.Holdings(a.Holdings()) }),
		report("transactions", "The journal of all recorded transactions, oldest first.",
			func() string { return renderer.Transactions(a.Transactions()) }),
		report("prices", "The prices shares trade at.",
			func() string { return renderer.Prices(prices, a.Currency()) }),
		cash("deposit", "Deposit cash into the account.",
			func(memo string, m brokerage.Money) brokerage.Transaction { return brokerage.NewDeposit(memo, m) }),
		cash("withdraw", "Withdraw cash from the account, up to the cash balance.",
			func(memo string, m brokerage.Money) brokerage.Transaction { return brokerage.NewWithdraw(memo, m) }),
		trade("buy", "Buy shares at the current price, paid from the cash balance.",
			func(memo, symbol string, q brokerage.Quantity) brokerage.Transaction {
				return brokerage.NewBuy(memo, symbol, q)
			}),
		trade("sell", "Sell held shares at the current price, credited to the cash balance.",
			func(memo, symbol string, q brokerage.Quantity) brokerage.Transaction {
				return brokerage.NewSell(memo, symbol, q)
			}),
	}
}

var memoSchema = &genai.Schema{Type: genai.TypeString, Description: "An optional note recorded with the transaction."}

var outcomeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"ok":          {Type: genai.TypeBoolean, Description: "Whether the transaction was recorded."},
		"reason":      {Type: genai.TypeString, Description: "Why the transaction was rejected."},
		"transaction": {Type: genai.TypeString, Description: "The transaction as recorded."},
		"statement":   {Type: genai.TypeString, Description: "The account statement after the transaction, in markdown."},
	},
}

// apply applies tx to a and returns the outcome as a function response.
func apply(a *brokerage.Account, tx brokerage.Transaction) map[string]any {
	recorded, err := a.Apply(tx)
	out := map[string]any{"ok": err == nil}
	if err != nil {
		out["reason"] = brokerage.Reason(err)
	} else {
		out["transaction"] = renderer.Transaction(recorded)
	}
	out["statement"] = renderer.Statement(a.Statement())
	return out
}

func memoArg(args map[string]any) string {
	memo, _ := args["memo"].(string)
	return memo
}

func amountArg(args map[string]any, currency string) (brokerage.Money, error) {
	switch v := args["amount"].(type) {
	case float64:
		return brokerage.M(v, currency), nil
	case string:
		return brokerage.ParseMoney(v, currency)
	default:
		return brokerage.Money{}, fmt.Errorf("invalid amount, got %T, expected number", v)
	}
}

func quantityArg(args map[string]any) (brokerage.Quantity, error) {
	switch v := args["quantity"].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("quantity must be a whole number, got %v", v)
		}
		return brokerage.Quantity(v), nil
	case string:
		return brokerage.ParseQuantity(v)
	default:
		return 0, fmt.Errorf("invalid quantity, got %T, expected integer", v)
	}
}
