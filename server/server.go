// Package server exposes a trading account over HTTP.
//
// The server holds a single account at a time. Every transaction appended to
// its journal is counted in the metrics and pushed to WebSocket clients.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/etnz/brokerage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Server serves the account API.
type Server struct {
	mu      sync.RWMutex
	account *brokerage.Account

	oracle   brokerage.PriceOracle
	currency string
	hub      *Hub
	log      zerolog.Logger
	validate *validator.Validate
}

// New creates a server with an empty account for owner. The hub receives every
// transaction appended to the journal; it must be running.
func New(owner, currency string, oracle brokerage.PriceOracle, hub *Hub, log zerolog.Logger) *Server {
	s := &Server{
		oracle:   oracle,
		currency: currency,
		hub:      hub,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	s.open(owner)
	return s
}

// open replaces the current account by an empty one for owner.
func (s *Server) open(owner string) *brokerage.Account {
	var a *brokerage.Account
	a = brokerage.NewAccount(owner, s.oracle,
		brokerage.WithCurrency(s.currency),
		brokerage.WithLogger(s.log),
		brokerage.WithObserver(func(tx brokerage.Transaction) {
			TransactionsTotal.WithLabelValues(string(tx.What())).Inc()
			s.hub.Broadcast(Message{Type: "transaction", AccountID: a.ID().String(), Transaction: tx})
		}),
	)
	s.mu.Lock()
	s.account = a
	s.mu.Unlock()
	s.hub.Broadcast(Message{Type: "account", AccountID: a.ID().String(), Owner: owner})
	return a
}

// Account returns the current account.
func (s *Server) Account() *brokerage.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

// Routes returns the HTTP handler of the API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(metricsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metricsHandler())

	r.Route("/api/v1", func(r chi.Router) {
		// the websocket is long lived, keep it out of the timeout.
		r.Get("/ws", s.hub.HandleWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(10 * time.Second))

			r.Post("/account", s.handleOpen)
			r.Get("/account", s.handleStatement)
			r.Get("/holdings", s.handleHoldings)
			r.Get("/transactions", s.handleTransactions)
			r.Get("/value", s.handleValue)
			r.Get("/pnl", s.handlePnL)
			r.Get("/prices", s.handlePrices)

			r.Post("/deposit", s.handleDeposit)
			r.Post("/withdraw", s.handleWithdraw)
			r.Post("/buy", s.handleBuy)
			r.Post("/sell", s.handleSell)
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// --- requests and responses ---

type openRequest struct {
	Owner string `json:"owner" validate:"required"`
}

type cashRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty" validate:"omitempty,iso4217"`
	Memo     string          `json:"memo,omitempty"`
}

func (r cashRequest) money() brokerage.Money { return brokerage.M(r.Amount, r.Currency) }

type tradeRequest struct {
	Symbol   string             `json:"symbol" validate:"required"`
	Quantity brokerage.Quantity `json:"quantity"`
	Memo     string             `json:"memo,omitempty"`
}

// Outcome is the response to a transaction request. A rejected transaction is
// not an HTTP error: OK is false and Reason tells why.
type Outcome struct {
	OK          bool                  `json:"ok"`
	Reason      string                `json:"reason,omitempty"`
	Transaction brokerage.Transaction `json:"transaction,omitempty"`
	Statement   brokerage.Statement   `json:"statement"`
}

type amountResponse struct {
	Amount brokerage.Money `json:"amount"`
}

type priceEntry struct {
	Symbol string          `json:"symbol"`
	Price  brokerage.Money `json:"price"`
}

// --- handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if !s.decode(w, r, &req) {
		return
	}
	a := s.open(req.Owner)
	AccountsCreated.Inc()
	s.log.Info().Str("owner", req.Owner).Str("account", a.ID().String()).Msg("account opened")
	writeJSON(w, http.StatusCreated, a.Statement())
}

func (s *Server) handleStatement(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Account().Statement())
}

func (s *Server) handleHoldings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Account().Holdings())
}

func (s *Server) handleTransactions(w http.ResponseWriter, _ *http.Request) {
	txs := s.Account().Transactions()
	if txs == nil {
		txs = []brokerage.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleValue(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, amountResponse{Amount: s.Account().Value()})
}

func (s *Server) handlePnL(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, amountResponse{Amount: s.Account().ProfitOrLoss()})
}

func (s *Server) handlePrices(w http.ResponseWriter, _ *http.Request) {
	entries := []priceEntry{}
	if p, ok := s.oracle.(brokerage.Prices); ok {
		for _, symbol := range p.Symbols() {
			entries = append(entries, priceEntry{Symbol: symbol, Price: brokerage.M(p[symbol], s.currency)})
		}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req cashRequest
	if s.decode(w, r, &req) {
		s.apply(w, brokerage.NewDeposit(req.Memo, req.money()))
	}
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req cashRequest
	if s.decode(w, r, &req) {
		s.apply(w, brokerage.NewWithdraw(req.Memo, req.money()))
	}
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if s.decode(w, r, &req) {
		s.apply(w, brokerage.NewBuy(req.Memo, req.Symbol, req.Quantity))
	}
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if s.decode(w, r, &req) {
		s.apply(w, brokerage.NewSell(req.Memo, req.Symbol, req.Quantity))
	}
}

// apply applies tx to the current account and writes the outcome.
func (s *Server) apply(w http.ResponseWriter, tx brokerage.Transaction) {
	a := s.Account()
	recorded, err := a.Apply(tx)
	out := Outcome{OK: err == nil}
	if err != nil {
		reason := brokerage.Reason(err)
		if reason == "" {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out.Reason = reason
		RejectionsTotal.WithLabelValues(string(tx.What()), reason).Inc()
		s.log.Info().Str("command", string(tx.What())).Str("reason", reason).Msg("transaction rejected")
	} else {
		out.Transaction = recorded
	}
	out.Statement = a.Statement()
	writeJSON(w, http.StatusOK, out)
}

// decode reads the JSON body of r into v and validates it. It writes a 400
// response and reports false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			err = fmt.Errorf("invalid field %s: failed on %q", verrs[0].Field(), verrs[0].Tag())
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
