package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/etnz/brokerage"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type testEnv struct {
	server  *Server
	hub     *Hub
	ts      *httptest.Server
	stopHub context.CancelFunc
}

func newTestEnv(t *testing.T, opts ...HubOption) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop(), opts...)
	go hub.Run(ctx)

	oracle := brokerage.Prices{
		"AAPL":  decimal.NewFromInt(150),
		"TSLA":  decimal.NewFromInt(800),
		"GOOGL": decimal.NewFromInt(2800),
	}
	s := New("alice", "USD", oracle, hub, zerolog.Nop())
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return &testEnv{server: s, hub: hub, ts: ts, stopHub: cancel}
}

// amount is the JSON form of a money value.
type amount struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

type statement struct {
	Owner     string `json:"owner"`
	Currency  string `json:"currency"`
	Cash      amount `json:"cash"`
	Deposits  amount `json:"deposits"`
	Positions []struct {
		Symbol   string `json:"symbol"`
		Quantity int64  `json:"quantity"`
		Value    amount `json:"value"`
	} `json:"positions"`
	Value        amount `json:"value"`
	ProfitOrLoss amount `json:"profit_or_loss"`
	Transactions int    `json:"transactions"`
}

type outcome struct {
	OK          bool           `json:"ok"`
	Reason      string         `json:"reason"`
	Transaction map[string]any `json:"transaction"`
	Statement   statement      `json:"statement"`
}

func (e *testEnv) post(t *testing.T, path, body string) (int, []byte) {
	t.Helper()
	resp, err := http.Post(e.ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	return resp.StatusCode, buf.Bytes()
}

func (e *testEnv) get(t *testing.T, path string, v any) int {
	t.Helper()
	resp, err := http.Get(e.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("GET %s: decode: %v", path, err)
		}
	}
	return resp.StatusCode
}

func (e *testEnv) transact(t *testing.T, path, body string) outcome {
	t.Helper()
	status, data := e.post(t, path, body)
	if status != http.StatusOK {
		t.Fatalf("POST %s %s: status %d: %s", path, body, status, data)
	}
	var out outcome
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("POST %s: decode %s: %v", path, data, err)
	}
	return out
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	var got map[string]string
	if status := e.get(t, "/health", &got); status != http.StatusOK {
		t.Fatalf("GET /health status = %d, want 200", status)
	}
	if got["status"] != "ok" {
		t.Errorf("GET /health = %v, want status ok", got)
	}
}

func TestTradingScenario(t *testing.T) {
	e := newTestEnv(t)

	out := e.transact(t, "/api/v1/deposit", `{"amount": 10000}`)
	if !out.OK {
		t.Fatalf("deposit rejected: %s", out.Reason)
	}
	if out.Transaction["command"] != "deposit" {
		t.Errorf("deposit transaction = %v", out.Transaction)
	}

	out = e.transact(t, "/api/v1/buy", `{"symbol": "AAPL", "quantity": 20, "memo": "first"}`)
	if !out.OK {
		t.Fatalf("buy rejected: %s", out.Reason)
	}
	if got, want := out.Transaction["price"], 150.0; got != want {
		t.Errorf("buy price = %v, want %v", got, want)
	}
	if got, want := out.Statement.Cash.Amount, 7000.0; got != want {
		t.Errorf("cash after buy = %v, want %v", got, want)
	}

	out = e.transact(t, "/api/v1/withdraw", `{"amount": "500"}`)
	if !out.OK {
		t.Fatalf("withdraw rejected: %s", out.Reason)
	}

	var st statement
	e.get(t, "/api/v1/account", &st)
	if st.Owner != "alice" || st.Currency != "USD" {
		t.Errorf("statement owner, currency = %q, %q", st.Owner, st.Currency)
	}
	want := map[string]float64{"cash": 6500, "value": 9500, "pnl": -500, "deposits": 10000}
	got := map[string]float64{"cash": st.Cash.Amount, "value": st.Value.Amount, "pnl": st.ProfitOrLoss.Amount, "deposits": st.Deposits.Amount}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("statement mismatch (-want +got):\n%s", diff)
	}

	var value, pnl struct {
		Amount amount `json:"amount"`
	}
	e.get(t, "/api/v1/value", &value)
	e.get(t, "/api/v1/pnl", &pnl)
	if value.Amount.Amount != 9500 || pnl.Amount.Amount != -500 {
		t.Errorf("value, pnl = %v, %v, want 9500, -500", value.Amount.Amount, pnl.Amount.Amount)
	}

	var holdings map[string]int64
	e.get(t, "/api/v1/holdings", &holdings)
	if diff := cmp.Diff(map[string]int64{"AAPL": 20}, holdings); diff != "" {
		t.Errorf("holdings mismatch (-want +got):\n%s", diff)
	}

	var txs []map[string]any
	e.get(t, "/api/v1/transactions", &txs)
	var commands []string
	for _, tx := range txs {
		commands = append(commands, tx["command"].(string))
	}
	if diff := cmp.Diff([]string{"deposit", "buy", "withdraw"}, commands); diff != "" {
		t.Errorf("journal mismatch (-want +got):\n%s", diff)
	}
}

func TestRejections(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		reason string
	}{
		{"negative deposit", "/api/v1/deposit", `{"amount": -1}`, "invalid_amount"},
		{"foreign currency", "/api/v1/deposit", `{"amount": 10, "currency": "EUR"}`, "invalid_amount"},
		{"overdraw", "/api/v1/withdraw", `{"amount": 1001}`, "insufficient_funds"},
		{"zero quantity", "/api/v1/buy", `{"symbol": "AAPL", "quantity": 0}`, "invalid_quantity"},
		{"too expensive", "/api/v1/buy", `{"symbol": "GOOGL", "quantity": 1}`, "insufficient_funds"},
		{"never bought", "/api/v1/sell", `{"symbol": "TSLA", "quantity": 1}`, "insufficient_holdings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			e.transact(t, "/api/v1/deposit", `{"amount": 1000}`)

			out := e.transact(t, tt.path, tt.body)
			if out.OK {
				t.Fatalf("POST %s %s accepted, want rejected", tt.path, tt.body)
			}
			if out.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", out.Reason, tt.reason)
			}
			if out.Transaction != nil {
				t.Errorf("rejected transaction reported: %v", out.Transaction)
			}
			if out.Statement.Cash.Amount != 1000 || out.Statement.Transactions != 1 {
				t.Errorf("account changed by a rejection: %+v", out.Statement)
			}
		})
	}
}

func TestBadRequests(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"not json", "/api/v1/deposit", `deposit 10`},
		{"unknown field", "/api/v1/deposit", `{"amount": 10, "amout": 10}`},
		{"bad currency", "/api/v1/withdraw", `{"amount": 10, "currency": "XXXX"}`},
		{"missing symbol", "/api/v1/buy", `{"quantity": 1}`},
		{"fractional quantity", "/api/v1/sell", `{"symbol": "AAPL", "quantity": 1.5}`},
		{"missing owner", "/api/v1/account", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			status, data := e.post(t, tt.path, tt.body)
			if status != http.StatusBadRequest {
				t.Errorf("POST %s %s status = %d, want 400 (%s)", tt.path, tt.body, status, data)
			}
			var body map[string]string
			if err := json.Unmarshal(data, &body); err != nil || body["error"] == "" {
				t.Errorf("POST %s %s body = %s, want an error message", tt.path, tt.body, data)
			}
		})
	}
}

func TestOpenAccount(t *testing.T) {
	e := newTestEnv(t)
	e.transact(t, "/api/v1/deposit", `{"amount": 1000}`)
	old := e.server.Account()

	status, data := e.post(t, "/api/v1/account", `{"owner": "bob"}`)
	if status != http.StatusCreated {
		t.Fatalf("POST /api/v1/account status = %d: %s", status, data)
	}
	var st statement
	if err := json.Unmarshal(data, &st); err != nil {
		t.Fatal(err)
	}
	if st.Owner != "bob" || st.Cash.Amount != 0 || st.Transactions != 0 {
		t.Errorf("new account statement = %+v, want empty account of bob", st)
	}
	if e.server.Account().ID() == old.ID() {
		t.Error("account was not replaced")
	}
	if got := old.Cash(); !got.Equal(brokerage.M(1000, "USD")) {
		t.Errorf("previous account cash = %v, want untouched", got)
	}
}

func TestPrices(t *testing.T) {
	e := newTestEnv(t)
	var got []struct {
		Symbol string `json:"symbol"`
		Price  amount `json:"price"`
	}
	e.get(t, "/api/v1/prices", &got)
	var symbols []string
	for _, p := range got {
		symbols = append(symbols, p.Symbol)
	}
	if diff := cmp.Diff([]string{"AAPL", "GOOGL", "TSLA"}, symbols); diff != "" {
		t.Errorf("prices mismatch (-want +got):\n%s", diff)
	}
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitClients waits until the hub counts n clients.
func (e *testEnv) waitClients(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for e.hub.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("hub clients = %d, want %d", e.hub.Clients(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocketBroadcast(t *testing.T) {
	e := newTestEnv(t)
	conn := e.dial(t)
	e.waitClients(t, 1)

	e.transact(t, "/api/v1/deposit", `{"amount": 250, "memo": "salary"}`)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type        string         `json:"type"`
		AccountID   string         `json:"account_id"`
		Transaction map[string]any `json:"transaction"`
	}
	// skip the account notification that may race with the registration.
	for msg.Type != "transaction" {
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read websocket message: %v", err)
		}
	}
	if msg.AccountID != e.server.Account().ID().String() {
		t.Errorf("message account = %q, want %q", msg.AccountID, e.server.Account().ID())
	}
	want := map[string]any{"command": "deposit", "memo": "salary", "currency": "USD", "amount": 250.0}
	if diff := cmp.Diff(want, msg.Transaction); diff != "" {
		t.Errorf("broadcast transaction mismatch (-want +got):\n%s", diff)
	}
}

func TestWebSocketKeepsIdleClients(t *testing.T) {
	e := newTestEnv(t, WithPongWait(200*time.Millisecond))
	conn := e.dial(t)
	e.waitClients(t, 1)

	// reading answers the server pings, the client never writes.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	time.Sleep(time.Second)
	if got := e.hub.Clients(); got != 1 {
		t.Errorf("hub clients after %v idle = %d, want 1", time.Second, got)
	}
}

func TestWebSocketDropsUnresponsiveClients(t *testing.T) {
	e := newTestEnv(t, WithPongWait(200*time.Millisecond))
	e.dial(t) // never reads, so pings are never answered.
	e.waitClients(t, 1)
	e.waitClients(t, 0)
}

func TestWebSocketAfterHubStopped(t *testing.T) {
	e := newTestEnv(t)
	e.stopHub()
	<-e.hub.done

	conn := e.dial(t)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if err == nil {
		t.Fatal("ReadMessage() succeeded, want the connection closed")
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		t.Fatalf("ReadMessage() = %v, want the connection closed by the server", err)
	}
	if got := e.hub.Clients(); got != 0 {
		t.Errorf("hub clients = %d, want 0", got)
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatal(err)
	}
	return m.GetCounter().GetValue()
}

func TestMetricsMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metricsMiddleware)
	r.Get("/teapot", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/hijack", func(w http.ResponseWriter, _ *http.Request) {
		if _, ok := w.(http.Hijacker); !ok {
			http.Error(w, "not a hijacker", http.StatusInternalServerError)
		}
	})
	ts := httptest.NewServer(r)
	defer ts.Close()

	teapots := HTTPRequestsTotal.WithLabelValues("GET", "/teapot", "418")
	before := counterValue(t, teapots)
	resp, err := http.Get(ts.URL + "/teapot")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := counterValue(t, teapots) - before; got != 1 {
		t.Errorf("teapot requests counted = %v, want 1", got)
	}

	resp, err = http.Get(ts.URL + "/hijack")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /hijack status = %d, want the writer to support hijacking", resp.StatusCode)
	}
}
