package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/etnz/brokerage"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Message is a JSON message sent to WebSocket clients.
type Message struct {
	Type        string                `json:"type"`
	AccountID   string                `json:"account_id"`
	Owner       string                `json:"owner,omitempty"`
	Transaction brokerage.Transaction `json:"transaction,omitempty"`
}

// Hub manages WebSocket connections and broadcasts every change of the
// account to all connected clients.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{} // closed when Run returns
	mu         sync.RWMutex
	log        zerolog.Logger

	// a client silent for pongWait is dropped, it is pinged every pingPeriod.
	pongWait   time.Duration
	pingPeriod time.Duration
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithPongWait sets how long a client may stay silent before it is dropped.
// Clients are pinged twice per period.
func WithPongWait(d time.Duration) HubOption {
	return func(h *Hub) {
		h.pongWait = d
		h.pingPeriod = d / 2
	}
}

const writeWait = 10 * time.Second

// NewHub creates a new WebSocket hub.
func NewHub(log zerolog.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		log:        log,
		pongWait:   60 * time.Second,
		pingPeriod: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run is the hub's event loop, it returns when ctx is done. Must be called
// once, in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			WebSocketClients.Set(0)
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			n := len(h.clients)
			h.mu.Unlock()
			WebSocketClients.Set(float64(n))
			h.log.Info().Int("total", n).Msg("ws client connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			WebSocketClients.Set(float64(n))

		case msg := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to all connected clients. It never blocks: the
// message is dropped if the buffer is full.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Msg("ws marshal failed")
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.log.Warn().Str("type", msg.Type).Msg("ws buffer full, message dropped")
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// HandleWS handles WebSocket upgrade requests at GET /api/v1/ws.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("ws upgrade failed")
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	// Read pump: keep connection alive and detect disconnects.
	closed := make(chan struct{})
	go func() {
		defer func() {
			close(closed)
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()
		conn.SetReadDeadline(time.Now().Add(h.pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(h.pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()

	// Ping ticker, clients answer with the pongs that extend the read deadline.
	go func() {
		ticker := time.NewTicker(h.pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-closed:
				return
			case <-h.done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()
}
