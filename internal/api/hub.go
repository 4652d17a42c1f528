package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/sadopc/devtrack/internal/store"
)

// Event is the envelope written to websocket clients.
type Event struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Payload store.Activity `json:"payload"`
}

// Hub fans activities out to every connected websocket client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: map[*websocket.Conn]struct{}{},
		logger:  logger.With("component", "ws"),
	}
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket accept", "error", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("client connected", "remote", r.RemoteAddr)

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()

	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish writes a to every client. Slow clients are skipped after 500ms.
func (h *Hub) Publish(a store.Activity) {
	msg, err := json.Marshal(Event{ID: uuid.NewString(), Type: "activity", Payload: a})
	if err != nil {
		h.logger.Error("encode event", "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		if err := c.Write(ctx, websocket.MessageText, msg); err != nil {
			h.logger.Debug("write event", "error", err)
		}
		cancel()
	}
}
