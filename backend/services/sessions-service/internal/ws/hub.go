package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub fans session lifecycle events out to connected monitor clients.
// Writes are serialized under the hub lock; clients that fail a write are
// dropped.
type Hub struct {
	mu           sync.Mutex
	conns        map[*websocket.Conn]struct{}
	pingInterval time.Duration
	logger       *zap.Logger
}

// NewHub builds the monitor hub.
func NewHub(pingInterval time.Duration, logger *zap.Logger) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Hub{
		conns:        make(map[*websocket.Conn]struct{}),
		pingInterval: pingInterval,
		logger:       logger,
	}
}

// Add registers new connection.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

// Remove drops connection.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// Broadcast sends the event to every connected client.
func (h *Hub) Broadcast(event interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Debug("dropping monitor client", zap.Error(err))
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// Start begins ping loop to keep connections alive until ctx is cancelled.
func (h *Hub) Start(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.ping()
		}
	}
}

func (h *Hub) ping() {
	h.mu.Lock()
	defer h.mu.Unlock()
	deadline := time.Now().Add(5 * time.Second)
	for conn := range h.conns {
		if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
	}
	h.conns = make(map[*websocket.Conn]struct{})
}
