package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// NewMonitorHandler upgrades dashboard connections and registers them with
// the hub. The read loop exists only to observe the close handshake.
func NewMonitorHandler(hub *Hub, logger *zap.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(*http.Request) bool { return true },
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("monitor upgrade failed", zap.Error(err))
			return
		}
		hub.Add(conn)

		go func() {
			defer func() {
				hub.Remove(conn)
				conn.Close()
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
