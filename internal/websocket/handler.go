package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// Handle returns an HTTP handler that upgrades connections to WebSocket and
// runs them as Hub clients. It sits behind the auth middleware, so only
// logged-in users reach it.
func Handle(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn)
		client.Run(r.Context())
	}
}
