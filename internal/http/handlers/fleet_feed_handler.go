package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"kickfleet/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The feed is served to the same origin as the dashboard; checks sit
	// in the outer gateway.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewFleetFeedHandler returns GET /ws/fleet handler upgrading subscribers
// onto the live telemetry feed.
func NewFleetFeedHandler(hub *ws.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("fleet feed upgrade failed", zap.Error(err))
			return
		}

		client := ws.NewClient(conn, logger, hub.Remove)
		hub.Add(client)
		client.Start(r.Context())
	}
}
