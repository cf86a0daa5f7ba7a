package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"EchoWave/core/events"
	"EchoWave/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is handled by the router middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventsWSHandler upgrades the connection and subscribes it to the activity
// feed.
func (h *APIHandler) EventsWSHandler(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "Events feed not available")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", logger.ErrorField(err))
		return
	}
	events.NewClient(h.hub, conn)
}
