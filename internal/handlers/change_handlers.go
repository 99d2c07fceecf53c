package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Attacher takes ownership of an upgraded websocket connection.
type Attacher interface {
	Attach(conn *websocket.Conn)
}

// ChangesHandler serves the websocket change feed
type ChangesHandler struct {
	hub      Attacher
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewChangesHandler creates a new change feed handler
func NewChangesHandler(hub Attacher, log zerolog.Logger) *ChangesHandler {
	return &ChangesHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Same policy as the CORS handler: any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Subscribe upgrades the connection and streams change events to it
// GET /api/changes
func (h *ChangesHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.hub.Attach(conn)
}
