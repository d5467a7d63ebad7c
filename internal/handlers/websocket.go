package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/client"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS layer for API routes; the dashboard is
	// served from a static host on another origin
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the connection and registers a push client
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "push updates disabled", nil)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	clientID := uuid.New().String()
	c := client.NewClient(clientID, conn, h.hub)
	h.hub.Register(c)

	// Pumps use the handler context, not the request context
	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)

	log.Debug().Str("client_id", clientID).Msg("websocket connection established")
}
