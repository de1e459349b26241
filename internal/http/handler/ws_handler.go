package handler

import (
	"net/http"

	"github.com/your-org/digit-pulse-bot/internal/notifier"
)

// WSHandler upgrades client connections onto the notification hub.
type WSHandler struct {
	hub *notifier.Hub
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *notifier.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// ServeWS upgrades the request and attaches the client to the hub.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	h.hub.ServeWS(w, r, userID(r))
}
