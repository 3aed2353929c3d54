package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs handles websocket requests from the peer.
func ServeWs(hub *Hub, c *websocket.Conn, tenantID, userID uuid.UUID) {
	client := &Client{
		Hub:      hub,
		Conn:     c,
		TenantID: tenantID,
		UserID:   userID,
		Send:     make(chan []byte, 256),
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
