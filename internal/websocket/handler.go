package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection and blocks until the peer disconnects.
func ServeWs(hub *Hub, c *websocket.Conn, userId string, onFrame FrameHandler) {
	client := &Client{hub: hub, conn: c, UserId: userId, send: make(chan []byte, 256), onFrame: onFrame}
	client.hub.register <- client

	go client.writePump()
	client.readPump()
}
