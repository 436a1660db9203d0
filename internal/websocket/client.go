package websocket

import (
	"encoding/json"
	"time"

	"disaster-locator-bot/internal/dto"
	"disaster-locator-bot/internal/pkg/privacy"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// FrameHandler receives every well-formed frame a user sends.
type FrameHandler func(userId string, frame dto.ChatFrame)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Chat identity taken from the handshake token
	UserId string

	// Buffered channel of outbound envelopes
	send chan []byte

	onFrame FrameHandler
}

// readPump turns incoming frames into inbound events until the peer leaves.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{
					"user":  privacy.HashUserID(c.UserId),
					"error": err.Error(),
				})
			}
			return
		}

		var frame dto.ChatFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.hub.logger.Warn("Client", "Ignoring undecodable frame", map[string]interface{}{
				"user":  privacy.HashUserID(c.UserId),
				"error": err.Error(),
			})
			continue
		}
		if c.onFrame != nil {
			c.onFrame(c.UserId, frame)
		}
	}
}

// writePump writes one websocket message per envelope so clients can parse
// each frame on its own.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
