//START OF FILE pickleball/internal/network/client.go
package network

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	sendBuffer = 64
)

// Client is one websocket connection as seen by the server.
type Client struct {
	conn *websocket.Conn
	hub  *Hub

	// Outbound queue drained by writeLoop. Closed by the hub on unregister.
	send chan Message
}

func (c *Client) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Send queues msg without blocking and reports whether it was accepted.
// Only call it from EventHandler callbacks; the hub closes the queue on
// disconnect from that same goroutine.
func (c *Client) Send(msg Message) bool {
	select {
	case c.send <- msg:
		return true
	default:
		c.hub.log.Warn("send buffer full, dropping message", "client", c.RemoteAddr(), "type", msg.Type)
		return false
	}
}

func (c *Client) readLoop() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("unexpected close", "client", c.RemoteAddr(), "error", err)
			}
			return
		}
		select {
		case c.hub.incoming <- clientMessage{client: c, msg: msg}:
		case <-c.hub.done:
			return
		}
	}
}

// writeLoop pumps queued messages to the connection and keeps it alive with pings.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.hub.log.Warn("write failed", "client", c.RemoteAddr(), "error", err)
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

//END OF FILE pickleball/internal/network/client.go
