package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10 // must stay below pongWait

	// clients only ever send {"type":"ping"}
	maxClientFrameSize = 512
)

// Conn is the socket side of a tracking session. Only order update frames,
// keepalive pings and the final close frame are ever written to it.
type Conn struct {
	ws *websocket.Conn
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

func (c *Conn) writeUpdate(frame []byte) error {
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, frame)
}

func (c *Conn) writePing() error {
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

// writeShutdown tells the browser the stream ended on purpose so it can reconnect later.
func (c *Conn) writeShutdown() {
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "order tracking closed")
	c.ws.WriteMessage(websocket.CloseMessage, msg)
}

func (c *Conn) close() error {
	return c.ws.Close()
}

// Serve runs the session until either side hangs up. Updates are written from
// a second goroutine; the calling goroutine reads client frames.
func (c *Client) Serve() {
	go c.pushUpdates()
	c.readClientFrames()
}

func (c *Client) readClientFrames() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.close()
	}()

	ws := c.Conn.ws
	ws.SetReadLimit(maxClientFrameSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Tracking session dropped", map[string]interface{}{
					"user_id": c.UserID,
					"error":   err.Error(),
				})
			}
			return
		}
		c.Hub.HandleClientMessage(c, frame)
	}
}

// pushUpdates forwards queued order updates until the hub closes Send.
func (c *Client) pushUpdates() {
	keepalive := time.NewTicker(pingPeriod)
	defer func() {
		keepalive.Stop()
		c.Conn.close()
	}()

	for {
		select {
		case frame, open := <-c.Send:
			if !open {
				c.Conn.writeShutdown()
				return
			}
			if err := c.Conn.writeUpdate(frame); err != nil {
				logger.Warn("Failed to push order update", map[string]interface{}{
					"user_id": c.UserID,
					"error":   err.Error(),
				})
				return
			}

		case <-keepalive.C:
			if err := c.Conn.writePing(); err != nil {
				return
			}
		}
	}
}
