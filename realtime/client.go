package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"guruconnect/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendQueueSize  = 64
)

// Client is one connected websocket session.
// Send is never closed; done signals the pumps to stop and Close is idempotent.
type Client struct {
	UserID string
	Send   chan models.Envelope

	hub       *Hub
	conn      *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		UserID: userID,
		Send:   make(chan models.Envelope, sendQueueSize),
		hub:    hub,
		conn:   conn,
		done:   make(chan struct{}),
	}
}

// Close signals the client goroutines to stop.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// enqueue drops the client instead of blocking when its queue is full.
func (c *Client) enqueue(env models.Envelope) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- env:
		return true
	default:
		c.hub.logger.Warn("send queue full, dropping client", zap.String("userId", c.UserID))
		c.Close()
		return false
	}
}

func (c *Client) sendError(event, message string) {
	env, err := models.NewEnvelope(models.EventError, models.SocketError{Event: event, Message: message})
	if err == nil {
		c.enqueue(env)
	}
}

// readPump runs on the handler goroutine until the peer goes away.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env models.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("websocket read failed", zap.String("userId", c.UserID), zap.Error(err))
			}
			return
		}
		c.hub.dispatch(c, env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case env := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := json.Marshal(env)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
