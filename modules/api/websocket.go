package api

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/magbay/LAN-Chat/modules/presence"
)

const (
	writeWait     = 10 * time.Second
	maxFrameBytes = 64 * 1024
)

// handleWebSocket handles WebSocket connections at /ws. The reader feeds the
// hub; a single writer goroutine drains the client's queue so the socket never
// sees concurrent writes.
func (m *Module) handleWebSocket(c *websocket.Conn) {
	client := presence.NewClient(uuid.New().String(), m.cfg.SendQueueSize, m.newLimiter())
	if !m.hub.Register(client) {
		_ = c.Close()
		return
	}
	m.logger.Info("WebSocket client connected", "clientID", client.ID)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		err := client.WritePump(func(frame []byte) error {
			_ = c.SetWriteDeadline(time.Now().Add(writeWait))
			return c.WriteMessage(websocket.TextMessage, frame)
		})
		if err != nil {
			m.logger.Debug("WebSocket write failed", "clientID", client.ID, "error", err)
		}
		// unblocks the reader when the hub dropped this client
		_ = c.Close()
	}()

	c.SetReadLimit(maxFrameBytes)
	for {
		msgType, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Debug("WebSocket read error", "clientID", client.ID, "error", err)
			}
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		m.hub.HandleFrame(client, data)
	}

	m.hub.Unregister(client)
	client.Close()
	<-writerDone
	m.logger.Info("WebSocket client disconnected", "clientID", client.ID)
}

func (m *Module) newLimiter() *rate.Limiter {
	if m.cfg.ChatRateLimit <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(m.cfg.ChatRateLimit), m.cfg.ChatRateBurst)
}
