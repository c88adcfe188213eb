package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// ErrClosed is returned when writing to a closed connection.
var ErrClosed = errors.New("connection closed")

// Conn is a websocket connection to the chat server. Writes are serialized;
// decoded events are delivered on Events in arrival order.
type Conn struct {
	ws     *websocket.Conn
	events chan Event
	done   chan struct{}

	mu     sync.Mutex // guards writes and typing
	typing bool
	closed bool

	errMu   sync.Mutex
	readErr error
}

// WebSocketURL turns a server base URL such as http://host:3000 into the
// websocket endpoint ws://host:3000/ws.
func WebSocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

// Dial connects to the server's websocket endpoint.
func Dial(ctx context.Context, serverURL string) (*Conn, error) {
	wsURL, err := WebSocketURL(serverURL)
	if err != nil {
		return nil, err
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}

	c := &Conn{
		ws:     ws,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Events delivers server events until the connection ends, then is closed.
func (c *Conn) Events() <-chan Event {
	return c.events
}

// Err reports why the event stream ended, nil after a local Close.
func (c *Conn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.readErr
}

// Join asks to be admitted under nickname.
func (c *Conn) Join(nickname string) error {
	frame, err := encodeJoin(nickname)
	if err != nil {
		return err
	}
	return c.write(frame)
}

// Send posts a chat message and clears the typing state. Blank text is not
// sent.
func (c *Conn) Send(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	frame, err := encodeChat(text)
	if err != nil {
		return err
	}
	if err := c.write(frame); err != nil {
		return err
	}
	return c.SetTyping(false)
}

// SetTyping reports the local typing state. Only changes are sent.
func (c *Conn) SetTyping(state bool) error {
	frame, err := encodeTyping(state)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.typing == state {
		return nil
	}
	if err := c.writeLocked(frame); err != nil {
		return err
	}
	c.typing = state
	return nil
}

// Close sends a close frame and tears down the connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.mu.Unlock()
	return c.ws.Close()
}

func (c *Conn) write(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeLocked(frame)
}

func (c *Conn) writeLocked(frame []byte) error {
	if c.closed {
		return ErrClosed
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (c *Conn) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.errMu.Lock()
				c.readErr = err
				c.errMu.Unlock()
			}
			return
		}
		ev, err := DecodeEvent(data)
		if err != nil {
			continue
		}
		select {
		case c.events <- ev:
		case <-c.done:
			return
		}
	}
}
