package presence

import (
	"sync"

	"golang.org/x/time/rate"
)

// Client is the server side of one websocket connection. Frames queued by the
// room are drained by a single writer so the socket never sees concurrent
// writes.
type Client struct {
	ID string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	limiter   *rate.Limiter
}

// NewClient creates a client with a bounded outbound queue. limiter throttles
// inbound chat messages; nil disables it.
func NewClient(id string, queueSize int, limiter *rate.Limiter) *Client {
	return &Client{
		ID:      id,
		send:    make(chan []byte, queueSize),
		done:    make(chan struct{}),
		limiter: limiter,
	}
}

// Enqueue implements Sink. It never blocks.
func (c *Client) Enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close stops the writer. Frames still queued are discarded.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed once the client was closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// WritePump hands queued frames to write until the client is closed or write
// fails.
func (c *Client) WritePump(write func(frame []byte) error) error {
	for {
		select {
		case <-c.done:
			return nil
		case frame := <-c.send:
			if err := write(frame); err != nil {
				c.Close()
				return err
			}
		}
	}
}

func (c *Client) allowChat() bool {
	return c.limiter == nil || c.limiter.Allow()
}
