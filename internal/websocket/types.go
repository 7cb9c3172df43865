package websocket

import (
	"context"
	"sync"

	"github.com/coder/websocket"
)

// OriginValidator interface for WebSocket origin validation
type OriginValidator interface {
	IsAllowedOrigin(origin string) bool
}

// MessageHandler processes one inbound message. A non-nil return value is
// sent back to the same client.
type MessageHandler func(ctx context.Context, message []byte) []byte

// Client represents a WebSocket client connection
type Client struct {
	conn *websocket.Conn
	send chan []byte

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// offer queues message without blocking. It reports false when the client's
// buffer is full or the client is gone.
func (c *Client) offer(message []byte) bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}

	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// deliver queues message, waiting for buffer space until the client goes away.
func (c *Client) deliver(message []byte) bool {
	select {
	case c.send <- message:
		return true
	case <-c.ctx.Done():
		return false
	}
}

func (c *Client) close(code websocket.StatusCode, reason string) {
	c.once.Do(func() {
		c.cancel()
		_ = c.conn.Close(code, reason)
	})
}
