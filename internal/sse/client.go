package sse

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// clientIDCounter generates unique client IDs.
var clientIDCounter atomic.Int64

// client represents a connected SSE client.
type client struct {
	id      string
	events  chan Event
	ctx     context.Context
	cancel  context.CancelFunc
	closed  atomic.Bool
	closeMu sync.Mutex
}

func newClient(ctx context.Context, bufferSize int) *client {
	clientCtx, cancel := context.WithCancel(ctx)
	return &client{
		id:     fmt.Sprintf("sse-client-%d-%d", time.Now().UnixNano(), clientIDCounter.Add(1)),
		events: make(chan Event, bufferSize),
		ctx:    clientCtx,
		cancel: cancel,
	}
}

// close terminates the client connection. Idempotent.
func (c *client) close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed.Load() {
		return
	}
	c.closed.Store(true)
	c.cancel()
	close(c.events)
}

// send attempts to deliver an event to the client.
// Returns false when the client buffer is full (slow client).
func (c *client) send(event Event) bool {
	if c.closed.Load() {
		return false
	}

	select {
	case c.events <- event:
		return true
	default:
		return false
	}
}
