// Package sse provides the Server-Sent Events channel that streams
// campaign and lead events to connected dashboards.
package sse

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonesrussell/goleads/internal/logger"
)

// Event is a single Server-Sent Event.
// Wire format: event: <Type>\ndata: <JSON payload>\n\n
type Event struct {
	// Type is the event type (e.g. "lead:new", "campaign:status").
	Type string `json:"type"`
	// Data is the JSON payload.
	Data any `json:"data"`
}

// Event types streamed to dashboards.
const (
	EventTypeLeadNew        = "lead:new"
	EventTypeCampaignStatus = "campaign:status"
	EventTypeStatsUpdate    = "stats:update"

	eventTypeConnected = "connected"
)

// Default configuration values.
const (
	DefaultEventBufferSize   = 1000
	DefaultClientBufferSize  = 100
	DefaultHeartbeatInterval = 15 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
)

// Broker manages SSE connections and event distribution.
type Broker struct {
	log     logger.Logger
	clients map[string]*client
	mu      sync.RWMutex

	publish chan Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBroker creates a new SSE broker.
func NewBroker(log logger.Logger) *Broker {
	return &Broker{
		log:     log,
		clients: make(map[string]*client),
		publish: make(chan Event, DefaultEventBufferSize),
	}
}

// Start begins processing events. Non-blocking.
func (b *Broker) Start(ctx context.Context) {
	b.ctx, b.cancel = context.WithCancel(ctx)

	b.wg.Add(1)
	go b.broadcastLoop()

	b.log.Info("SSE broker started")
}

// Stop gracefully shuts down the broker and disconnects all clients.
func (b *Broker) Stop() {
	if b.cancel != nil {
		b.cancel()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("SSE broker stopped")
	case <-time.After(DefaultShutdownTimeout):
		b.log.Warn("SSE broker shutdown timeout exceeded")
	}
}

// Publish queues an event for delivery to all connected clients.
// Returns an error when the publish buffer is full; the event is dropped
// rather than blocking the caller.
func (b *Broker) Publish(ctx context.Context, event Event) error {
	select {
	case b.publish <- event:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publish cancelled: %w", ctx.Err())
	default:
		return fmt.Errorf("publish buffer full (dropped event: %s)", event.Type)
	}
}

// Subscribe registers a client and returns its event channel plus a
// cleanup function. The channel closes on disconnect or broker shutdown.
func (b *Broker) Subscribe(ctx context.Context) (events <-chan Event, cleanup func()) {
	c := newClient(ctx, DefaultClientBufferSize)

	b.mu.Lock()
	b.clients[c.id] = c
	b.mu.Unlock()

	b.log.Debug("SSE client subscribed",
		logger.String("client_id", c.id),
		logger.Int("total_clients", b.ClientCount()),
	)

	b.wg.Add(1)
	go b.cleanupClient(c)

	return c.events, func() { b.removeClient(c.id) }
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *Broker) broadcastLoop() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.publish:
			b.broadcast(event)
		case <-b.ctx.Done():
			b.disconnectAll()
			return
		}
	}
}

// broadcast fans an event out to every client, dropping clients whose
// buffers are full.
func (b *Broker) broadcast(event Event) {
	b.mu.RLock()
	clients := make([]*client, 0, len(b.clients))
	for _, c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	var slow []string
	for _, c := range clients {
		if !c.send(event) {
			slow = append(slow, c.id)
		}
	}

	for _, id := range slow {
		b.log.Warn("Client buffer full, closing slow connection",
			logger.String("client_id", id),
			logger.String("event_type", event.Type),
		)
		b.removeClient(id)
	}
}

func (b *Broker) cleanupClient(c *client) {
	defer b.wg.Done()
	<-c.ctx.Done()
	b.removeClient(c.id)
}

func (b *Broker) removeClient(id string) {
	b.mu.Lock()
	c, exists := b.clients[id]
	if exists {
		delete(b.clients, id)
	}
	b.mu.Unlock()

	if exists {
		c.close()
		b.log.Debug("SSE client disconnected", logger.String("client_id", id))
	}
}

func (b *Broker) disconnectAll() {
	b.mu.Lock()
	clients := make([]*client, 0, len(b.clients))
	for _, c := range b.clients {
		clients = append(clients, c)
	}
	b.clients = make(map[string]*client)
	b.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
