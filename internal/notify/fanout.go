// Package notify fans lead events out to registered sinks.
//
// Delivery is best effort: each sink gets exactly one attempt per
// publish, a failing sink is logged and never blocks the others, and no
// sink error ever reaches the caller.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/jonesrussell/goleads/internal/domain"
	"github.com/jonesrussell/goleads/internal/logger"
)

// Sink delivers a single event to one transport.
type Sink interface {
	// Send delivers the event. Implementations must honor ctx
	// cancellation and bound their own I/O.
	Send(ctx context.Context, event domain.Event) error
	// Name identifies the sink in logs.
	Name() string
}

// Recorder instruments delivery attempts per sink.
type Recorder interface {
	RecordNotification(sink string, err error)
}

// Fanout dispatches events to every registered sink concurrently.
type Fanout struct {
	sinks   []Sink
	log     logger.Logger
	metrics Recorder
}

// NewFanout creates a fanout over the given sinks. Sinks are registered
// at startup and fixed for the fanout's lifetime.
func NewFanout(log logger.Logger, sinks ...Sink) *Fanout {
	return &Fanout{
		sinks: sinks,
		log:   log,
	}
}

// WithMetrics attaches delivery instrumentation and returns the fanout.
func (f *Fanout) WithMetrics(m Recorder) *Fanout {
	f.metrics = m
	return f
}

// SinkCount returns the number of registered sinks.
func (f *Fanout) SinkCount() int {
	return len(f.sinks)
}

// PublishLead delivers a lead_found event to every sink. Blocks until
// every sink's single attempt has finished.
func (f *Fanout) PublishLead(ctx context.Context, lead domain.Lead) {
	f.Publish(ctx, domain.Event{
		Type:      domain.EventLeadFound,
		Timestamp: time.Now().UTC(),
		Lead:      &lead,
	})
}

// Publish delivers event to every sink concurrently. Sink errors are
// logged, never returned.
func (f *Fanout) Publish(ctx context.Context, event domain.Event) {
	var wg sync.WaitGroup
	for _, sink := range f.sinks {
		wg.Add(1)
		go func(sink Sink) {
			defer wg.Done()
			err := sink.Send(ctx, event)
			if f.metrics != nil {
				f.metrics.RecordNotification(sink.Name(), err)
			}
			if err != nil {
				f.log.Warn("Notification sink failed",
					logger.String("sink", sink.Name()),
					logger.String("event_type", event.Type),
					logger.Error(err),
				)
			}
		}(sink)
	}
	wg.Wait()
}
