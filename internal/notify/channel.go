package notify

import (
	"context"

	"github.com/jonesrussell/goleads/internal/domain"
	"github.com/jonesrussell/goleads/internal/sse"
)

// ChannelSink publishes lead events to the live dashboard channel.
type ChannelSink struct {
	broker *sse.Broker
}

// NewChannelSink creates a sink over the SSE broker.
func NewChannelSink(broker *sse.Broker) *ChannelSink {
	return &ChannelSink{broker: broker}
}

// Name identifies the sink in logs.
func (s *ChannelSink) Name() string { return "live-channel" }

// Send broadcasts the event to all connected dashboard clients.
func (s *ChannelSink) Send(ctx context.Context, event domain.Event) error {
	return s.broker.Publish(ctx, sse.Event{
		Type: streamType(event.Type),
		Data: event,
	})
}

// streamType maps a domain event type to its SSE wire type.
func streamType(eventType string) string {
	switch eventType {
	case domain.EventCampaignStatus:
		return sse.EventTypeCampaignStatus
	case domain.EventStatsUpdate:
		return sse.EventTypeStatsUpdate
	default:
		return sse.EventTypeLeadNew
	}
}
