package sse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/goleads/internal/logger"
)

func TestBroker_PublishReachesSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewBroker(logger.NewNop())
	b.Start(ctx)
	defer b.Stop()

	events, cleanup := b.Subscribe(ctx)
	defer cleanup()

	require.NoError(t, b.Publish(ctx, Event{Type: EventTypeLeadNew, Data: "DL01AB1234"}))

	select {
	case event := <-events:
		assert.Equal(t, EventTypeLeadNew, event.Type)
		assert.Equal(t, "DL01AB1234", event.Data)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBroker_MultipleSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewBroker(logger.NewNop())
	b.Start(ctx)
	defer b.Stop()

	ch1, cleanup1 := b.Subscribe(ctx)
	defer cleanup1()
	ch2, cleanup2 := b.Subscribe(ctx)
	defer cleanup2()

	assert.Equal(t, 2, b.ClientCount())

	require.NoError(t, b.Publish(ctx, Event{Type: EventTypeStatsUpdate}))

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case event := <-ch:
			assert.Equal(t, EventTypeStatsUpdate, event.Type)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestBroker_CleanupRemovesClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewBroker(logger.NewNop())
	b.Start(ctx)
	defer b.Stop()

	_, cleanup := b.Subscribe(ctx)
	require.Equal(t, 1, b.ClientCount())

	cleanup()
	assert.Equal(t, 0, b.ClientCount())
}

func TestBroker_StopClosesSubscribers(t *testing.T) {
	ctx := context.Background()

	b := NewBroker(logger.NewNop())
	b.Start(ctx)

	events, cleanup := b.Subscribe(ctx)
	defer cleanup()

	b.Stop()

	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel must be closed after broker stop")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
