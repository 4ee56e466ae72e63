package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/goleads/internal/domain"
	"github.com/jonesrussell/goleads/internal/logger"
	"github.com/jonesrussell/goleads/internal/notify"
)

// recordingSink counts deliveries and optionally fails.
type recordingSink struct {
	mu       sync.Mutex
	received []domain.Event
	fail     bool
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Send(_ context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink unreachable")
	}
	s.received = append(s.received, event)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

func testLead() domain.Lead {
	return domain.Lead{
		ID:         "lead-1",
		Target:     "Delhi",
		Platform:   "olx",
		Identifier: "DL01AB1234",
		Price:      "₹250000",
		FirstSeen:  time.Now(),
		Status:     domain.LeadNew,
	}
}

func TestPublish_DeliversToAllSinks(t *testing.T) {
	t.Parallel()

	a := &recordingSink{}
	b := &recordingSink{}
	fanout := notify.NewFanout(logger.NewNop(), a, b)

	fanout.PublishLead(context.Background(), testLead())

	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
}

func TestPublish_FailingSinkDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	failing := &recordingSink{fail: true}
	healthy := &recordingSink{}
	fanout := notify.NewFanout(logger.NewNop(), failing, healthy)

	// Must not panic or surface the failure.
	fanout.PublishLead(context.Background(), testLead())

	assert.Equal(t, 1, healthy.count(), "healthy sink still receives the event")
	assert.Equal(t, 0, failing.count())
}

func TestPublish_NoSinks(t *testing.T) {
	t.Parallel()

	fanout := notify.NewFanout(logger.NewNop())
	fanout.PublishLead(context.Background(), testLead())
	assert.Equal(t, 0, fanout.SinkCount())
}

func TestWebhookSink_PostsLeadJSON(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		body []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		body = b
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := notify.NewWebhookSink(server.URL)
	lead := testLead()
	err := sink.Send(context.Background(), domain.Event{
		Type:      domain.EventLeadFound,
		Timestamp: time.Now().UTC(),
		Lead:      &lead,
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	var payload struct {
		Type string `json:"type"`
		Lead struct {
			Target     string `json:"target"`
			Platform   string `json:"platform"`
			Identifier string `json:"identifier"`
			Price      string `json:"price"`
		} `json:"lead"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, domain.EventLeadFound, payload.Type)
	assert.Equal(t, "Delhi", payload.Lead.Target)
	assert.Equal(t, "DL01AB1234", payload.Lead.Identifier)
}

func TestWebhookSink_Non2xxIsError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sink := notify.NewWebhookSink(server.URL)
	lead := testLead()
	err := sink.Send(context.Background(), domain.Event{Type: domain.EventLeadFound, Lead: &lead})
	assert.Error(t, err)
}
