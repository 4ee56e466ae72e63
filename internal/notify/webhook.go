package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonesrussell/goleads/internal/domain"
)

// DefaultWebhookTimeout bounds a single webhook delivery attempt.
const DefaultWebhookTimeout = 10 * time.Second

// webhookPayload is the JSON body posted to the webhook endpoint.
type webhookPayload struct {
	Type      string       `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Lead      *webhookLead `json:"lead,omitempty"`
}

type webhookLead struct {
	Target     string `json:"target"`
	Platform   string `json:"platform"`
	Identifier string `json:"identifier"`
	Price      string `json:"price"`
}

// WebhookSink POSTs lead events as JSON to a configured URL.
type WebhookSink struct {
	url    string
	client *http.Client
}

// NewWebhookSink creates a webhook sink targeting url.
func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		url: url,
		client: &http.Client{
			Timeout: DefaultWebhookTimeout,
		},
	}
}

// Name identifies the sink in logs.
func (s *WebhookSink) Name() string { return "webhook" }

// Send POSTs the event payload. Any non-2xx response is an error.
func (s *WebhookSink) Send(ctx context.Context, event domain.Event) error {
	payload := webhookPayload{
		Type:      event.Type,
		Timestamp: event.Timestamp,
	}
	if event.Lead != nil {
		payload.Lead = &webhookLead{
			Target:     event.Lead.Target,
			Platform:   event.Lead.Platform,
			Identifier: event.Lead.Identifier,
			Price:      event.Lead.Price,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
