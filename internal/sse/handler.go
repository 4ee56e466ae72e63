package sse

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/goleads/internal/logger"
)

const sseContentType = "text/event-stream"

// Handler creates a gin handler that subscribes the request to the
// broker and streams events until the client disconnects.
func Handler(broker *Broker, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		setHeaders(c.Writer)
		c.Writer.Flush()

		eventChan, cleanup := broker.Subscribe(c.Request.Context())
		defer cleanup()

		if err := writeEvent(c.Writer, Event{
			Type: eventTypeConnected,
			Data: map[string]any{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
				"message":   "dashboard connected",
			},
		}); err != nil {
			log.Error("Failed to write connection event", logger.Error(err))
			return
		}

		log.Debug("SSE client connected", logger.String("remote_addr", c.ClientIP()))

		stream(c, eventChan, log)
	}
}

func setHeaders(w gin.ResponseWriter) {
	w.Header().Set("Content-Type", sseContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// stream is the main event loop for one client connection.
func stream(c *gin.Context, eventChan <-chan Event, log logger.Logger) {
	ticker := time.NewTicker(DefaultHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				log.Debug("SSE event channel closed")
				return
			}
			if err := writeEvent(c.Writer, event); err != nil {
				log.Debug("SSE write failed (client likely disconnected)",
					logger.Error(err),
					logger.String("event_type", event.Type),
				)
				return
			}
		case <-ticker.C:
			if err := writeHeartbeat(c.Writer); err != nil {
				log.Debug("SSE heartbeat failed (client disconnected)")
				return
			}
		case <-c.Request.Context().Done():
			log.Debug("SSE client request context cancelled")
			return
		}
	}
}

// writeEvent writes an SSE event and flushes the response.
func writeEvent(w gin.ResponseWriter, event Event) error {
	if event.Type != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event.Type); err != nil {
			return fmt.Errorf("write event type: %w", err)
		}
	}

	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write event data: %w", err)
	}

	w.Flush()
	return nil
}

// writeHeartbeat writes an SSE comment to keep the connection alive.
func writeHeartbeat(w gin.ResponseWriter) error {
	if _, err := fmt.Fprintf(w, ": heartbeat %s\n\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("write heartbeat: %w", err)
	}
	w.Flush()
	return nil
}
