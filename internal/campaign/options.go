package campaign

import (
	"time"

	"github.com/jonesrussell/goleads/internal/metrics"
)

// Option is a functional option for configuring the Scheduler.
type Option func(*Scheduler)

// WithErrorThreshold sets how many consecutive scrape failures on a
// single target and platform pair fail the whole campaign.
// Default: 5
func WithErrorThreshold(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.errorThreshold = n
		}
	}
}

// WithScrapeTimeout bounds a single scrape cycle.
// Default: 30 seconds
func WithScrapeTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.scrapeTimeout = d
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}
