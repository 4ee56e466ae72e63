// Package metrics exposes Prometheus instrumentation for the campaign engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the namespace for all goleads metrics.
	Namespace = "goleads"
)

// Metrics holds all Prometheus metrics for the campaign engine.
type Metrics struct {
	// Campaign metrics
	CampaignsRunning prometheus.Gauge
	CampaignsTotal   *prometheus.CounterVec
	ScrapeCycles     *prometheus.CounterVec
	ScrapeDuration   *prometheus.HistogramVec
	ScrapeErrors     *prometheus.CounterVec

	// Lead pipeline metrics
	CandidatesProcessed *prometheus.CounterVec
	LeadsAccepted       *prometheus.CounterVec
	LeadsDeduplicated   prometheus.Counter

	// Session metrics
	SessionsReused      prometheus.Counter
	SessionsAcquired    prometheus.Counter
	SessionsInvalidated prometheus.Counter

	// Notification metrics
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
}

// New creates and registers all campaign engine metrics.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)
	m := &Metrics{}

	m.initCampaignMetrics(factory)
	m.initLeadMetrics(factory)
	m.initSessionMetrics(factory)
	m.initNotificationMetrics(factory)

	return m
}

func (m *Metrics) initCampaignMetrics(factory promauto.Factory) {
	m.CampaignsRunning = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "campaign",
			Name:      "running",
			Help:      "Number of campaigns currently running",
		},
	)

	m.CampaignsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "campaign",
			Name:      "transitions_total",
			Help:      "Total number of campaign state transitions",
		},
		[]string{"status"},
	)

	m.ScrapeCycles = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "scrape",
			Name:      "cycles_total",
			Help:      "Total number of scrape cycles executed",
		},
		[]string{"platform"},
	)

	m.ScrapeDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "scrape",
			Name:      "duration_seconds",
			Help:      "Duration of scrape cycles in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~51s
		},
		[]string{"platform"},
	)

	m.ScrapeErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "scrape",
			Name:      "errors_total",
			Help:      "Total number of scrape errors",
		},
		[]string{"platform"},
	)
}

func (m *Metrics) initLeadMetrics(factory promauto.Factory) {
	m.CandidatesProcessed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "leads",
			Name:      "candidates_processed_total",
			Help:      "Total number of scraped candidates classified",
		},
		[]string{"platform"},
	)

	m.LeadsAccepted = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "leads",
			Name:      "accepted_total",
			Help:      "Total number of new leads accepted",
		},
		[]string{"platform"},
	)

	m.LeadsDeduplicated = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "leads",
			Name:      "deduplicated_total",
			Help:      "Total number of leads rejected as duplicates",
		},
	)
}

func (m *Metrics) initSessionMetrics(factory promauto.Factory) {
	m.SessionsReused = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "session",
			Name:      "reused_total",
			Help:      "Total number of cached sessions reused",
		},
	)

	m.SessionsAcquired = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "session",
			Name:      "acquired_total",
			Help:      "Total number of fresh sessions acquired",
		},
	)

	m.SessionsInvalidated = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "session",
			Name:      "invalidated_total",
			Help:      "Total number of sessions invalidated",
		},
	)
}

func (m *Metrics) initNotificationMetrics(factory promauto.Factory) {
	m.NotificationsSent = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "notify",
			Name:      "sent_total",
			Help:      "Total number of notifications delivered",
		},
		[]string{"sink"},
	)

	m.NotificationsFailed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "notify",
			Name:      "failed_total",
			Help:      "Total number of notification delivery failures",
		},
		[]string{"sink"},
	)
}

// RecordTransition records a campaign state transition and keeps the
// running gauge in step with it.
func (m *Metrics) RecordTransition(status string, running int) {
	m.CampaignsTotal.WithLabelValues(status).Inc()
	m.CampaignsRunning.Set(float64(running))
}

// RecordScrape records a completed scrape cycle.
func (m *Metrics) RecordScrape(platform string, durationSeconds float64, err error) {
	m.ScrapeCycles.WithLabelValues(platform).Inc()
	m.ScrapeDuration.WithLabelValues(platform).Observe(durationSeconds)
	if err != nil {
		m.ScrapeErrors.WithLabelValues(platform).Inc()
	}
}

// RecordCandidate records a classified candidate and whether it became a
// new lead.
func (m *Metrics) RecordCandidate(platform string, accepted, duplicate bool) {
	m.CandidatesProcessed.WithLabelValues(platform).Inc()
	if accepted {
		m.LeadsAccepted.WithLabelValues(platform).Inc()
	}
	if duplicate {
		m.LeadsDeduplicated.Inc()
	}
}

// RecordSession records the outcome of a session lookup.
func (m *Metrics) RecordSession(reused bool) {
	if reused {
		m.SessionsReused.Inc()
	} else {
		m.SessionsAcquired.Inc()
	}
}

// RecordNotification records a notification delivery attempt.
func (m *Metrics) RecordNotification(sink string, err error) {
	if err != nil {
		m.NotificationsFailed.WithLabelValues(sink).Inc()
		return
	}
	m.NotificationsSent.WithLabelValues(sink).Inc()
}
