package httpd

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/goleads/internal/campaign"
	"github.com/jonesrussell/goleads/internal/config"
	"github.com/jonesrussell/goleads/internal/detector"
	"github.com/jonesrussell/goleads/internal/leads"
	"github.com/jonesrussell/goleads/internal/logger"
	"github.com/jonesrussell/goleads/internal/metrics"
	"github.com/jonesrussell/goleads/internal/notify"
	"github.com/jonesrussell/goleads/internal/scrape"
	"github.com/jonesrussell/goleads/internal/session"
	"github.com/jonesrussell/goleads/internal/sse"
	"github.com/jonesrussell/goleads/internal/storage"
)

// serverDeps holds the assembled collaborators of the HTTP server.
type serverDeps struct {
	log        logger.Logger
	db         *sqlx.DB
	sessions   *session.Store
	aggregator *leads.Aggregator
	broker     *sse.Broker
	scheduler  *campaign.Scheduler
}

// buildDeps assembles storage, session store, detector chain,
// notification fanout, and the campaign scheduler from config.
func buildDeps(cfg *config.Config, log logger.Logger, m *metrics.Metrics) (*serverDeps, error) {
	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sessions := session.NewStore(storage.NewSessionRepository(db), log)
	aggregator := leads.NewAggregator(storage.NewLeadRepository(db), log)
	broker := sse.NewBroker(log)

	det, err := buildDetector(cfg, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	fetcher, login := buildFetcher(cfg, log)
	fanout := notify.NewFanout(log, buildSinks(cfg, broker)...).WithMetrics(m)

	scheduler := campaign.NewScheduler(
		log,
		storage.NewCampaignRepository(db),
		sessions,
		fetcher,
		login,
		det,
		aggregator,
		fanout,
		campaign.WithErrorThreshold(cfg.Scheduler.ErrorThreshold),
		campaign.WithScrapeTimeout(cfg.Scheduler.ScrapeTimeout),
		campaign.WithMetrics(m),
	)

	return &serverDeps{
		log:        log,
		db:         db,
		sessions:   sessions,
		aggregator: aggregator,
		broker:     broker,
		scheduler:  scheduler,
	}, nil
}

// restore reloads persisted state: sessions, leads, campaigns.
func (d *serverDeps) restore(ctx context.Context) error {
	if err := d.sessions.Restore(ctx); err != nil {
		return fmt.Errorf("restore sessions: %w", err)
	}
	if err := d.aggregator.Restore(ctx); err != nil {
		return fmt.Errorf("restore leads: %w", err)
	}
	if err := d.scheduler.Restore(ctx); err != nil {
		return fmt.Errorf("restore campaigns: %w", err)
	}
	return nil
}

func (d *serverDeps) close() {
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			d.log.Warn("Failed to close database", logger.Error(err))
		}
	}
}

// buildDetector builds the detector chain from the configured backend
// order.
func buildDetector(cfg *config.Config, log logger.Logger) (detector.Detector, error) {
	backends := make([]detector.Detector, 0, len(cfg.Detector.Backends))
	for _, name := range cfg.Detector.Backends {
		switch name {
		case "keyword":
			backends = append(backends, detector.NewKeywordDetector(cfg.Detector.Keywords, cfg.Detector.MinMatches))
		case "pattern":
			backends = append(backends, detector.NewPatternDetector())
		default:
			return nil, fmt.Errorf("unknown detector backend: %s", name)
		}
	}
	if len(backends) == 1 {
		return backends[0], nil
	}
	return detector.NewChain(log, backends...), nil
}

// buildFetcher selects the fetcher implementation from the scrape mode.
func buildFetcher(cfg *config.Config, log logger.Logger) (scrape.Fetcher, scrape.LoginProvider) {
	if cfg.Scrape.Mode == config.ModeSimulate {
		sim := scrape.NewSimulator()
		sim.FailureRate = cfg.Scrape.FailureRate
		return sim, sim
	}

	fetcher := scrape.NewListingFetcher(cfg.Scrape.Platforms, log)
	return fetcher, fetcher
}

// buildSinks builds the notification sinks enabled by config. The SSE
// channel sink is always on; webhook and email depend on config.
func buildSinks(cfg *config.Config, broker *sse.Broker) []notify.Sink {
	sinks := []notify.Sink{notify.NewChannelSink(broker)}

	if cfg.Notify.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookSink(cfg.Notify.WebhookURL))
	}
	if cfg.Notify.Email.Enabled() {
		sinks = append(sinks, notify.NewEmailSink(cfg.Notify.Email))
	}

	return sinks
}
