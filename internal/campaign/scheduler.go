// Package campaign provides the interval-based campaign scheduler. A
// campaign polls every configured platform for every target on a
// jittered interval, classifies what it finds, and records new leads.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/goleads/internal/detector"
	"github.com/jonesrussell/goleads/internal/domain"
	"github.com/jonesrussell/goleads/internal/fingerprint"
	"github.com/jonesrussell/goleads/internal/leads"
	"github.com/jonesrussell/goleads/internal/logger"
	"github.com/jonesrussell/goleads/internal/metrics"
	"github.com/jonesrussell/goleads/internal/notify"
	"github.com/jonesrussell/goleads/internal/scrape"
	"github.com/jonesrussell/goleads/internal/session"
)

const (
	defaultErrorThreshold = 5
	defaultScrapeTimeout  = 30 * time.Second
	minInterval           = time.Second
)

// ErrNotFound is returned when no campaign exists for the given ID.
var ErrNotFound = errors.New("campaign not found")

// Repository persists campaign records across restarts.
type Repository interface {
	SaveCampaign(ctx context.Context, c domain.Campaign) error
	LoadCampaigns(ctx context.Context) ([]domain.Campaign, error)
}

// activeCampaign tracks a campaign together with its polling loops.
// The mutex guards the campaign record; counters are only ever updated
// while holding it.
type activeCampaign struct {
	mu       sync.Mutex
	campaign *domain.Campaign
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	// consecutive error counts per target and platform pair
	errorStreaks map[domain.SessionKey]int
}

// Scheduler runs campaigns. Each running campaign owns one polling
// goroutine per target and platform pair.
type Scheduler struct {
	logger   logger.Logger
	repo     Repository
	sessions *session.Store
	fetcher  scrape.Fetcher
	login    scrape.LoginProvider
	detector detector.Detector
	leads    *leads.Aggregator
	fanout   *notify.Fanout

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	campaigns map[string]*activeCampaign

	errorThreshold int
	scrapeTimeout  time.Duration
	metrics        *metrics.Metrics
}

// NewScheduler creates a campaign scheduler. The repository is optional;
// without it campaigns are not persisted across restarts.
func NewScheduler(
	log logger.Logger,
	repo Repository,
	sessions *session.Store,
	fetcher scrape.Fetcher,
	login scrape.LoginProvider,
	det detector.Detector,
	aggregator *leads.Aggregator,
	fanout *notify.Fanout,
	opts ...Option,
) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		logger:         log,
		repo:           repo,
		sessions:       sessions,
		fetcher:        fetcher,
		login:          login,
		detector:       det,
		leads:          aggregator,
		fanout:         fanout,
		ctx:            ctx,
		cancel:         cancel,
		campaigns:      make(map[string]*activeCampaign),
		errorThreshold: defaultErrorThreshold,
		scrapeTimeout:  defaultScrapeTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Restore loads persisted campaigns into the scheduler. Campaigns that
// were running when the process died come back stopped; the caller
// decides whether to start them again.
func (s *Scheduler) Restore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	stored, err := s.repo.LoadCampaigns(ctx)
	if err != nil {
		return fmt.Errorf("load campaigns: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range stored {
		c := stored[i]
		if c.Status == domain.CampaignRunning {
			c.Status = domain.CampaignStopped
		}
		s.campaigns[c.ID] = &activeCampaign{
			campaign:     &c,
			errorStreaks: make(map[domain.SessionKey]int),
		}
	}

	s.logger.Info("Campaigns restored", logger.Int("count", len(stored)))
	return nil
}

// ErrAlreadyRunning is returned when starting a campaign under an ID
// that is still active.
var ErrAlreadyRunning = errors.New("campaign already running")

// Start creates a campaign and starts its polling loops. An empty id
// gets a generated one; reusing the id of a finished campaign lets the
// session store hand back its sessions when the fingerprint still
// matches. The fingerprint is checked before anything runs: a parameter
// change purges any sessions left over from a previous campaign with
// the same ID.
func (s *Scheduler) Start(ctx context.Context, id string, targets, platforms []string, interval time.Duration) (domain.Campaign, error) {
	if len(targets) == 0 {
		return domain.Campaign{}, errors.New("at least one target is required")
	}
	if len(platforms) == 0 {
		return domain.Campaign{}, errors.New("at least one platform is required")
	}
	if interval < minInterval {
		return domain.Campaign{}, fmt.Errorf("interval must be at least %s, got %s", minInterval, interval)
	}

	if id == "" {
		id = uuid.New().String()
	} else {
		s.mu.RLock()
		prior, exists := s.campaigns[id]
		s.mu.RUnlock()
		if exists {
			prior.mu.Lock()
			terminal := prior.campaign.Status.IsTerminal()
			prior.mu.Unlock()
			if !terminal {
				return domain.Campaign{}, fmt.Errorf("%w: %s", ErrAlreadyRunning, id)
			}
		}
	}

	now := time.Now().UTC()
	c := &domain.Campaign{
		ID:        id,
		Targets:   append([]string(nil), targets...),
		Platforms: append([]string(nil), platforms...),
		Interval:  interval,
		Status:    domain.CampaignPending,
		CreatedAt: now,
	}

	fp := fingerprint.Compute(c.Targets, c.Platforms, c.Interval)
	reused := s.sessions.CheckFingerprint(ctx, c.ID, fp)
	s.logger.Debug("Campaign fingerprint checked",
		logger.String("campaign_id", c.ID),
		logger.Bool("sessions_reused", reused),
	)

	if err := ValidateTransition(c.Status, domain.CampaignRunning); err != nil {
		return domain.Campaign{}, err
	}
	c.Status = domain.CampaignRunning
	c.StartedAt = &now

	runCtx, cancel := context.WithCancel(s.ctx)
	ac := &activeCampaign{
		campaign:     c,
		cancel:       cancel,
		errorStreaks: make(map[domain.SessionKey]int),
	}

	s.mu.Lock()
	s.campaigns[c.ID] = ac
	s.mu.Unlock()

	s.persist(ctx, c.Snapshot())
	s.recordTransition(string(domain.CampaignRunning))

	for _, target := range c.Targets {
		for _, platform := range c.Platforms {
			key := domain.SessionKey{CampaignID: c.ID, Platform: platform, Target: target}
			ac.wg.Add(1)
			go s.runPoller(runCtx, ac, key)
		}
	}

	s.logger.Info("Campaign started",
		logger.String("campaign_id", c.ID),
		logger.Strings("targets", c.Targets),
		logger.Strings("platforms", c.Platforms),
		logger.Duration("interval", c.Interval),
	)

	snapshot := s.snapshot(ac)
	s.publishStatus(ctx, snapshot)
	return snapshot, nil
}

// Stop stops a running campaign. Wait timers are cancelled promptly;
// an in-flight scrape cycle finishes and its results are still recorded.
func (s *Scheduler) Stop(ctx context.Context, id string) (domain.Campaign, error) {
	s.mu.RLock()
	ac, exists := s.campaigns[id]
	s.mu.RUnlock()
	if !exists {
		return domain.Campaign{}, ErrNotFound
	}

	ac.mu.Lock()
	if err := ValidateTransition(ac.campaign.Status, domain.CampaignStopped); err != nil {
		ac.mu.Unlock()
		return domain.Campaign{}, err
	}
	now := time.Now().UTC()
	ac.campaign.Status = domain.CampaignStopped
	ac.campaign.StoppedAt = &now
	snapshot := ac.campaign.Snapshot()
	ac.mu.Unlock()

	if ac.cancel != nil {
		ac.cancel()
	}

	s.persist(ctx, snapshot)
	s.recordTransition(string(domain.CampaignStopped))
	s.publishStatus(ctx, snapshot)

	s.logger.Info("Campaign stopped", logger.String("campaign_id", id))
	return snapshot, nil
}

// Status returns a point-in-time snapshot of a campaign.
func (s *Scheduler) Status(id string) (domain.Campaign, error) {
	s.mu.RLock()
	ac, exists := s.campaigns[id]
	s.mu.RUnlock()
	if !exists {
		return domain.Campaign{}, ErrNotFound
	}
	return s.snapshot(ac), nil
}

// List returns snapshots of all known campaigns, newest first.
func (s *Scheduler) List() []domain.Campaign {
	s.mu.RLock()
	actives := make([]*activeCampaign, 0, len(s.campaigns))
	for _, ac := range s.campaigns {
		actives = append(actives, ac)
	}
	s.mu.RUnlock()

	out := make([]domain.Campaign, 0, len(actives))
	for _, ac := range actives {
		out = append(out, s.snapshot(ac))
	}
	sortCampaigns(out)
	return out
}

// RunningCount returns the number of campaigns currently running.
func (s *Scheduler) RunningCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, ac := range s.campaigns {
		ac.mu.Lock()
		if ac.campaign.Status == domain.CampaignRunning {
			count++
		}
		ac.mu.Unlock()
	}
	return count
}

// Shutdown stops all campaigns and waits for every polling loop to
// drain.
func (s *Scheduler) Shutdown(ctx context.Context) {
	s.logger.Info("Stopping campaign scheduler")

	s.mu.RLock()
	actives := make([]*activeCampaign, 0, len(s.campaigns))
	ids := make([]string, 0, len(s.campaigns))
	for id, ac := range s.campaigns {
		actives = append(actives, ac)
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for i, ac := range actives {
		ac.mu.Lock()
		running := ac.campaign.Status == domain.CampaignRunning
		ac.mu.Unlock()
		if running {
			if _, err := s.Stop(ctx, ids[i]); err != nil {
				s.logger.Warn("Failed to stop campaign on shutdown",
					logger.String("campaign_id", ids[i]),
					logger.Error(err),
				)
			}
		}
	}

	s.cancel()

	for _, ac := range actives {
		ac.wg.Wait()
	}

	s.logger.Info("Campaign scheduler stopped")
}

// snapshot returns a copy of the campaign safe for callers.
func (s *Scheduler) snapshot(ac *activeCampaign) domain.Campaign {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.campaign.Snapshot()
}

// persist writes the campaign through to storage if a repository is
// configured.
func (s *Scheduler) persist(ctx context.Context, c domain.Campaign) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveCampaign(ctx, c); err != nil {
		s.logger.Error("Failed to persist campaign",
			logger.String("campaign_id", c.ID),
			logger.Error(err),
		)
	}
}

// publishStatus broadcasts a campaign status event.
func (s *Scheduler) publishStatus(ctx context.Context, c domain.Campaign) {
	if s.fanout == nil {
		return
	}
	s.fanout.Publish(ctx, domain.Event{
		Type:      domain.EventCampaignStatus,
		Timestamp: time.Now().UTC(),
		Campaign:  &c,
	})
}

func (s *Scheduler) recordTransition(status string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordTransition(status, s.RunningCount())
}

// jitteredWait returns a random wait in [interval, 2*interval).
func jitteredWait(interval time.Duration) time.Duration {
	return interval + time.Duration(rand.Int63n(int64(interval)))
}

// sortCampaigns orders campaigns newest first.
func sortCampaigns(cs []domain.Campaign) {
	sort.Slice(cs, func(i, j int) bool {
		return cs[i].CreatedAt.After(cs[j].CreatedAt)
	})
}
