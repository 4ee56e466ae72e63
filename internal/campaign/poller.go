package campaign

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/goleads/internal/domain"
	"github.com/jonesrussell/goleads/internal/logger"
)

// runPoller is the polling loop for one target and platform pair. It
// runs a scrape cycle immediately, then waits a jittered interval
// between cycles until the campaign context is cancelled.
func (s *Scheduler) runPoller(ctx context.Context, ac *activeCampaign, key domain.SessionKey) {
	defer ac.wg.Done()

	s.logger.Debug("Poller started",
		logger.String("campaign_id", key.CampaignID),
		logger.String("platform", key.Platform),
		logger.String("target", key.Target),
	)

	for {
		if ctx.Err() != nil {
			return
		}

		// Cycles run on the scheduler context, not the campaign one:
		// stopping a campaign cancels the wait timer below but lets an
		// in-flight cycle drain and record its results.
		s.runCycle(s.ctx, ac, key)

		ac.mu.Lock()
		interval := ac.campaign.Interval
		ac.mu.Unlock()

		timer := time.NewTimer(jitteredWait(interval))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Debug("Poller stopping",
				logger.String("campaign_id", key.CampaignID),
				logger.String("platform", key.Platform),
				logger.String("target", key.Target),
			)
			return
		case <-timer.C:
		}
	}
}

// runCycle executes one scrape cycle: acquire or reuse a session, fetch
// candidates, classify them, record leads. Results of an in-flight
// cycle are still recorded when the campaign is stopped mid-cycle.
func (s *Scheduler) runCycle(ctx context.Context, ac *activeCampaign, key domain.SessionKey) {
	start := time.Now()

	candidates, err := s.fetch(ctx, key)

	if s.metrics != nil {
		s.metrics.RecordScrape(key.Platform, time.Since(start).Seconds(), err)
	}

	if err != nil {
		// Shutdown is not a scrape failure.
		if ctx.Err() != nil {
			return
		}
		s.handleCycleError(ctx, ac, key, err)
		return
	}

	ac.mu.Lock()
	ac.errorStreaks[key] = 0
	ac.mu.Unlock()

	s.processCandidates(ctx, ac, key, candidates)
}

// fetch acquires or reuses a session and pulls one batch of candidates.
// A single cycle is bounded by the configured scrape timeout.
func (s *Scheduler) fetch(ctx context.Context, key domain.SessionKey) ([]domain.Candidate, error) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.scrapeTimeout)
	defer cancel()

	sess, ok := s.sessions.Load(key)
	if !ok {
		fresh, err := s.login.Login(cycleCtx, key.Platform, key.Target)
		if err != nil {
			return nil, err
		}
		fresh.Key = key
		fresh.AcquiredAt = time.Now().UTC()
		fresh.Valid = true
		s.sessions.Save(cycleCtx, key, fresh)
		sess = fresh
		if s.metrics != nil {
			s.metrics.RecordSession(false)
		}
	} else if s.metrics != nil {
		s.metrics.RecordSession(true)
	}

	return s.fetcher.FetchCandidates(cycleCtx, key.Platform, key.Target, sess)
}

// handleCycleError counts a failed cycle against the key's consecutive
// error streak and fails the whole campaign when the threshold is hit.
func (s *Scheduler) handleCycleError(ctx context.Context, ac *activeCampaign, key domain.SessionKey, err error) {
	ac.mu.Lock()
	ac.campaign.Errors++
	ac.errorStreaks[key]++
	streak := ac.errorStreaks[key]
	ac.mu.Unlock()

	// The session the cycle used may be stale, whatever the failure was.
	// Drop it so the next cycle logs in fresh.
	if s.sessions.Invalidate(ctx, key) && s.metrics != nil {
		s.metrics.SessionsInvalidated.Inc()
	}

	s.logger.Warn("Scrape cycle failed",
		logger.String("campaign_id", key.CampaignID),
		logger.String("platform", key.Platform),
		logger.String("target", key.Target),
		logger.Int("consecutive_errors", streak),
		logger.Error(err),
	)

	if streak >= s.errorThreshold {
		s.failCampaign(ctx, ac, key, err)
	}
}

// failCampaign transitions the campaign to failed and cancels all of
// its polling loops. A campaign already in a terminal state is left
// alone.
func (s *Scheduler) failCampaign(ctx context.Context, ac *activeCampaign, key domain.SessionKey, cause error) {
	ac.mu.Lock()
	if err := ValidateTransition(ac.campaign.Status, domain.CampaignFailed); err != nil {
		ac.mu.Unlock()
		return
	}
	now := time.Now().UTC()
	ac.campaign.Status = domain.CampaignFailed
	ac.campaign.StoppedAt = &now
	snapshot := ac.campaign.Snapshot()
	ac.mu.Unlock()

	if ac.cancel != nil {
		ac.cancel()
	}

	s.logger.Error("Campaign failed",
		logger.String("campaign_id", key.CampaignID),
		logger.String("platform", key.Platform),
		logger.String("target", key.Target),
		logger.Int("error_threshold", s.errorThreshold),
		logger.Error(cause),
	)

	s.persist(ctx, snapshot)
	s.recordTransition(string(domain.CampaignFailed))
	s.publishStatus(ctx, snapshot)
}

// processCandidates classifies each candidate and records the ones that
// turn out to be new leads.
func (s *Scheduler) processCandidates(ctx context.Context, ac *activeCampaign, key domain.SessionKey, candidates []domain.Candidate) {
	var newLeads int64

	for i := range candidates {
		candidate := candidates[i]
		candidate.Target = key.Target
		candidate.Platform = key.Platform

		result, err := s.detector.Classify(ctx, candidate)
		if err != nil {
			// Fail closed: an unclassifiable candidate is not a lead.
			s.logger.Warn("Candidate classification failed",
				logger.String("campaign_id", key.CampaignID),
				logger.String("platform", key.Platform),
				logger.Error(err),
			)
			continue
		}

		if !result.IsLead {
			if s.metrics != nil {
				s.metrics.RecordCandidate(key.Platform, false, false)
			}
			continue
		}

		lead := domain.Lead{
			ID:         uuid.New().String(),
			Target:     key.Target,
			Platform:   key.Platform,
			Identifier: candidate.Identifier,
			Price:      candidate.Price,
			FirstSeen:  time.Now().UTC(),
			Status:     domain.LeadNew,
			Confidence: result.Confidence,
		}

		accepted := s.leads.Record(ctx, lead)
		if s.metrics != nil {
			s.metrics.RecordCandidate(key.Platform, accepted, !accepted)
		}
		if !accepted {
			continue
		}
		newLeads++

		if s.fanout != nil {
			s.fanout.PublishLead(ctx, lead)
			s.leads.MarkStatus(ctx, lead.ID, domain.LeadNotified)
		}
	}

	ac.mu.Lock()
	ac.campaign.Processed += int64(len(candidates))
	ac.campaign.Leads += newLeads
	snapshot := ac.campaign.Snapshot()
	ac.mu.Unlock()

	s.persist(ctx, snapshot)

	if newLeads > 0 && s.fanout != nil {
		stats := s.leads.Stats()
		s.fanout.Publish(ctx, domain.Event{
			Type:      domain.EventStatsUpdate,
			Timestamp: time.Now().UTC(),
			Stats:     &stats,
		})
	}

	s.logger.Debug("Cycle completed",
		logger.String("campaign_id", key.CampaignID),
		logger.String("platform", key.Platform),
		logger.String("target", key.Target),
		logger.Int("candidates", len(candidates)),
		logger.Int64("new_leads", newLeads),
	)
}
