// Package session provides keyed storage of login sessions with
// fingerprint-driven invalidation.
//
// Sessions are addressed by (campaign, platform, target). The store keeps
// at most one live session per key; saving a new session atomically
// supersedes the prior one. Invalidation happens on two paths: the
// campaign's configuration fingerprint changed (all sessions for the
// campaign are purged), or a downstream scrape using a session failed
// (that single session is marked invalid).
package session

import (
	"context"
	"sync"

	"github.com/jonesrussell/goleads/internal/domain"
	"github.com/jonesrussell/goleads/internal/fingerprint"
	"github.com/jonesrussell/goleads/internal/logger"
)

// Repository persists sessions and campaign fingerprints so that session
// reuse survives a process restart. Implementations must tolerate
// concurrent calls for different keys.
type Repository interface {
	SaveSession(ctx context.Context, s domain.Session) error
	DeleteSession(ctx context.Context, key domain.SessionKey) error
	DeleteCampaignSessions(ctx context.Context, campaignID string) error
	SaveFingerprint(ctx context.Context, campaignID string, fp fingerprint.Fingerprint) error
	LoadSessions(ctx context.Context) ([]domain.Session, error)
	LoadFingerprints(ctx context.Context) (map[string]fingerprint.Fingerprint, error)
}

// entry wraps a stored session with its own lock so writers targeting
// the same key serialize without blocking unrelated keys.
type entry struct {
	mu      sync.Mutex
	session domain.Session
}

// Store is an in-memory session store with optional write-through
// persistence. Safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	entries      map[domain.SessionKey]*entry
	fingerprints map[string]fingerprint.Fingerprint

	repo Repository // optional
	log  logger.Logger
}

// NewStore creates a session store. repo may be nil, in which case the
// store is purely in-memory.
func NewStore(repo Repository, log logger.Logger) *Store {
	return &Store{
		entries:      make(map[domain.SessionKey]*entry),
		fingerprints: make(map[string]fingerprint.Fingerprint),
		repo:         repo,
		log:          log,
	}
}

// Restore loads persisted sessions and fingerprints into the store.
// Called once at startup before any campaign runs.
func (s *Store) Restore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	sessions, err := s.repo.LoadSessions(ctx)
	if err != nil {
		return err
	}
	fps, err := s.repo.LoadFingerprints(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range sessions {
		s.entries[sess.Key] = &entry{session: sess}
	}
	for id, fp := range fps {
		s.fingerprints[id] = fp
	}

	s.log.Info("Session store restored",
		logger.Int("sessions", len(sessions)),
		logger.Int("fingerprints", len(fps)),
	)
	return nil
}

// CheckFingerprint is the sole gate for fingerprint-driven invalidation.
// It compares the stored fingerprint for the campaign against fp. When
// they differ (or no fingerprint is recorded) every session under the
// campaign is purged, the new fingerprint is recorded, and reused=false
// is returned. Otherwise existing sessions are left intact and
// reused=true is returned.
//
// Call this once per campaign start, not per polling tick.
func (s *Store) CheckFingerprint(ctx context.Context, campaignID string, fp fingerprint.Fingerprint) (reused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.fingerprints[campaignID]; ok && current == fp {
		return true
	}

	purged := 0
	for key := range s.entries {
		if key.CampaignID == campaignID {
			delete(s.entries, key)
			purged++
		}
	}
	s.fingerprints[campaignID] = fp

	if s.repo != nil {
		if err := s.repo.DeleteCampaignSessions(ctx, campaignID); err != nil {
			s.log.Error("Failed to purge persisted sessions",
				logger.String("campaign_id", campaignID),
				logger.Error(err),
			)
		}
		if err := s.repo.SaveFingerprint(ctx, campaignID, fp); err != nil {
			s.log.Error("Failed to persist fingerprint",
				logger.String("campaign_id", campaignID),
				logger.Error(err),
			)
		}
	}

	s.log.Info("Campaign fingerprint changed, sessions purged",
		logger.String("campaign_id", campaignID),
		logger.Int("purged", purged),
	)
	return false
}

// Load returns the live session for key, if any. Invalid or absent
// sessions report ok=false. Never blocks on I/O.
func (s *Store) Load(key domain.SessionKey) (domain.Session, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return domain.Session{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.session.Valid {
		return domain.Session{}, false
	}
	return e.session, true
}

// Save stores sess under key with last-write-wins semantics. Writers for
// the same key serialize on the entry lock; writers for different keys
// proceed independently.
func (s *Store) Save(ctx context.Context, key domain.SessionKey, sess domain.Session) {
	sess.Key = key
	sess.Valid = true

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = sess

	if s.repo != nil {
		if err := s.repo.SaveSession(ctx, sess); err != nil {
			s.log.Error("Failed to persist session",
				logger.String("key", key.String()),
				logger.Error(err),
			)
		}
	}
}

// Invalidate marks the session for key invalid, independent of
// fingerprint changes. Used when a scrape cycle with the session fails
// for any reason. A no-op for unknown keys; reports whether a live
// session was actually dropped.
func (s *Store) Invalidate(ctx context.Context, key domain.SessionKey) bool {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	wasValid := e.session.Valid
	e.session.Valid = false

	if s.repo != nil {
		if err := s.repo.DeleteSession(ctx, key); err != nil {
			s.log.Error("Failed to delete persisted session",
				logger.String("key", key.String()),
				logger.Error(err),
			)
		}
	}
	return wasValid
}

// Count returns the number of stored sessions, valid or not.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
