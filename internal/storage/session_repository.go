package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/goleads/internal/domain"
	"github.com/jonesrussell/goleads/internal/fingerprint"
)

// SessionRepository persists sessions and campaign fingerprints.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// sessionRow is the database shape of a session.
type sessionRow struct {
	CampaignID string    `db:"campaign_id"`
	Platform   string    `db:"platform"`
	Target     string    `db:"target"`
	Cookies    string    `db:"cookies"`
	AcquiredAt time.Time `db:"acquired_at"`
}

// SaveSession upserts a session; last write wins.
func (r *SessionRepository) SaveSession(ctx context.Context, s domain.Session) error {
	query := `
		INSERT INTO sessions (campaign_id, platform, target, cookies, acquired_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (campaign_id, platform, target)
		DO UPDATE SET cookies = excluded.cookies, acquired_at = excluded.acquired_at
	`
	_, err := r.db.ExecContext(ctx, query,
		s.Key.CampaignID, s.Key.Platform, s.Key.Target, s.Cookies, s.AcquiredAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// DeleteSession removes the session for a single key.
func (r *SessionRepository) DeleteSession(ctx context.Context, key domain.SessionKey) error {
	query := `DELETE FROM sessions WHERE campaign_id = ? AND platform = ? AND target = ?`
	if _, err := r.db.ExecContext(ctx, query, key.CampaignID, key.Platform, key.Target); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteCampaignSessions removes every session under a campaign.
func (r *SessionRepository) DeleteCampaignSessions(ctx context.Context, campaignID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE campaign_id = ?`, campaignID); err != nil {
		return fmt.Errorf("failed to delete campaign sessions: %w", err)
	}
	return nil
}

// SaveFingerprint upserts the recorded fingerprint for a campaign.
func (r *SessionRepository) SaveFingerprint(ctx context.Context, campaignID string, fp fingerprint.Fingerprint) error {
	query := `
		INSERT INTO fingerprints (campaign_id, fingerprint)
		VALUES (?, ?)
		ON CONFLICT (campaign_id) DO UPDATE SET fingerprint = excluded.fingerprint
	`
	if _, err := r.db.ExecContext(ctx, query, campaignID, string(fp)); err != nil {
		return fmt.Errorf("failed to save fingerprint: %w", err)
	}
	return nil
}

// LoadSessions returns every persisted session.
func (r *SessionRepository) LoadSessions(ctx context.Context) ([]domain.Session, error) {
	var rows []sessionRow
	query := `SELECT campaign_id, platform, target, cookies, acquired_at FROM sessions`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	sessions := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, domain.Session{
			Key: domain.SessionKey{
				CampaignID: row.CampaignID,
				Platform:   row.Platform,
				Target:     row.Target,
			},
			Cookies:    row.Cookies,
			AcquiredAt: row.AcquiredAt,
			Valid:      true,
		})
	}
	return sessions, nil
}

// LoadFingerprints returns the recorded fingerprint per campaign.
func (r *SessionRepository) LoadFingerprints(ctx context.Context) (map[string]fingerprint.Fingerprint, error) {
	var rows []struct {
		CampaignID  string `db:"campaign_id"`
		Fingerprint string `db:"fingerprint"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT campaign_id, fingerprint FROM fingerprints`); err != nil {
		return nil, fmt.Errorf("failed to load fingerprints: %w", err)
	}

	fps := make(map[string]fingerprint.Fingerprint, len(rows))
	for _, row := range rows {
		fps[row.CampaignID] = fingerprint.Fingerprint(row.Fingerprint)
	}
	return fps, nil
}
