package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/goleads/internal/domain"
)

// listSeparator joins target/platform lists for storage.
const listSeparator = ","

// CampaignRepository persists campaign state and counters.
type CampaignRepository struct {
	db *sqlx.DB
}

// NewCampaignRepository creates a campaign repository.
func NewCampaignRepository(db *sqlx.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// campaignRow is the database shape of a campaign.
type campaignRow struct {
	ID         string     `db:"id"`
	Targets    string     `db:"targets"`
	Platforms  string     `db:"platforms"`
	IntervalNs int64      `db:"interval_ns"`
	Status     string     `db:"status"`
	CreatedAt  time.Time  `db:"created_at"`
	StartedAt  *time.Time `db:"started_at"`
	StoppedAt  *time.Time `db:"stopped_at"`
	Processed  int64      `db:"processed"`
	Leads      int64      `db:"leads"`
	Errors     int64      `db:"errors"`
}

// SaveCampaign upserts the full campaign record, counters included.
func (r *CampaignRepository) SaveCampaign(ctx context.Context, c domain.Campaign) error {
	query := `
		INSERT INTO campaigns
			(id, targets, platforms, interval_ns, status, created_at, started_at, stopped_at,
			 processed, leads, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			targets = excluded.targets,
			platforms = excluded.platforms,
			interval_ns = excluded.interval_ns,
			status = excluded.status,
			started_at = excluded.started_at,
			stopped_at = excluded.stopped_at,
			processed = excluded.processed,
			leads = excluded.leads,
			errors = excluded.errors
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		strings.Join(c.Targets, listSeparator),
		strings.Join(c.Platforms, listSeparator),
		int64(c.Interval),
		string(c.Status),
		c.CreatedAt,
		c.StartedAt,
		c.StoppedAt,
		c.Processed,
		c.Leads,
		c.Errors,
	)
	if err != nil {
		return fmt.Errorf("failed to save campaign: %w", err)
	}
	return nil
}

// LoadCampaigns returns every persisted campaign.
func (r *CampaignRepository) LoadCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	var rows []campaignRow
	query := `
		SELECT id, targets, platforms, interval_ns, status, created_at, started_at,
		       stopped_at, processed, leads, errors
		FROM campaigns
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load campaigns: %w", err)
	}

	campaigns := make([]domain.Campaign, 0, len(rows))
	for _, row := range rows {
		campaigns = append(campaigns, domain.Campaign{
			ID:        row.ID,
			Targets:   splitList(row.Targets),
			Platforms: splitList(row.Platforms),
			Interval:  time.Duration(row.IntervalNs),
			Status:    domain.CampaignStatus(row.Status),
			CreatedAt: row.CreatedAt,
			StartedAt: row.StartedAt,
			StoppedAt: row.StoppedAt,
			Processed: row.Processed,
			Leads:     row.Leads,
			Errors:    row.Errors,
		})
	}
	return campaigns, nil
}

func splitList(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, listSeparator)
}
