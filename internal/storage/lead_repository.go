package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/goleads/internal/domain"
)

// LeadRepository persists accepted leads.
type LeadRepository struct {
	db *sqlx.DB
}

// NewLeadRepository creates a lead repository.
func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// SaveLead inserts a lead. Duplicate ids are ignored; dedup by identity
// is the aggregator's job.
func (r *LeadRepository) SaveLead(ctx context.Context, lead domain.Lead) error {
	query := `
		INSERT OR IGNORE INTO leads
			(id, target, platform, identifier, price, first_seen, status, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		lead.ID, lead.Target, lead.Platform, lead.Identifier,
		lead.Price, lead.FirstSeen, string(lead.Status), lead.Confidence)
	if err != nil {
		return fmt.Errorf("failed to save lead: %w", err)
	}
	return nil
}

// UpdateLeadStatus transitions a persisted lead's status.
func (r *LeadRepository) UpdateLeadStatus(ctx context.Context, id string, status domain.LeadStatus) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE leads SET status = ? WHERE id = ?`, string(status), id); err != nil {
		return fmt.Errorf("failed to update lead status: %w", err)
	}
	return nil
}

// LoadLeads returns all persisted leads in insertion order.
func (r *LeadRepository) LoadLeads(ctx context.Context) ([]domain.Lead, error) {
	var rows []domain.Lead
	query := `
		SELECT id, target, platform, identifier, price, first_seen, status, confidence
		FROM leads
		ORDER BY rowid
	`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}
	return rows, nil
}
