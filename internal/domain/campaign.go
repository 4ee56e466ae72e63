// Package domain provides domain models used across the application.
package domain

import (
	"time"
)

// CampaignStatus represents the lifecycle state of a campaign.
type CampaignStatus string

const (
	// CampaignPending means the campaign is created but not yet running.
	CampaignPending CampaignStatus = "pending"
	// CampaignRunning means the campaign's polling loops are active.
	CampaignRunning CampaignStatus = "running"
	// CampaignStopped means the campaign was stopped explicitly. Terminal.
	CampaignStopped CampaignStatus = "stopped"
	// CampaignFailed means the campaign hit its consecutive error
	// threshold on a key. Terminal.
	CampaignFailed CampaignStatus = "failed"
)

// Campaign represents a per-target scraping campaign.
type Campaign struct {
	ID        string         `json:"id" db:"id"`
	Targets   []string       `json:"targets" db:"-"`
	Platforms []string       `json:"platforms" db:"-"`
	Interval  time.Duration  `json:"interval" db:"interval_ns"`
	Status    CampaignStatus `json:"status" db:"status"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	StartedAt *time.Time     `json:"started_at,omitempty" db:"started_at"`
	StoppedAt *time.Time     `json:"stopped_at,omitempty" db:"stopped_at"`

	// Aggregate counters, updated by the polling loops.
	Processed int64 `json:"processed" db:"processed"`
	Leads     int64 `json:"leads" db:"leads"`
	Errors    int64 `json:"errors" db:"errors"`
}

// Snapshot returns a deep copy of the campaign safe to hand to callers
// while the polling loops keep mutating the original.
func (c *Campaign) Snapshot() Campaign {
	cp := *c
	cp.Targets = append([]string(nil), c.Targets...)
	cp.Platforms = append([]string(nil), c.Platforms...)
	return cp
}

// IsTerminal reports whether the status admits no further transitions.
func (s CampaignStatus) IsTerminal() bool {
	return s == CampaignStopped || s == CampaignFailed
}
