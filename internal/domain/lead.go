package domain

import (
	"time"
)

// LeadStatus represents the downstream handling state of a lead.
type LeadStatus string

const (
	// LeadNew means the lead has been recorded but not yet delivered.
	LeadNew LeadStatus = "new"
	// LeadNotified means at least one notification attempt was made.
	LeadNotified LeadStatus = "notified"
	// LeadExported means the lead was included in a CSV export.
	LeadExported LeadStatus = "exported"
)

// Candidate is a raw item pulled from an external source. Candidates are
// ephemeral: they are classified and then either promoted to a Lead or
// discarded, never persisted.
type Candidate struct {
	Text      string    `json:"text"`
	Target    string    `json:"target"`
	Platform  string    `json:"platform"`
	FetchedAt time.Time `json:"fetched_at"`

	// Optional structured fields the fetcher managed to extract.
	Identifier string `json:"identifier,omitempty"`
	Price      string `json:"price,omitempty"`
}

// Lead is a classified, retained candidate.
type Lead struct {
	ID         string     `json:"id" db:"id"`
	Target     string     `json:"target" db:"target"`
	Platform   string     `json:"platform" db:"platform"`
	Identifier string     `json:"identifier" db:"identifier"`
	Price      string     `json:"price" db:"price"`
	FirstSeen  time.Time  `json:"first_seen" db:"first_seen"`
	Status     LeadStatus `json:"status" db:"status"`
	Confidence float64    `json:"confidence" db:"confidence"`
}

// Statistics is a derived aggregate over the lead collection.
type Statistics struct {
	Total     int64            `json:"total"`
	ByTarget  map[string]int64 `json:"by_target"`
	Hourly    int64            `json:"hourly"`
	FirstSeen *time.Time       `json:"first_seen,omitempty"`
	LastSeen  *time.Time       `json:"last_seen,omitempty"`
}
