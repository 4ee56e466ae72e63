package domain

import (
	"time"
)

// SessionKey addresses a session within a campaign. Immutable once
// constructed.
type SessionKey struct {
	CampaignID string `json:"campaign_id" db:"campaign_id"`
	Platform   string `json:"platform" db:"platform"`
	Target     string `json:"target" db:"target"`
}

// String returns a stable textual form usable as a map key.
func (k SessionKey) String() string {
	return k.CampaignID + "/" + k.Platform + "/" + k.Target
}

// Session holds the credential payload acquired by a login against a
// platform. A session is superseded atomically when a new one is saved
// under the same key.
type Session struct {
	Key        SessionKey `json:"key"`
	Cookies    string     `json:"cookies" db:"cookies"`
	AcquiredAt time.Time  `json:"acquired_at" db:"acquired_at"`
	Valid      bool       `json:"valid" db:"valid"`
}

// Event is the shape broadcast to notification sinks and the live
// dashboard channel.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Lead      *Lead       `json:"lead,omitempty"`
	Campaign  *Campaign   `json:"campaign,omitempty"`
	Stats     *Statistics `json:"stats,omitempty"`
}

// Event types published by the scheduler and aggregator.
const (
	EventLeadFound      = "lead_found"
	EventCampaignStatus = "campaign_status"
	EventStatsUpdate    = "stats_update"
)
