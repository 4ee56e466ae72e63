package api

import "github.com/jonesrussell/goleads/internal/domain"

// CreateCampaignRequest is the body for POST /api/campaigns.
type CreateCampaignRequest struct {
	// ID optionally names the campaign. Reusing the ID of a finished
	// campaign with unchanged parameters reuses its stored sessions.
	ID string `json:"id"`
	// Targets are the search phrases to poll for.
	Targets []string `json:"targets" binding:"required"`
	// Platforms restricts the campaign to these platforms. Defaults to
	// every configured platform when empty.
	Platforms []string `json:"platforms"`
	// Interval is the polling interval, e.g. "5m". Defaults to the
	// configured scheduler interval when empty.
	Interval string `json:"interval"`
}

// CampaignsListResponse is the body for GET /api/campaigns.
type CampaignsListResponse struct {
	Campaigns []domain.Campaign `json:"campaigns"`
	Total     int               `json:"total"`
}

// LeadsListResponse is the body for GET /api/leads.
type LeadsListResponse struct {
	Leads []domain.Lead `json:"leads"`
	Total int           `json:"total"`
}

// TargetsResponse is the body for GET /api/targets.
type TargetsResponse struct {
	Targets   []string `json:"targets"`
	Platforms []string `json:"platforms"`
}
