package campaign

import (
	"testing"

	"github.com/jonesrussell/goleads/internal/domain"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.CampaignStatus
		to      domain.CampaignStatus
		wantErr bool
	}{
		// Valid transitions from pending
		{"pending to running", domain.CampaignPending, domain.CampaignRunning, false},
		{"pending to stopped", domain.CampaignPending, domain.CampaignStopped, false},

		// Invalid transitions from pending
		{"pending to failed", domain.CampaignPending, domain.CampaignFailed, true},

		// Valid transitions from running
		{"running to stopped", domain.CampaignRunning, domain.CampaignStopped, false},
		{"running to failed", domain.CampaignRunning, domain.CampaignFailed, false},

		// Invalid transitions from running
		{"running to pending", domain.CampaignRunning, domain.CampaignPending, true},

		// Terminal state: stopped
		{"stopped to running", domain.CampaignStopped, domain.CampaignRunning, true},
		{"stopped to failed", domain.CampaignStopped, domain.CampaignFailed, true},
		{"stopped to pending", domain.CampaignStopped, domain.CampaignPending, true},

		// Terminal state: failed
		{"failed to running", domain.CampaignFailed, domain.CampaignRunning, true},
		{"failed to stopped", domain.CampaignFailed, domain.CampaignStopped, true},
		{"failed to pending", domain.CampaignFailed, domain.CampaignPending, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTransition(%v, %v) error = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTransitionUnknownState(t *testing.T) {
	if err := ValidateTransition(domain.CampaignStatus("archived"), domain.CampaignRunning); err == nil {
		t.Error("expected error for unknown source state")
	}
}
