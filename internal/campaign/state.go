package campaign

import (
	"fmt"

	"github.com/jonesrussell/goleads/internal/domain"
)

// ValidateTransition checks if a campaign state transition is valid.
// Returns an error if the transition is not allowed.
func ValidateTransition(from, to domain.CampaignStatus) error {
	validTransitions := map[domain.CampaignStatus][]domain.CampaignStatus{
		domain.CampaignPending: {
			domain.CampaignRunning, // Start
			domain.CampaignStopped, // Stopped before the first cycle
		},
		domain.CampaignRunning: {
			domain.CampaignStopped, // Manual stop
			domain.CampaignFailed,  // Consecutive error threshold reached
		},
		// Terminal states
		domain.CampaignStopped: {},
		domain.CampaignFailed:  {},
	}

	allowedStates, exists := validTransitions[from]
	if !exists {
		return fmt.Errorf("unknown source state: %s", from)
	}

	for _, allowed := range allowedStates {
		if allowed == to {
			return nil
		}
	}

	return fmt.Errorf("invalid state transition from %s to %s", from, to)
}
