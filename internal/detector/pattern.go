package detector

import (
	"context"
	"regexp"

	"github.com/jonesrussell/goleads/internal/domain"
)

// registrationPattern matches Indian vehicle registration numbers,
// e.g. "DL01AB1234".
var registrationPattern = regexp.MustCompile(`[A-Z]{2}[0-9]{2}[A-Z]{1,2}[0-9]{4}`)

const patternConfidence = 0.95

// PatternDetector classifies candidates whose text or identifier carries
// a recognizable vehicle registration number. High precision, low
// recall: it only fires on an explicit registration match.
type PatternDetector struct{}

// NewPatternDetector creates a pattern detector.
func NewPatternDetector() *PatternDetector {
	return &PatternDetector{}
}

// Name identifies the backend in logs.
func (d *PatternDetector) Name() string { return "pattern" }

// Classify reports a lead when a registration number is present.
func (d *PatternDetector) Classify(_ context.Context, candidate domain.Candidate) (Result, error) {
	if registrationPattern.MatchString(candidate.Identifier) ||
		registrationPattern.MatchString(candidate.Text) {
		return Result{IsLead: true, Confidence: patternConfidence}, nil
	}
	return Result{}, nil
}

// ExtractRegistration returns the first registration number found in
// text, or "" when none is present.
func ExtractRegistration(text string) string {
	return registrationPattern.FindString(text)
}
