// Package detector provides lead classification over raw candidates.
//
// The scheduler depends only on the Detector interface; concrete backends
// (keyword heuristic, registration-pattern match, or anything remote) are
// interchangeable. Backends are expected to fail closed: callers treat
// any error as "not a lead" and keep going.
package detector

import (
	"context"

	"github.com/jonesrussell/goleads/internal/domain"
)

// Result is the outcome of classifying a single candidate.
type Result struct {
	// IsLead reports whether the candidate should be promoted to a lead.
	IsLead bool
	// Confidence is the backend's confidence in [0, 1].
	Confidence float64
}

// Detector classifies a raw candidate into lead or noise.
type Detector interface {
	// Classify inspects the candidate and returns a classification.
	// A non-nil error means the backend could not produce a verdict;
	// the caller must treat that as not-a-lead and continue.
	Classify(ctx context.Context, candidate domain.Candidate) (Result, error)
	// Name identifies the backend in logs.
	Name() string
}
