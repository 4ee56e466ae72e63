package detector

import (
	"context"
	"errors"

	"github.com/jonesrussell/goleads/internal/domain"
	"github.com/jonesrussell/goleads/internal/logger"
)

// ErrNoBackend is returned when every backend in a chain errored.
var ErrNoBackend = errors.New("no detector backend produced a verdict")

// Chain tries an ordered list of backends until one succeeds. A backend
// error is logged and the next backend is consulted; only when every
// backend errors does the chain itself return an error, which callers
// treat as not-a-lead.
type Chain struct {
	backends []Detector
	log      logger.Logger
}

// NewChain creates a detector chain over the given backends, tried in
// order.
func NewChain(log logger.Logger, backends ...Detector) *Chain {
	return &Chain{
		backends: backends,
		log:      log,
	}
}

// Name identifies the backend in logs.
func (c *Chain) Name() string { return "chain" }

// Classify consults each backend in order, returning the first verdict.
func (c *Chain) Classify(ctx context.Context, candidate domain.Candidate) (Result, error) {
	for _, backend := range c.backends {
		result, err := backend.Classify(ctx, candidate)
		if err != nil {
			c.log.Warn("Detector backend failed, trying next",
				logger.String("backend", backend.Name()),
				logger.Error(err),
			)
			continue
		}
		return result, nil
	}
	return Result{}, ErrNoBackend
}
