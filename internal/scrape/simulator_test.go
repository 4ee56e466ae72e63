package scrape_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/goleads/internal/domain"
	"github.com/jonesrussell/goleads/internal/scrape"
)

var registrationShape = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z]{2}[0-9]{4}$`)

func TestSimulator_FetchCandidates(t *testing.T) {
	t.Parallel()

	sim := scrape.NewSimulator()
	sess, err := sim.Login(context.Background(), "olx", "Delhi")
	require.NoError(t, err)
	assert.True(t, sess.Valid)
	assert.NotEmpty(t, sess.Cookies)

	batch, err := sim.FetchCandidates(context.Background(), "olx", "Delhi", sess)
	require.NoError(t, err)
	require.NotEmpty(t, batch)

	for _, c := range batch {
		assert.Equal(t, "Delhi", c.Target)
		assert.Equal(t, "olx", c.Platform)
		assert.Regexp(t, registrationShape, c.Identifier)
		assert.Contains(t, c.Text, c.Identifier)
		assert.NotEmpty(t, c.Price)
	}
}

func TestSimulator_FailureRate(t *testing.T) {
	t.Parallel()

	sim := scrape.NewSimulator()
	sim.FailureRate = 1.0

	_, err := sim.FetchCandidates(context.Background(), "olx", "Delhi", domain.Session{})
	assert.Error(t, err)
}

func TestSimulator_CancelledContext(t *testing.T) {
	t.Parallel()

	sim := scrape.NewSimulator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.FetchCandidates(ctx, "olx", "Delhi", domain.Session{})
	assert.ErrorIs(t, err, context.Canceled)
}
