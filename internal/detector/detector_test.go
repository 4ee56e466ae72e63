package detector_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/goleads/internal/detector"
	"github.com/jonesrussell/goleads/internal/domain"
	"github.com/jonesrussell/goleads/internal/logger"
)

func TestKeywordDetector(t *testing.T) {
	t.Parallel()

	d := detector.NewKeywordDetector(nil, 0)

	tests := []struct {
		name   string
		text   string
		isLead bool
	}{
		{"two keyword hits", "used car for sale, great price", true},
		{"many hits", "vehicle registration year 2020 price negotiable", true},
		{"single hit", "car spotted downtown", false},
		{"no hits", "apartment for rent", false},
		{"case insensitive", "CAR with low MILEAGE", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result, err := d.Classify(context.Background(), domain.Candidate{Text: tt.text})
			require.NoError(t, err)
			assert.Equal(t, tt.isLead, result.IsLead)
			assert.GreaterOrEqual(t, result.Confidence, 0.0)
			assert.LessOrEqual(t, result.Confidence, 1.0)
		})
	}
}

func TestPatternDetector(t *testing.T) {
	t.Parallel()

	d := detector.NewPatternDetector()

	result, err := d.Classify(context.Background(), domain.Candidate{
		Text: "selling my hatchback DL01AB1234 urgently",
	})
	require.NoError(t, err)
	assert.True(t, result.IsLead)
	assert.InDelta(t, 0.95, result.Confidence, 0.001)

	result, err = d.Classify(context.Background(), domain.Candidate{Text: "no plates here"})
	require.NoError(t, err)
	assert.False(t, result.IsLead)
}

func TestExtractRegistration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "DL01AB1234", detector.ExtractRegistration("plate DL01AB1234 listed"))
	assert.Equal(t, "MH12X4321", detector.ExtractRegistration("MH12X4321"))
	assert.Empty(t, detector.ExtractRegistration("nothing"))
}

// failingDetector always errors, for chain fallback tests.
type failingDetector struct{}

func (failingDetector) Name() string { return "failing" }

func (failingDetector) Classify(context.Context, domain.Candidate) (detector.Result, error) {
	return detector.Result{}, errors.New("backend unavailable")
}

func TestChain_FallsThroughOnError(t *testing.T) {
	t.Parallel()

	chain := detector.NewChain(
		logger.NewNop(),
		failingDetector{},
		detector.NewKeywordDetector(nil, 0),
	)

	result, err := chain.Classify(context.Background(), domain.Candidate{
		Text: "car at a good price",
	})
	require.NoError(t, err)
	assert.True(t, result.IsLead)
}

func TestChain_AllBackendsFail(t *testing.T) {
	t.Parallel()

	chain := detector.NewChain(logger.NewNop(), failingDetector{}, failingDetector{})

	_, err := chain.Classify(context.Background(), domain.Candidate{Text: "car price"})
	assert.ErrorIs(t, err, detector.ErrNoBackend)
}

func TestChain_FirstVerdictWins(t *testing.T) {
	t.Parallel()

	// Pattern fires first; keyword never consulted.
	chain := detector.NewChain(
		logger.NewNop(),
		detector.NewPatternDetector(),
		detector.NewKeywordDetector(nil, 0),
	)

	result, err := chain.Classify(context.Background(), domain.Candidate{
		Text: "DL01AB1234",
	})
	require.NoError(t, err)
	assert.True(t, result.IsLead)
	assert.InDelta(t, 0.95, result.Confidence, 0.001)
}
