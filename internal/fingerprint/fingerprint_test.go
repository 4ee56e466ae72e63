package fingerprint_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/goleads/internal/fingerprint"
)

func TestCompute_OrderIndependent(t *testing.T) {
	t.Parallel()

	a := fingerprint.Compute(
		[]string{"Delhi", "Mumbai"},
		[]string{"olx", "cardekho"},
		5*time.Second,
	)
	b := fingerprint.Compute(
		[]string{"Mumbai", "Delhi"},
		[]string{"cardekho", "olx"},
		5*time.Second,
	)

	assert.Equal(t, a, b, "reordering targets/platforms must not change the fingerprint")
}

func TestCompute_ChangesWithTuple(t *testing.T) {
	t.Parallel()

	base := fingerprint.Compute([]string{"Delhi"}, []string{"olx"}, 5*time.Second)

	tests := []struct {
		name      string
		targets   []string
		platforms []string
		interval  time.Duration
	}{
		{"different target", []string{"Mumbai"}, []string{"olx"}, 5 * time.Second},
		{"added target", []string{"Delhi", "Mumbai"}, []string{"olx"}, 5 * time.Second},
		{"different platform", []string{"Delhi"}, []string{"cardekho"}, 5 * time.Second},
		{"different interval", []string{"Delhi"}, []string{"olx"}, 10 * time.Second},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := fingerprint.Compute(tt.targets, tt.platforms, tt.interval)
			assert.NotEqual(t, base, got)
		})
	}
}

func TestCompute_IgnoresDuplicatesAndWhitespace(t *testing.T) {
	t.Parallel()

	a := fingerprint.Compute([]string{"Delhi", "Delhi", " Mumbai "}, []string{"olx"}, time.Minute)
	b := fingerprint.Compute([]string{"Mumbai", "Delhi"}, []string{"olx"}, time.Minute)

	assert.Equal(t, a, b)
}

func TestCompute_Deterministic(t *testing.T) {
	t.Parallel()

	a := fingerprint.Compute([]string{"Delhi"}, []string{"olx"}, time.Minute)
	b := fingerprint.Compute([]string{"Delhi"}, []string{"olx"}, time.Minute)

	assert.Equal(t, a, b)
	assert.Len(t, string(a), 64, "hex-encoded SHA-256")
}
