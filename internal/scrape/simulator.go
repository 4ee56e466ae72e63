package scrape

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jonesrussell/goleads/internal/domain"
)

// Simulator generates synthetic listings instead of hitting a real
// platform. Used in demo mode and in tests; implements both Fetcher and
// LoginProvider.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand

	// FailureRate in [0,1] makes a fetch fail with that probability.
	FailureRate float64
}

// NewSimulator creates a simulator seeded from the clock.
func NewSimulator() *Simulator {
	return &Simulator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// stateCode prefixes for generated registration numbers.
var stateCodes = []string{"DL", "MH", "KA", "TN", "WB", "GJ", "RJ", "UP"}

// descriptors pad the candidate text so keyword detection has something
// to chew on.
var descriptors = []string{
	"well maintained car, single owner, price negotiable",
	"vehicle in showroom condition, low mileage",
	"bike for sale, registration papers clear",
	"auto listing, year 2021, good price",
	"scrap metal pickup available",
	"furniture and appliances, moving sale",
}

const (
	minBatch  = 1
	maxBatch  = 3
	minPrice  = 100000
	maxPrice  = 600000
	leadRatio = 4 // roughly one in leadRatio descriptors is off-topic
)

// FetchCandidates returns a small random batch of synthetic listings.
func (s *Simulator) FetchCandidates(ctx context.Context, platform, target string, _ domain.Session) ([]domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailureRate > 0 && s.rng.Float64() < s.FailureRate {
		return nil, fmt.Errorf("simulated fetch failure for %s/%s", platform, target)
	}

	count := minBatch + s.rng.Intn(maxBatch-minBatch+1)
	batch := make([]domain.Candidate, 0, count)
	for i := 0; i < count; i++ {
		reg := s.registration()
		desc := descriptors[s.rng.Intn(len(descriptors))]
		batch = append(batch, domain.Candidate{
			Text:       fmt.Sprintf("%s %s", reg, desc),
			Target:     target,
			Platform:   platform,
			FetchedAt:  time.Now(),
			Identifier: reg,
			Price:      fmt.Sprintf("₹%d", minPrice+s.rng.Intn(maxPrice-minPrice)),
		})
	}
	return batch, nil
}

// Login issues a synthetic session.
func (s *Simulator) Login(_ context.Context, platform, target string) (domain.Session, error) {
	s.mu.Lock()
	token := s.rng.Int63()
	s.mu.Unlock()

	return domain.Session{
		Cookies:    fmt.Sprintf("sim_session=%s-%s-%d", platform, target, token),
		AcquiredAt: time.Now(),
		Valid:      true,
	}, nil
}

// registration generates a plausible registration number, e.g.
// "DL01AB1234". Caller holds s.mu.
func (s *Simulator) registration() string {
	state := stateCodes[s.rng.Intn(len(stateCodes))]
	return fmt.Sprintf("%s%02d%c%c%04d",
		state,
		1+s.rng.Intn(99),
		'A'+rune(s.rng.Intn(26)),
		'A'+rune(s.rng.Intn(26)),
		s.rng.Intn(10000),
	)
}
