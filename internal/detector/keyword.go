package detector

import (
	"context"
	"strings"

	"github.com/jonesrussell/goleads/internal/domain"
)

// DefaultKeywords is the fallback vocabulary used when no keywords are
// configured.
var DefaultKeywords = []string{
	"car", "vehicle", "auto", "bike",
	"registration", "price", "year", "mileage",
}

// DefaultMinMatches is the number of distinct keyword hits required
// before a candidate counts as a lead.
const DefaultMinMatches = 2

// KeywordDetector classifies candidates by counting distinct keyword
// occurrences in the candidate text.
type KeywordDetector struct {
	keywords   []string
	minMatches int
}

// NewKeywordDetector creates a keyword detector. Empty keywords fall
// back to DefaultKeywords; a non-positive minMatches falls back to
// DefaultMinMatches.
func NewKeywordDetector(keywords []string, minMatches int) *KeywordDetector {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	if minMatches <= 0 {
		minMatches = DefaultMinMatches
	}
	return &KeywordDetector{
		keywords:   keywords,
		minMatches: minMatches,
	}
}

// Name identifies the backend in logs.
func (d *KeywordDetector) Name() string { return "keyword" }

// Classify counts distinct keyword hits in the candidate text.
func (d *KeywordDetector) Classify(_ context.Context, candidate domain.Candidate) (Result, error) {
	text := strings.ToLower(candidate.Text)

	matched := 0
	for _, kw := range d.keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			matched++
		}
	}

	confidence := float64(matched) / float64(len(d.keywords))
	if confidence > 1 {
		confidence = 1
	}

	return Result{
		IsLead:     matched >= d.minMatches,
		Confidence: confidence,
	}, nil
}
