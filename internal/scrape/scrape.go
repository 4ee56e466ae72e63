// Package scrape defines the external collaborator contracts the
// campaign scheduler calls into, plus the shipped implementations: a
// colly-backed listing fetcher and a simulated fetcher for demo runs.
//
// The scheduler depends only on the Fetcher and LoginProvider
// interfaces; everything else in this package is an adapter.
package scrape

import (
	"context"
	"errors"

	"github.com/jonesrussell/goleads/internal/domain"
)

// ErrSessionInvalid reports that the session used for a fetch was
// rejected by the platform. The caller re-logins on the next cycle.
var ErrSessionInvalid = errors.New("session invalid or expired")

// Fetcher pulls one batch of raw candidates for a (platform, target)
// pair using an acquired session. May be slow; callers must bound it
// with a context timeout.
type Fetcher interface {
	FetchCandidates(ctx context.Context, platform, target string, session domain.Session) ([]domain.Candidate, error)
}

// LoginProvider acquires a fresh session for a (platform, target) pair.
// Invoked only when the session store has no valid session for a key.
type LoginProvider interface {
	Login(ctx context.Context, platform, target string) (domain.Session, error)
}

// PlatformConfig describes how to scrape one platform.
type PlatformConfig struct {
	// Name is the platform identifier used in campaigns.
	Name string `mapstructure:"name" yaml:"name"`
	// URL is the listing URL; the literal "{target}" is replaced by
	// the campaign target.
	URL string `mapstructure:"url" yaml:"url"`
	// ItemSelector is the CSS selector matching one listing.
	ItemSelector string `mapstructure:"item_selector" yaml:"item_selector"`
	// PriceSelector is the CSS selector for the price inside a listing.
	PriceSelector string `mapstructure:"price_selector" yaml:"price_selector"`
	// Cookies is an optional static cookie header granting access.
	Cookies string `mapstructure:"cookies" yaml:"cookies"`
}
