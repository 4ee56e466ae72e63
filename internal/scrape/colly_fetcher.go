package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	colly "github.com/gocolly/colly/v2"

	"github.com/jonesrussell/goleads/internal/detector"
	"github.com/jonesrussell/goleads/internal/domain"
	"github.com/jonesrussell/goleads/internal/logger"
)

// Collector defaults.
const (
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultRequestTimeout = 30 * time.Second
	targetPlaceholder     = "{target}"
)

// ListingFetcher scrapes listing pages with colly according to
// per-platform selector configuration.
type ListingFetcher struct {
	platforms map[string]PlatformConfig
	log       logger.Logger
}

// NewListingFetcher creates a fetcher over the configured platforms.
func NewListingFetcher(platforms []PlatformConfig, log logger.Logger) *ListingFetcher {
	byName := make(map[string]PlatformConfig, len(platforms))
	for _, p := range platforms {
		byName[p.Name] = p
	}
	return &ListingFetcher{
		platforms: byName,
		log:       log,
	}
}

// FetchCandidates visits the platform's listing page for target and
// extracts one candidate per matched item.
func (f *ListingFetcher) FetchCandidates(ctx context.Context, platform, target string, session domain.Session) ([]domain.Candidate, error) {
	cfg, ok := f.platforms[platform]
	if !ok {
		return nil, fmt.Errorf("unknown platform: %s", platform)
	}

	timeout := defaultRequestTimeout
	if deadline, hasDeadline := ctx.Deadline(); hasDeadline {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	c := colly.NewCollector(
		colly.UserAgent(defaultUserAgent),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(timeout)

	c.OnRequest(func(r *colly.Request) {
		if session.Cookies != "" {
			r.Headers.Set("Cookie", session.Cookies)
		}
	})

	var (
		candidates []domain.Candidate
		fetchErr   error
	)

	c.OnHTML(cfg.ItemSelector, func(e *colly.HTMLElement) {
		candidates = append(candidates, f.extractCandidate(e.DOM, cfg, platform, target))
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && (r.StatusCode == 401 || r.StatusCode == 403) {
			fetchErr = fmt.Errorf("%w: status %d", ErrSessionInvalid, r.StatusCode)
			return
		}
		fetchErr = fmt.Errorf("fetch %s: %w", r.Request.URL, err)
	})

	url := strings.ReplaceAll(cfg.URL, targetPlaceholder, strings.ToLower(target))
	if err := c.Visit(url); err != nil {
		return nil, fmt.Errorf("visit %s: %w", url, err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.log.Debug("Fetched candidates",
		logger.String("platform", platform),
		logger.String("target", target),
		logger.Int("count", len(candidates)),
	)
	return candidates, nil
}

// extractCandidate pulls the text, identifier, and price fields out of
// one listing element.
func (f *ListingFetcher) extractCandidate(sel *goquery.Selection, cfg PlatformConfig, platform, target string) domain.Candidate {
	text := strings.TrimSpace(sel.Text())

	price := ""
	if cfg.PriceSelector != "" {
		price = strings.TrimSpace(sel.Find(cfg.PriceSelector).First().Text())
	}

	return domain.Candidate{
		Text:       text,
		Target:     target,
		Platform:   platform,
		FetchedAt:  time.Now(),
		Identifier: detector.ExtractRegistration(text),
		Price:      price,
	}
}

// Login issues a session from the platform's configured static cookies.
// Platforms without cookies get an anonymous session.
func (f *ListingFetcher) Login(_ context.Context, platform, target string) (domain.Session, error) {
	cfg, ok := f.platforms[platform]
	if !ok {
		return domain.Session{}, fmt.Errorf("unknown platform: %s", platform)
	}

	return domain.Session{
		Cookies:    cfg.Cookies,
		AcquiredAt: time.Now(),
		Valid:      true,
	}, nil
}
