// Package leads provides deduplication and aggregation of discovered
// leads, with point-in-time consistent statistics.
package leads

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/jonesrussell/goleads/internal/domain"
	"github.com/jonesrussell/goleads/internal/logger"
)

// Repository persists accepted leads. Persistence is best effort: a
// repository error never rejects a lead.
type Repository interface {
	SaveLead(ctx context.Context, lead domain.Lead) error
	UpdateLeadStatus(ctx context.Context, id string, status domain.LeadStatus) error
	LoadLeads(ctx context.Context) ([]domain.Lead, error)
}

// dedupKey identifies a lead for duplicate detection.
type dedupKey struct {
	target     string
	platform   string
	identifier string
}

// Aggregator accumulates leads for the process lifetime. Leads are
// append-only; only their status transitions. All mutation flows through
// a single lock so Stats always reflects exactly the records accepted
// before the snapshot.
type Aggregator struct {
	mu     sync.Mutex
	leads  []domain.Lead
	index  map[dedupKey]int
	stats  domain.Statistics
	hourAt time.Time

	repo Repository // optional
	log  logger.Logger
	now  func() time.Time
}

// NewAggregator creates an aggregator. repo may be nil for a purely
// in-memory collection.
func NewAggregator(repo Repository, log logger.Logger) *Aggregator {
	return &Aggregator{
		index: make(map[dedupKey]int),
		stats: domain.Statistics{ByTarget: make(map[string]int64)},
		repo:  repo,
		log:   log,
		now:   time.Now,
	}
}

// Restore loads persisted leads into the aggregator. Called once at
// startup; restored leads participate in duplicate detection.
func (a *Aggregator) Restore(ctx context.Context) error {
	if a.repo == nil {
		return nil
	}

	persisted, err := a.repo.LoadLeads(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, lead := range persisted {
		key := dedupKey{lead.Target, lead.Platform, NormalizeIdentifier(lead.Identifier)}
		if _, dup := a.index[key]; dup {
			continue
		}
		a.index[key] = len(a.leads)
		a.leads = append(a.leads, lead)
		a.applyToStats(lead)
	}

	a.log.Info("Lead collection restored", logger.Int("leads", len(a.leads)))
	return nil
}

// NormalizeIdentifier case-folds and strips all whitespace from an
// identifier before duplicate comparison.
func NormalizeIdentifier(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Record appends lead unless a duplicate with the same
// (target, platform, normalized identifier) was already accepted.
// Rejected duplicates do not alter statistics.
func (a *Aggregator) Record(ctx context.Context, lead domain.Lead) (accepted bool) {
	key := dedupKey{lead.Target, lead.Platform, NormalizeIdentifier(lead.Identifier)}

	a.mu.Lock()
	if _, dup := a.index[key]; dup {
		a.mu.Unlock()
		a.log.Debug("Duplicate lead rejected",
			logger.String("target", lead.Target),
			logger.String("platform", lead.Platform),
			logger.String("identifier", lead.Identifier),
		)
		return false
	}

	if lead.Status == "" {
		lead.Status = domain.LeadNew
	}
	if lead.FirstSeen.IsZero() {
		lead.FirstSeen = a.now()
	}

	a.index[key] = len(a.leads)
	a.leads = append(a.leads, lead)
	a.applyToStats(lead)
	a.mu.Unlock()

	if a.repo != nil {
		if err := a.repo.SaveLead(ctx, lead); err != nil {
			a.log.Error("Failed to persist lead",
				logger.String("lead_id", lead.ID),
				logger.Error(err),
			)
		}
	}
	return true
}

// applyToStats updates the aggregate counters for an accepted lead.
// Caller holds a.mu.
func (a *Aggregator) applyToStats(lead domain.Lead) {
	// Hourly counter resets when the wall-clock hour rolls over.
	hour := lead.FirstSeen.Truncate(time.Hour)
	if hour.After(a.hourAt) {
		a.hourAt = hour
		a.stats.Hourly = 0
	}

	a.stats.Total++
	a.stats.Hourly++
	a.stats.ByTarget[lead.Target]++

	seen := lead.FirstSeen
	if a.stats.FirstSeen == nil || seen.Before(*a.stats.FirstSeen) {
		first := seen
		a.stats.FirstSeen = &first
	}
	if a.stats.LastSeen == nil || seen.After(*a.stats.LastSeen) {
		last := seen
		a.stats.LastSeen = &last
	}
}

// Stats returns a consistent snapshot of the aggregate counters.
func (a *Aggregator) Stats() domain.Statistics {
	a.mu.Lock()
	defer a.mu.Unlock()

	snapshot := a.stats
	snapshot.ByTarget = make(map[string]int64, len(a.stats.ByTarget))
	for target, count := range a.stats.ByTarget {
		snapshot.ByTarget[target] = count
	}
	return snapshot
}

// Export returns every accepted lead in insertion order. The returned
// slice is a copy; mutating it does not affect the collection.
func (a *Aggregator) Export() []domain.Lead {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Lead(nil), a.leads...)
}

// MarkStatus transitions the status of a recorded lead. Unknown ids are
// ignored.
func (a *Aggregator) MarkStatus(ctx context.Context, id string, status domain.LeadStatus) {
	a.mu.Lock()
	found := false
	for i := range a.leads {
		if a.leads[i].ID == id {
			a.leads[i].Status = status
			found = true
			break
		}
	}
	a.mu.Unlock()

	if found && a.repo != nil {
		if err := a.repo.UpdateLeadStatus(ctx, id, status); err != nil {
			a.log.Error("Failed to persist lead status",
				logger.String("lead_id", id),
				logger.Error(err),
			)
		}
	}
}
