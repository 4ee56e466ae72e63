package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/goleads/internal/domain"
	"github.com/jonesrussell/goleads/internal/fingerprint"
	"github.com/jonesrussell/goleads/internal/logger"
	"github.com/jonesrussell/goleads/internal/session"
)

func newStore() *session.Store {
	return session.NewStore(nil, logger.NewNop())
}

func key(campaign, platform, target string) domain.SessionKey {
	return domain.SessionKey{CampaignID: campaign, Platform: platform, Target: target}
}

func TestCheckFingerprint_UnchangedReuses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore()
	fp := fingerprint.Compute([]string{"Delhi"}, []string{"olx"}, time.Minute)

	reused := store.CheckFingerprint(ctx, "c1", fp)
	assert.False(t, reused, "first check records the fingerprint")

	k := key("c1", "olx", "Delhi")
	store.Save(ctx, k, domain.Session{Cookies: "abc", AcquiredAt: time.Now()})

	reused = store.CheckFingerprint(ctx, "c1", fp)
	assert.True(t, reused, "unchanged fingerprint must reuse")

	_, ok := store.Load(k)
	assert.True(t, ok, "sessions survive an unchanged fingerprint check")
}

func TestCheckFingerprint_ChangedPurges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore()

	fpOld := fingerprint.Compute([]string{"Delhi"}, []string{"olx"}, time.Minute)
	store.CheckFingerprint(ctx, "c1", fpOld)

	store.Save(ctx, key("c1", "olx", "Delhi"), domain.Session{Cookies: "abc"})
	store.Save(ctx, key("c1", "olx", "Mumbai"), domain.Session{Cookies: "def"})
	store.Save(ctx, key("c2", "olx", "Delhi"), domain.Session{Cookies: "other"})

	fpNew := fingerprint.Compute([]string{"Delhi", "Mumbai"}, []string{"olx"}, time.Minute)
	reused := store.CheckFingerprint(ctx, "c1", fpNew)
	assert.False(t, reused)

	_, ok := store.Load(key("c1", "olx", "Delhi"))
	assert.False(t, ok, "c1 sessions must be purged")
	_, ok = store.Load(key("c1", "olx", "Mumbai"))
	assert.False(t, ok, "c1 sessions must be purged")

	_, ok = store.Load(key("c2", "olx", "Delhi"))
	assert.True(t, ok, "other campaigns are untouched")
}

func TestSave_LastWriteWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore()
	k := key("c1", "olx", "Delhi")

	store.Save(ctx, k, domain.Session{Cookies: "first"})
	store.Save(ctx, k, domain.Session{Cookies: "second"})

	got, ok := store.Load(k)
	require.True(t, ok)
	assert.Equal(t, "second", got.Cookies)
	assert.Equal(t, 1, store.Count())
}

func TestInvalidate_SingleKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore()
	k := key("c1", "olx", "Delhi")
	other := key("c1", "olx", "Mumbai")

	store.Save(ctx, k, domain.Session{Cookies: "abc"})
	store.Save(ctx, other, domain.Session{Cookies: "def"})

	assert.True(t, store.Invalidate(ctx, k))

	_, ok := store.Load(k)
	assert.False(t, ok)
	_, ok = store.Load(other)
	assert.True(t, ok)

	// A second invalidation finds nothing live to drop.
	assert.False(t, store.Invalidate(ctx, k))
}

func TestInvalidate_UnknownKeyIsNoop(t *testing.T) {
	t.Parallel()

	store := newStore()
	assert.False(t, store.Invalidate(context.Background(), key("missing", "olx", "Delhi")))
	assert.Equal(t, 0, store.Count())
}

func TestStore_ConcurrentWriters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore()
	targets := []string{"Delhi", "Mumbai", "Bangalore", "Pune"}

	var wg sync.WaitGroup
	for _, target := range targets {
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(target string, n int) {
				defer wg.Done()
				k := key("c1", "olx", target)
				store.Save(ctx, k, domain.Session{Cookies: target})
				store.Load(k)
			}(target, i)
		}
	}
	wg.Wait()

	assert.Equal(t, len(targets), store.Count())
	for _, target := range targets {
		got, ok := store.Load(key("c1", "olx", target))
		require.True(t, ok)
		assert.Equal(t, target, got.Cookies)
	}
}
