package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/goleads/internal/domain"
	"github.com/jonesrussell/goleads/internal/fingerprint"
	"github.com/jonesrussell/goleads/internal/storage"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := storage.NewSessionRepository(db)

	key := domain.SessionKey{CampaignID: "c1", Platform: "olx", Target: "Delhi"}
	sess := domain.Session{
		Key:        key,
		Cookies:    "tok=abc",
		AcquiredAt: time.Now().UTC().Truncate(time.Second),
		Valid:      true,
	}

	require.NoError(t, repo.SaveSession(ctx, sess))

	loaded, err := repo.LoadSessions(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, key, loaded[0].Key)
	assert.Equal(t, "tok=abc", loaded[0].Cookies)
	assert.True(t, loaded[0].Valid)

	// Upsert: same key supersedes.
	sess.Cookies = "tok=def"
	require.NoError(t, repo.SaveSession(ctx, sess))
	loaded, err = repo.LoadSessions(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "tok=def", loaded[0].Cookies)
}

func TestSessionRepository_DeleteCampaignSessions(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := storage.NewSessionRepository(db)

	for _, target := range []string{"Delhi", "Mumbai"} {
		require.NoError(t, repo.SaveSession(ctx, domain.Session{
			Key:        domain.SessionKey{CampaignID: "c1", Platform: "olx", Target: target},
			Cookies:    "x",
			AcquiredAt: time.Now(),
		}))
	}
	require.NoError(t, repo.SaveSession(ctx, domain.Session{
		Key:        domain.SessionKey{CampaignID: "c2", Platform: "olx", Target: "Delhi"},
		Cookies:    "y",
		AcquiredAt: time.Now(),
	}))

	require.NoError(t, repo.DeleteCampaignSessions(ctx, "c1"))

	loaded, err := repo.LoadSessions(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "c2", loaded[0].Key.CampaignID)
}

func TestSessionRepository_Fingerprints(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := storage.NewSessionRepository(db)

	fp := fingerprint.Compute([]string{"Delhi"}, []string{"olx"}, time.Minute)
	require.NoError(t, repo.SaveFingerprint(ctx, "c1", fp))

	fps, err := repo.LoadFingerprints(ctx)
	require.NoError(t, err)
	assert.Equal(t, fp, fps["c1"])

	// Upsert replaces.
	fp2 := fingerprint.Compute([]string{"Mumbai"}, []string{"olx"}, time.Minute)
	require.NoError(t, repo.SaveFingerprint(ctx, "c1", fp2))
	fps, err = repo.LoadFingerprints(ctx)
	require.NoError(t, err)
	assert.Equal(t, fp2, fps["c1"])
}

func TestLeadRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := storage.NewLeadRepository(db)

	lead := domain.Lead{
		ID:         "lead-1",
		Target:     "Delhi",
		Platform:   "olx",
		Identifier: "DL01AB1234",
		Price:      "₹250000",
		FirstSeen:  time.Now().UTC().Truncate(time.Second),
		Status:     domain.LeadNew,
		Confidence: 0.9,
	}
	require.NoError(t, repo.SaveLead(ctx, lead))
	require.NoError(t, repo.UpdateLeadStatus(ctx, "lead-1", domain.LeadNotified))

	loaded, err := repo.LoadLeads(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "DL01AB1234", loaded[0].Identifier)
	assert.Equal(t, domain.LeadNotified, loaded[0].Status)
	assert.InDelta(t, 0.9, loaded[0].Confidence, 0.001)
}

func TestCampaignRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := storage.NewCampaignRepository(db)

	started := time.Now().UTC().Truncate(time.Second)
	campaign := domain.Campaign{
		ID:        "c1",
		Targets:   []string{"Delhi", "Mumbai"},
		Platforms: []string{"olx"},
		Interval:  5 * time.Second,
		Status:    domain.CampaignRunning,
		CreatedAt: started,
		StartedAt: &started,
		Processed: 10,
		Leads:     3,
		Errors:    1,
	}
	require.NoError(t, repo.SaveCampaign(ctx, campaign))

	// Counters update on overwrite.
	campaign.Processed = 20
	campaign.Status = domain.CampaignStopped
	require.NoError(t, repo.SaveCampaign(ctx, campaign))

	loaded, err := repo.LoadCampaigns(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, []string{"Delhi", "Mumbai"}, loaded[0].Targets)
	assert.Equal(t, []string{"olx"}, loaded[0].Platforms)
	assert.Equal(t, 5*time.Second, loaded[0].Interval)
	assert.Equal(t, domain.CampaignStopped, loaded[0].Status)
	assert.Equal(t, int64(20), loaded[0].Processed)
}
