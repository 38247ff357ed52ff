//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envis/envis/internal/testutil"
)

// ============================================================================
// Waitlist Repository Integration Tests
// ============================================================================

func TestIntegrationWaitlistRepository_Create(t *testing.T) {
	ctx, repo := newRepoTestEnv(t, "000002_waitlist")

	interests := "screen time"
	entry := testutil.NewTestWaitlistEntry(t, testutil.UniqueEmail("create"))
	entry.Interests = &interests

	require.NoError(t, repo.CreateWaitlistEntry(ctx, entry))
	assert.False(t, entry.CreatedAt.IsZero(), "CreatedAt should be set")

	got, err := repo.GetWaitlistEntryByEmail(ctx, entry.Email)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	require.NotNil(t, got.Interests)
	assert.Equal(t, interests, *got.Interests)
}

func TestIntegrationWaitlistRepository_DuplicateEmail(t *testing.T) {
	ctx, repo := newRepoTestEnv(t, "000002_waitlist")

	email := testutil.UniqueEmail("dup")
	first := testutil.NewTestWaitlistEntry(t, email)
	second := testutil.NewTestWaitlistEntry(t, email)
	second.ID = testutil.UniqueID("wl2")

	require.NoError(t, repo.CreateWaitlistEntry(ctx, first))
	assert.ErrorIs(t, repo.CreateWaitlistEntry(ctx, second), ErrEmailExists)

	entries, err := repo.ListWaitlistEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestIntegrationWaitlistRepository_GetByEmail_NotFound(t *testing.T) {
	ctx, repo := newRepoTestEnv(t, "000002_waitlist")

	_, err := repo.GetWaitlistEntryByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrWaitlistEntryNotFound)
}

func TestIntegrationWaitlistRepository_ListNewestFirst(t *testing.T) {
	ctx, repo := newRepoTestEnv(t, "000002_waitlist")

	emails := []string{
		testutil.UniqueEmail("a"),
		testutil.UniqueEmail("b"),
		testutil.UniqueEmail("c"),
	}
	for _, email := range emails {
		require.NoError(t, repo.CreateWaitlistEntry(ctx, testutil.NewTestWaitlistEntry(t, email)))
	}

	entries, err := repo.ListWaitlistEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, len(emails))
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].CreatedAt.After(entries[i-1].CreatedAt),
			"entries not ordered newest first at index %d", i)
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newRepoTestEnv(t *testing.T, migrations ...string) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	require.NoError(t, err, "connect db")
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	require.NoError(t, err, "acquire db lock")
	t.Cleanup(func() {
		_ = unlock()
	})

	for _, version := range migrations {
		require.NoError(t, testutil.ResetMigration(ctx, repo.Pool(), version), "reset %s", version)
	}

	return ctx, repo
}
