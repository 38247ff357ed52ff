package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/envis/envis/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// MigrationsDir returns the directory holding the SQL migrations.
func MigrationsDir() (string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "internal", "repository", "migrations"), nil
}

// ApplyMigrationFile executes a single migration file by name,
// e.g. "000002_waitlist.up.sql".
func ApplyMigrationFile(ctx context.Context, pool *pgxpool.Pool, name string) error {
	dir, err := MigrationsDir()
	if err != nil {
		return err
	}

	sql, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	return nil
}

// ResetSchema runs every down migration newest first, then every up
// migration oldest first.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	ups, downs, err := migrationFiles()
	if err != nil {
		return err
	}

	for i := len(downs) - 1; i >= 0; i-- {
		if err := ApplyMigrationFile(ctx, pool, downs[i]); err != nil {
			return err
		}
	}
	for _, name := range ups {
		if err := ApplyMigrationFile(ctx, pool, name); err != nil {
			return err
		}
	}
	return nil
}

// ResetMigration drops and recreates the tables of one migration, e.g.
// "000003_blog_posts".
func ResetMigration(ctx context.Context, pool *pgxpool.Pool, version string) error {
	if err := ApplyMigrationFile(ctx, pool, version+".down.sql"); err != nil {
		return err
	}
	return ApplyMigrationFile(ctx, pool, version+".up.sql")
}

func migrationFiles() (ups, downs []string, err error) {
	dir, err := MigrationsDir()
	if err != nil {
		return nil, nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read migrations dir: %w", err)
	}

	for _, e := range entries {
		switch name := e.Name(); {
		case strings.HasSuffix(name, ".up.sql"):
			ups = append(ups, name)
		case strings.HasSuffix(name, ".down.sql"):
			downs = append(downs, name)
		}
	}
	sort.Strings(ups)
	sort.Strings(downs)
	return ups, downs, nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestWaitlistEntry creates a waitlist entry with sensible defaults.
func NewTestWaitlistEntry(t testing.TB, email string) *model.WaitlistEntry {
	t.Helper()
	return &model.WaitlistEntry{
		ID:         UniqueID("wl"),
		Name:       "Test Parent",
		Email:      email,
		FamilySize: model.FamilySize3,
		CreatedAt:  time.Now().UTC(),
	}
}

// NewTestBlogPost creates a draft blog post with sensible defaults.
func NewTestBlogPost(t testing.TB, slug string) *model.BlogPost {
	t.Helper()
	now := time.Now().UTC()
	return &model.BlogPost{
		ID:        UniqueID("post"),
		Title:     "Post " + slug,
		Slug:      slug,
		Excerpt:   "Excerpt for " + slug,
		Content:   "# " + slug + "\n\nBody.",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestPublishedPost creates a published blog post.
func NewTestPublishedPost(t testing.TB, slug string) *model.BlogPost {
	t.Helper()
	post := NewTestBlogPost(t, slug)
	post.Published = true
	return post
}

// UniqueSlug generates a unique slug for tests.
func UniqueSlug(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
