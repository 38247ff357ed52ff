//go:build integration

package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envis/envis/internal/model"
	"github.com/envis/envis/internal/testutil"
)

// ============================================================================
// Blog Repository Integration Tests
// ============================================================================

func TestIntegrationBlogRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newRepoTestEnv(t, "000003_blog_posts")

	post := testutil.NewTestBlogPost(t, testutil.UniqueSlug("create"))
	require.NoError(t, repo.CreateBlogPost(ctx, post))

	byID, err := repo.GetBlogPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Slug, byID.Slug)

	bySlug, err := repo.GetBlogPostBySlug(ctx, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, post.ID, bySlug.ID)
}

func TestIntegrationBlogRepository_DuplicateSlug(t *testing.T) {
	ctx, repo := newRepoTestEnv(t, "000003_blog_posts")

	slug := testutil.UniqueSlug("dup")
	first := testutil.NewTestBlogPost(t, slug)
	second := testutil.NewTestBlogPost(t, slug)
	second.ID = testutil.UniqueID("post2")

	require.NoError(t, repo.CreateBlogPost(ctx, first))
	assert.ErrorIs(t, repo.CreateBlogPost(ctx, second), ErrSlugExists)
}

func TestIntegrationBlogRepository_ListPublishedOnly(t *testing.T) {
	ctx, repo := newRepoTestEnv(t, "000003_blog_posts")

	draft := testutil.NewTestBlogPost(t, testutil.UniqueSlug("draft"))
	live := testutil.NewTestPublishedPost(t, testutil.UniqueSlug("live"))
	for _, p := range []*model.BlogPost{draft, live} {
		require.NoError(t, repo.CreateBlogPost(ctx, p))
	}

	all, err := repo.ListBlogPosts(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	published, err := repo.ListBlogPosts(ctx, true)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, live.ID, published[0].ID)
}

func TestIntegrationBlogRepository_UpdatePartial(t *testing.T) {
	ctx, repo := newRepoTestEnv(t, "000003_blog_posts")

	post := testutil.NewTestBlogPost(t, testutil.UniqueSlug("upd"))
	require.NoError(t, repo.CreateBlogPost(ctx, post))

	time.Sleep(10 * time.Millisecond)

	title := "Renamed"
	published := true
	updated, err := repo.UpdateBlogPost(ctx, post.ID, model.BlogPostPatch{Title: &title, Published: &published})
	require.NoError(t, err)

	assert.Equal(t, title, updated.Title)
	assert.True(t, updated.Published)
	assert.Equal(t, post.Content, updated.Content, "unpatched fields are kept")
	assert.True(t, updated.UpdatedAt.After(post.UpdatedAt), "UpdatedAt not refreshed")
}

func TestIntegrationBlogRepository_UpdateSlugConflict(t *testing.T) {
	ctx, repo := newRepoTestEnv(t, "000003_blog_posts")

	a := testutil.NewTestBlogPost(t, testutil.UniqueSlug("a"))
	b := testutil.NewTestBlogPost(t, testutil.UniqueSlug("b"))
	for _, p := range []*model.BlogPost{a, b} {
		require.NoError(t, repo.CreateBlogPost(ctx, p))
	}

	_, err := repo.UpdateBlogPost(ctx, b.ID, model.BlogPostPatch{Slug: &a.Slug})
	assert.ErrorIs(t, err, ErrSlugExists)
}

func TestIntegrationBlogRepository_UpdateNotFound(t *testing.T) {
	ctx, repo := newRepoTestEnv(t, "000003_blog_posts")

	title := "x"
	_, err := repo.UpdateBlogPost(ctx, "missing", model.BlogPostPatch{Title: &title})
	assert.ErrorIs(t, err, ErrBlogPostNotFound)
}

func TestIntegrationBlogRepository_Delete(t *testing.T) {
	ctx, repo := newRepoTestEnv(t, "000003_blog_posts")

	post := testutil.NewTestBlogPost(t, testutil.UniqueSlug("del"))
	require.NoError(t, repo.CreateBlogPost(ctx, post))

	require.NoError(t, repo.DeleteBlogPost(ctx, post.ID))
	assert.ErrorIs(t, repo.DeleteBlogPost(ctx, post.ID), ErrBlogPostNotFound, "second delete")

	_, err := repo.GetBlogPostByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrBlogPostNotFound, "get after delete")
}
