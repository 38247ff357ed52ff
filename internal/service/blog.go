package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/envis/envis/internal/cache"
	"github.com/envis/envis/internal/metrics"
	"github.com/envis/envis/internal/model"
	"github.com/envis/envis/internal/repository"
)

// Blog errors.
var (
	ErrPostNotFound = errors.New("blog post not found")
	ErrSlugExists   = errors.New("slug already exists")
)

// BlogStore persists blog posts.
type BlogStore interface {
	CreateBlogPost(ctx context.Context, post *model.BlogPost) error
	GetBlogPostByID(ctx context.Context, id string) (*model.BlogPost, error)
	GetBlogPostBySlug(ctx context.Context, slug string) (*model.BlogPost, error)
	ListBlogPosts(ctx context.Context, publishedOnly bool) ([]*model.BlogPost, error)
	UpdateBlogPost(ctx context.Context, id string, patch model.BlogPostPatch) (*model.BlogPost, error)
	DeleteBlogPost(ctx context.Context, id string) error
}

// BlogCache caches the published listing. Errors are never fatal.
// SetPublishedPosts must drop a listing read at a generation that an
// invalidation has since superseded.
type BlogCache interface {
	GetPublishedPosts(ctx context.Context) ([]*model.BlogPost, error)
	PublishedPostsGeneration(ctx context.Context) (int64, error)
	SetPublishedPosts(ctx context.Context, gen int64, posts []*model.BlogPost) error
	InvalidatePublishedPosts(ctx context.Context) error
}

// BlogService handles blog business logic.
type BlogService struct {
	store   BlogStore
	cache   BlogCache
	metrics metrics.Recorder
}

// NewBlogService creates a new BlogService. A nil cache disables caching.
func NewBlogService(store BlogStore, c BlogCache, recorder metrics.Recorder) *BlogService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &BlogService{store: store, cache: c, metrics: recorder}
}

// CreateBlogPostInput defines input for creating a post.
type CreateBlogPostInput struct {
	Title     string
	Slug      string
	Excerpt   string
	Content   string
	Published bool
}

// Create inserts a new post; the slug must be unused.
func (s *BlogService) Create(ctx context.Context, input CreateBlogPostInput) (*model.BlogPost, error) {
	if _, err := s.store.GetBlogPostBySlug(ctx, input.Slug); err == nil {
		return nil, ErrSlugExists
	} else if !errors.Is(err, repository.ErrBlogPostNotFound) {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}

	post := &model.BlogPost{
		ID:        newID(),
		Title:     input.Title,
		Slug:      input.Slug,
		Excerpt:   input.Excerpt,
		Content:   input.Content,
		Published: input.Published,
	}

	if err := s.store.CreateBlogPost(ctx, post); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("failed to create blog post: %w", err)
	}

	s.metrics.IncBlogMutation(metrics.BlogCreated)
	s.invalidate(ctx)

	return post, nil
}

// Get retrieves a post by ID regardless of status.
func (s *BlogService) Get(ctx context.Context, id string) (*model.BlogPost, error) {
	post, err := s.store.GetBlogPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBlogPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// GetPublishedBySlug retrieves a post for public display. Drafts are
// reported as not found.
func (s *BlogService) GetPublishedBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	post, err := s.store.GetBlogPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrBlogPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !post.IsVisible() {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// ListPublished returns published posts newest first, served from cache
// when possible.
func (s *BlogService) ListPublished(ctx context.Context) ([]*model.BlogPost, error) {
	fill := false
	var gen int64
	if s.cache != nil {
		posts, err := s.cache.GetPublishedPosts(ctx)
		if err == nil {
			return posts, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			slog.Warn("blog_cache_read_failed", "error", err)
		}
		// The generation is read before the store so a mutation landing
		// in between voids the fill.
		if gen, err = s.cache.PublishedPostsGeneration(ctx); err != nil {
			slog.Warn("blog_cache_read_failed", "error", err)
		} else {
			fill = true
		}
	}

	posts, err := s.store.ListBlogPosts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list published posts: %w", err)
	}

	if fill {
		if err := s.cache.SetPublishedPosts(ctx, gen, posts); err != nil {
			slog.Warn("blog_cache_write_failed", "error", err)
		}
	}

	return posts, nil
}

// ListAll returns every post newest first, drafts included.
func (s *BlogService) ListAll(ctx context.Context) ([]*model.BlogPost, error) {
	posts, err := s.store.ListBlogPosts(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Update applies a partial update. Renaming a post to a slug held by a
// different post returns ErrSlugExists; keeping its own slug is allowed.
func (s *BlogService) Update(ctx context.Context, id string, patch model.BlogPostPatch) (*model.BlogPost, error) {
	if patch.Slug != nil {
		other, err := s.store.GetBlogPostBySlug(ctx, *patch.Slug)
		switch {
		case err == nil && other.ID != id:
			return nil, ErrSlugExists
		case err != nil && !errors.Is(err, repository.ErrBlogPostNotFound):
			return nil, fmt.Errorf("failed to check slug: %w", err)
		}
	}

	post, err := s.store.UpdateBlogPost(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBlogPostNotFound):
			return nil, ErrPostNotFound
		case errors.Is(err, repository.ErrSlugExists):
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("failed to update blog post: %w", err)
	}

	s.metrics.IncBlogMutation(metrics.BlogUpdated)
	s.invalidate(ctx)

	return post, nil
}

// Delete permanently removes a post.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteBlogPost(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBlogPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete blog post: %w", err)
	}

	s.metrics.IncBlogMutation(metrics.BlogDeleted)
	s.invalidate(ctx)

	return nil
}

func (s *BlogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePublishedPosts(ctx); err != nil {
		// The listing TTL bounds staleness.
		slog.Warn("blog_cache_invalidate_failed", "error", err)
	}
}
