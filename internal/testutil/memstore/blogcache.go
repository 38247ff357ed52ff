package memstore

import (
	"context"
	"sync"

	"github.com/envis/envis/internal/cache"
	"github.com/envis/envis/internal/model"
)

// BlogCache is an in-memory published listing cache that counts calls.
// Like the Redis cache, a fill carrying a stale generation is dropped.
type BlogCache struct {
	mu          sync.Mutex
	posts       []*model.BlogPost
	cached      bool
	gen         int64
	Hits        int
	Invalidated int
}

// GetPublishedPosts implements service.BlogCache.
func (c *BlogCache) GetPublishedPosts(context.Context) ([]*model.BlogPost, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cached {
		return nil, cache.ErrCacheMiss
	}
	c.Hits++
	return c.posts, nil
}

// PublishedPostsGeneration implements service.BlogCache.
func (c *BlogCache) PublishedPostsGeneration(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

// SetPublishedPosts implements service.BlogCache.
func (c *BlogCache) SetPublishedPosts(_ context.Context, gen int64, posts []*model.BlogPost) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return nil
	}
	c.posts, c.cached = posts, true
	return nil
}

// InvalidatePublishedPosts implements service.BlogCache.
func (c *BlogCache) InvalidatePublishedPosts(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts, c.cached = nil, false
	c.gen++
	c.Invalidated++
	return nil
}

// Cached reports whether a listing is currently cached.
func (c *BlogCache) Cached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cached
}
