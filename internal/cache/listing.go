package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/envis/envis/internal/model"
)

// Cache keys and TTLs for public listings.
const (
	publishedPostsKey = "blog:published"
	productsKey       = "catalog:products"

	// Each listing has a generation counter bumped on every invalidation.
	// A fill only lands when the counter still holds the value read
	// before the source query.
	generationSuffix = ":gen"

	// PublishedPostsTTL bounds staleness should an invalidation be lost.
	PublishedPostsTTL = 10 * time.Minute

	// ProductsTTL is the TTL of the cached product listing.
	ProductsTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// fillIfCurrentScript writes KEYS[1] only while KEYS[2] (the generation,
// absent meaning 0) equals ARGV[1]. Returns 1 when written.
var fillIfCurrentScript = redis.NewScript(`
	local gen = redis.call('GET', KEYS[2]) or '0'
	if gen ~= ARGV[1] then
		return 0
	end
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
	return 1
`)

// GetPublishedPosts returns the cached published blog listing.
// Returns ErrCacheMiss if not cached.
func (c *Cache) GetPublishedPosts(ctx context.Context) ([]*model.BlogPost, error) {
	var posts []*model.BlogPost
	if err := c.getJSON(ctx, publishedPostsKey, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// PublishedPostsGeneration returns the invalidation generation of the
// published listing. Read it before querying the store.
func (c *Cache) PublishedPostsGeneration(ctx context.Context) (int64, error) {
	return c.generation(ctx, publishedPostsKey)
}

// SetPublishedPosts caches posts read at generation gen. The write is
// skipped when the listing was invalidated after gen was read.
func (c *Cache) SetPublishedPosts(ctx context.Context, gen int64, posts []*model.BlogPost) error {
	return c.fillJSON(ctx, publishedPostsKey, gen, posts, PublishedPostsTTL)
}

// InvalidatePublishedPosts drops the cached published listing and bumps
// its generation.
func (c *Cache) InvalidatePublishedPosts(ctx context.Context) error {
	if err := c.invalidate(ctx, publishedPostsKey); err != nil {
		return fmt.Errorf("failed to invalidate published posts: %w", err)
	}
	return nil
}

// GetProducts returns the cached product listing.
// Returns ErrCacheMiss if not cached.
func (c *Cache) GetProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := c.getJSON(ctx, productsKey, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ProductsGeneration returns the invalidation generation of the product
// listing.
func (c *Cache) ProductsGeneration(ctx context.Context) (int64, error) {
	return c.generation(ctx, productsKey)
}

// SetProducts caches the product listing read at generation gen.
func (c *Cache) SetProducts(ctx context.Context, gen int64, products []model.Product) error {
	return c.fillJSON(ctx, productsKey, gen, products, ProductsTTL)
}

// InvalidateProducts drops the cached product listing and bumps its
// generation.
func (c *Cache) InvalidateProducts(ctx context.Context) error {
	if err := c.invalidate(ctx, productsKey); err != nil {
		return fmt.Errorf("failed to invalidate products: %w", err)
	}
	return nil
}

func (c *Cache) generation(ctx context.Context, key string) (int64, error) {
	gen, err := c.client.Get(ctx, key+generationSuffix).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return gen, nil
}

func (c *Cache) invalidate(ctx context.Context, key string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key+generationSuffix)
		pipe.Del(ctx, key)
		return nil
	})
	return err
}

func (c *Cache) getJSON(ctx context.Context, key string, dst any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		// Corrupted entry - drop it and treat as miss
		c.client.Del(ctx, key)
		return ErrCacheMiss
	}
	return nil
}

func (c *Cache) fillJSON(ctx context.Context, key string, gen int64, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	keys := []string{key, key + generationSuffix}
	args := []any{strconv.FormatInt(gen, 10), data, ttl.Milliseconds()}
	if err := fillIfCurrentScript.Run(ctx, c.client, keys, args...).Err(); err != nil {
		return fmt.Errorf("failed to cache %s: %w", key, err)
	}
	return nil
}
