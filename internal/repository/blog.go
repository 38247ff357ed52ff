package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/envis/envis/internal/model"
)

// Common errors for blog repository operations.
var (
	ErrBlogPostNotFound = errors.New("blog post not found")
	ErrSlugExists       = errors.New("slug already exists")
)

const blogPostColumns = `id, title, slug, excerpt, content, published, created_at, updated_at`

// CreateBlogPost inserts a new post. Slug uniqueness is enforced by the
// blog_posts_slug_key constraint.
func (r *Repository) CreateBlogPost(ctx context.Context, post *model.BlogPost) error {
	query := `
		INSERT INTO blog_posts (id, title, slug, excerpt, content, published)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		post.ID,
		post.Title,
		post.Slug,
		post.Excerpt,
		post.Content,
		post.Published,
	).Scan(&post.CreatedAt, &post.UpdatedAt)

	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to create blog post: %w", err)
	}

	return nil
}

// GetBlogPostByID retrieves a post by its ID regardless of status.
func (r *Repository) GetBlogPostByID(ctx context.Context, id string) (*model.BlogPost, error) {
	query := `SELECT ` + blogPostColumns + ` FROM blog_posts WHERE id = $1`

	post, err := scanBlogPost(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBlogPostNotFound
		}
		return nil, fmt.Errorf("failed to get blog post by ID: %w", err)
	}

	return post, nil
}

// GetBlogPostBySlug retrieves a post by slug regardless of status.
func (r *Repository) GetBlogPostBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	query := `SELECT ` + blogPostColumns + ` FROM blog_posts WHERE slug = $1`

	post, err := scanBlogPost(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBlogPostNotFound
		}
		return nil, fmt.Errorf("failed to get blog post by slug: %w", err)
	}

	return post, nil
}

// ListBlogPosts returns posts newest first, optionally only published ones.
func (r *Repository) ListBlogPosts(ctx context.Context, publishedOnly bool) ([]*model.BlogPost, error) {
	query := `SELECT ` + blogPostColumns + ` FROM blog_posts`
	if publishedOnly {
		query += ` WHERE published = TRUE`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*model.BlogPost, 0)
	for rows.Next() {
		post, err := scanBlogPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blog posts: %w", err)
	}

	return posts, nil
}

// UpdateBlogPost applies a partial update in a single statement and always
// refreshes updated_at. A slug already used by another post yields
// ErrSlugExists.
func (r *Repository) UpdateBlogPost(ctx context.Context, id string, patch model.BlogPostPatch) (*model.BlogPost, error) {
	query := `
		UPDATE blog_posts
		SET title      = COALESCE($2, title),
		    slug       = COALESCE($3, slug),
		    excerpt    = COALESCE($4, excerpt),
		    content    = COALESCE($5, content),
		    published  = COALESCE($6, published),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + blogPostColumns

	post, err := scanBlogPost(r.pool.QueryRow(ctx, query,
		id,
		patch.Title,
		patch.Slug,
		patch.Excerpt,
		patch.Content,
		patch.Published,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBlogPostNotFound
		}
		if _, ok := uniqueViolation(err); ok {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("failed to update blog post: %w", err)
	}

	return post, nil
}

// DeleteBlogPost permanently removes a post.
func (r *Repository) DeleteBlogPost(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete blog post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBlogPostNotFound
	}

	return nil
}

func scanBlogPost(row pgx.Row) (*model.BlogPost, error) {
	var post model.BlogPost
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Excerpt,
		&post.Content,
		&post.Published,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	return &post, err
}
