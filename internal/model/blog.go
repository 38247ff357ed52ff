package model

import "time"

// BlogPost is a markdown article with a draft/published lifecycle.
type BlogPost struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `json:"content"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsVisible reports whether the post may be served on public routes.
func (p *BlogPost) IsVisible() bool {
	return p != nil && p.Published
}

// BlogPostPatch holds the fields of a partial update. Nil fields are left
// unchanged.
type BlogPostPatch struct {
	Title     *string
	Slug      *string
	Excerpt   *string
	Content   *string
	Published *bool
}

// Apply copies the set fields onto post.
func (p BlogPostPatch) Apply(post *BlogPost) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Slug != nil {
		post.Slug = *p.Slug
	}
	if p.Excerpt != nil {
		post.Excerpt = *p.Excerpt
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.Published != nil {
		post.Published = *p.Published
	}
}
