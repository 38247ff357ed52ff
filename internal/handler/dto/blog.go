package dto

import "github.com/envis/envis/internal/model"

// CreateBlogPostRequest is the body of POST /api/admin/blog.
type CreateBlogPostRequest struct {
	Title     string `json:"title" validate:"required"`
	Slug      string `json:"slug" validate:"required,max=200,slug"`
	Excerpt   string `json:"excerpt" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Published bool   `json:"published"`
}

// UpdateBlogPostRequest is the body of PATCH /api/admin/blog/{id}. Absent
// fields are left unchanged; present strings must be non-empty.
type UpdateBlogPostRequest struct {
	Title     *string `json:"title" validate:"omitnil,min=1"`
	Slug      *string `json:"slug" validate:"omitnil,min=1,max=200,slug"`
	Excerpt   *string `json:"excerpt" validate:"omitnil,min=1"`
	Content   *string `json:"content" validate:"omitnil,min=1"`
	Published *bool   `json:"published"`
}

// Patch converts the request to a model patch.
func (r *UpdateBlogPostRequest) Patch() model.BlogPostPatch {
	return model.BlogPostPatch{
		Title:     r.Title,
		Slug:      r.Slug,
		Excerpt:   r.Excerpt,
		Content:   r.Content,
		Published: r.Published,
	}
}

// BlogPostResponse wraps a single post.
type BlogPostResponse struct {
	Post *model.BlogPost `json:"post"`
}

// BlogPostMutationResponse is returned by create and update.
type BlogPostMutationResponse struct {
	Success bool            `json:"success"`
	Post    *model.BlogPost `json:"post"`
}

// BlogPostListResponse wraps a listing; a nil slice renders as [].
type BlogPostListResponse struct {
	Posts []*model.BlogPost `json:"posts"`
}

// ToBlogPostListResponse builds a listing response.
func ToBlogPostListResponse(posts []*model.BlogPost) *BlogPostListResponse {
	if posts == nil {
		posts = []*model.BlogPost{}
	}
	return &BlogPostListResponse{Posts: posts}
}
