package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/envis/envis/internal/handler/dto"
	"github.com/envis/envis/internal/service"
)

// BlogHandler serves the public blog and the admin blog CRUD.
type BlogHandler struct {
	responder
	svc *service.BlogService
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(svc *service.BlogService, opts Options) *BlogHandler {
	return &BlogHandler{responder: newResponder(opts), svc: svc}
}

// ListPublished handles GET /api/blog.
func (h *BlogHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListPublished(r.Context())
	if err != nil {
		h.writeInternalError(w, r, "BLOG_FETCH_FAILED", "Failed to fetch blog posts", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBlogPostListResponse(posts))
}

// GetPublished handles GET /api/blog/{slug}. Drafts are reported as missing.
func (h *BlogHandler) GetPublished(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.GetPublishedBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to fetch blog post")
		return
	}
	writeJSON(w, http.StatusOK, dto.BlogPostResponse{Post: post})
}

// ListAll handles GET /api/admin/blog.
func (h *BlogHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListAll(r.Context())
	if err != nil {
		h.writeInternalError(w, r, "BLOG_FETCH_FAILED", "Failed to fetch blog posts", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToBlogPostListResponse(posts))
}

// Get handles GET /api/admin/blog/{id}.
func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to fetch blog post")
		return
	}
	writeJSON(w, http.StatusOK, dto.BlogPostResponse{Post: post})
}

// Create handles POST /api/admin/blog.
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBlogPostRequest
	if !h.decode(w, r, &req, nil) {
		return
	}

	post, err := h.svc.Create(r.Context(), service.CreateBlogPostInput{
		Title:     req.Title,
		Slug:      req.Slug,
		Excerpt:   req.Excerpt,
		Content:   req.Content,
		Published: req.Published,
	})
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to create blog post")
		return
	}

	h.logger.Info("blog_post_created",
		slog.String("post_id", post.ID),
		slog.String("slug", post.Slug),
		slog.Bool("published", post.Published),
	)
	writeJSON(w, http.StatusCreated, dto.BlogPostMutationResponse{Success: true, Post: post})
}

// Update handles PATCH /api/admin/blog/{id}.
func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateBlogPostRequest
	if !h.decode(w, r, &req, nil) {
		return
	}

	post, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req.Patch())
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to update blog post")
		return
	}

	h.logger.Info("blog_post_updated", slog.String("post_id", post.ID), slog.String("slug", post.Slug))
	writeJSON(w, http.StatusOK, dto.BlogPostMutationResponse{Success: true, Post: post})
}

// Delete handles DELETE /api/admin/blog/{id}.
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err, "Failed to delete blog post")
		return
	}

	h.logger.Info("blog_post_deleted", slog.String("post_id", id))
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

// handleServiceError maps service errors to HTTP responses.
func (h *BlogHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, internalMessage string) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		h.writeError(w, http.StatusNotFound, "POST_NOT_FOUND", "Post not found")
	case errors.Is(err, service.ErrSlugExists):
		h.writeError(w, http.StatusConflict, "SLUG_TAKEN", "A post with this slug already exists")
	default:
		h.writeInternalError(w, r, "BLOG_FAILED", internalMessage, err)
	}
}
