package handler

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/envis/envis/internal/model"
	"github.com/envis/envis/internal/seo"
	"github.com/envis/envis/internal/service"
)

const indexFile = "index.html"

// PublishedPosts reads the public blog.
type PublishedPosts interface {
	ListPublished(ctx context.Context) ([]*model.BlogPost, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*model.BlogPost, error)
}

// SiteConfig holds the public identity of the site.
type SiteConfig struct {
	BaseURL  string
	SiteName string
}

// SiteHandler serves the client bundle, the sitemap and blog pages with
// per-post head tags.
type SiteHandler struct {
	responder
	posts PublishedPosts
	files fs.FS
	c     SiteConfig
	fs    http.Handler
}

// NewSiteHandler creates a new SiteHandler. files holds the built client
// bundle; nil disables static serving.
func NewSiteHandler(posts PublishedPosts, files fs.FS, c SiteConfig, opts Options) *SiteHandler {
	h := &SiteHandler{responder: newResponder(opts), posts: posts, files: files, c: c}
	if files != nil {
		h.fs = http.FileServer(http.FS(files))
	}
	return h
}

// Sitemap handles GET /sitemap.xml.
func (h *SiteHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		h.logger.Error("sitemap_failed", slog.String("error", err.Error()))
		http.Error(w, "Error generating sitemap", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := seo.WriteSitemap(&buf, h.c.BaseURL, posts); err != nil {
		h.logger.Error("sitemap_failed", slog.String("error", err.Error()))
		http.Error(w, "Error generating sitemap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// BlogPage handles GET /blog/{slug}. Published posts get the HTML shell
// with their head tags; anything else falls through to the client app.
func (h *SiteHandler) BlogPage(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetPublishedBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if !errors.Is(err, service.ErrPostNotFound) {
			h.logger.Warn("blog_meta_lookup_failed", slog.String("error", err.Error()))
		}
		h.App(w, r)
		return
	}

	shell, err := h.readIndex()
	if err != nil {
		h.App(w, r)
		return
	}

	page := seo.InjectMeta(string(shell), seo.PostMeta(h.c.SiteName, h.c.BaseURL, post))
	writeHTML(w, []byte(page))
}

// App serves files of the client bundle and falls back to index.html so
// client-side routes resolve. Unknown /api paths and non-GET requests stay
// JSON 404s.
func (h *SiteHandler) App(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead ||
		r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") || h.files == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found", "code": "NOT_FOUND"})
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name != "" && name != indexFile {
		if info, err := fs.Stat(h.files, name); err == nil && !info.IsDir() {
			h.fs.ServeHTTP(w, r)
			return
		}
	}

	shell, err := h.readIndex()
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, shell)
}

func (h *SiteHandler) readIndex() ([]byte, error) {
	if h.files == nil {
		return nil, fs.ErrNotExist
	}
	return fs.ReadFile(h.files, indexFile)
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
