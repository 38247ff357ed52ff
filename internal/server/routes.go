package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/envis/envis/internal/handler"
	"github.com/envis/envis/internal/middleware"
)

// Rate limit scopes.
const (
	ScopeWaitlist = "waitlist"
	ScopeLogin    = "login"
	ScopeCheckout = "checkout"
)

// Routes bundles the handlers mounted by NewRouter.
type Routes struct {
	Health   *handler.HealthHandler
	Metrics  *handler.MetricsHandler
	Waitlist *handler.WaitlistHandler
	Admin    *handler.AdminHandler
	Blog     *handler.BlogHandler
	Catalog  *handler.CatalogHandler
	Webhook  *handler.WebhookHandler
	Site     *handler.SiteHandler
}

// RouterConfig configures the middleware chain.
type RouterConfig struct {
	Logger             *slog.Logger
	IsDevelopment      bool
	CORS               middleware.CORSConfig
	MaxRequestBodySize int64
	RateLimit          middleware.RateLimitConfig
	AdminAuth          middleware.AdminAuthConfig
}

// NewRouter builds the chi router with every route and middleware.
func NewRouter(routes Routes, cfg RouterConfig) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RateLimit.Logger == nil {
		cfg.RateLimit.Logger = cfg.Logger
	}
	if cfg.AdminAuth.Logger == nil {
		cfg.AdminAuth.Logger = cfg.Logger
	}
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = 1 << 20
	}

	h := handler.New()
	adminOnly := middleware.AdminAuth(cfg.AdminAuth)
	limit := func(scope string) func(http.Handler) http.Handler {
		return middleware.RateLimitIP(cfg.RateLimit, scope)
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/healthz", routes.Health.Healthz)
	r.Get("/readyz", routes.Health.Readyz)
	r.Get("/metrics", routes.Metrics.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.With(limit(ScopeWaitlist)).Post("/waitlist", routes.Waitlist.Join)
		r.With(adminOnly).Get("/waitlist", routes.Waitlist.List)

		r.Get("/blog", routes.Blog.ListPublished)
		r.Get("/blog/{slug}", routes.Blog.GetPublished)

		r.Get("/products", routes.Catalog.Products)
		r.With(limit(ScopeCheckout)).Post("/checkout", routes.Catalog.Checkout)
		r.Get("/stripe/config", routes.Catalog.StripeConfig)
		r.Post("/stripe/webhook", routes.Webhook.Stripe)

		r.Route("/admin", func(r chi.Router) {
			r.With(limit(ScopeLogin)).Post("/login", routes.Admin.Login)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/logout", routes.Admin.Logout)
				r.Get("/blog", routes.Blog.ListAll)
				r.Post("/blog", routes.Blog.Create)
				r.Get("/blog/{id}", routes.Blog.Get)
				r.Patch("/blog/{id}", routes.Blog.Update)
				r.Delete("/blog/{id}", routes.Blog.Delete)
			})

			// Unknown admin paths are gated too, so probing reveals nothing.
			r.NotFound(adminOnly(http.HandlerFunc(h.NotFound)).ServeHTTP)
			r.MethodNotAllowed(adminOnly(http.HandlerFunc(h.MethodNotAllowed)).ServeHTTP)
		})

		r.NotFound(h.NotFound)
		r.MethodNotAllowed(h.MethodNotAllowed)
	})

	r.Get("/sitemap.xml", routes.Site.Sitemap)
	r.Get("/blog/{slug}", routes.Site.BlogPage)
	r.NotFound(routes.Site.App)

	return r
}
