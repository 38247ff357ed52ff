// Package main is the entrypoint for the Envis web server.
package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/envis/envis/internal/auth"
	"github.com/envis/envis/internal/cache"
	"github.com/envis/envis/internal/catalog"
	"github.com/envis/envis/internal/config"
	"github.com/envis/envis/internal/handler"
	"github.com/envis/envis/internal/metrics"
	"github.com/envis/envis/internal/middleware"
	"github.com/envis/envis/internal/payment"
	"github.com/envis/envis/internal/repository"
	"github.com/envis/envis/internal/server"
	"github.com/envis/envis/internal/service"
)

func main() {
	ctx := context.Background()

	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger()

	if cfg.AutoMigrate {
		if err := repository.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("failed to run migrations",
				slog.String("error", config.SanitizeError(err, cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", config.SanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", config.RedactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", config.SanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", config.RedactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	mirrorURL := cfg.GetMirrorDatabaseURL()
	mirrorDB, err := catalog.Open(ctx, mirrorURL)
	if err != nil {
		logger.Error(
			"failed to connect to mirror database",
			slog.String("error", config.SanitizeError(err, mirrorURL)),
			slog.String("database_url", config.RedactURL(mirrorURL)),
		)
		os.Exit(1)
	}
	mirror := catalog.NewStore(mirrorDB)

	var provider payment.Provider = payment.Unconfigured{}
	if cfg.PaymentsEnabled() {
		stripeProvider, err := payment.NewStripe(cfg.StripeSecretKey)
		if err != nil {
			logger.Error("failed to configure Stripe", slog.String("error", err.Error()))
			os.Exit(1)
		}
		provider = stripeProvider
	} else {
		logger.Warn("payments_disabled", slog.String("reason", "STRIPE_SECRET_KEY not set"))
	}

	recorder := metrics.NewInMemory()
	tokens := auth.NewTokenManager(cfg.GetAdminTokenSecret(), cfg.AdminTokenTTL)

	waitlistService := service.NewWaitlistService(repo, recorder)
	blogService := service.NewBlogService(repo, cacheClient, recorder)
	catalogService := catalog.NewService(mirror, provider, cacheClient, recorder, catalog.Config{
		RefreshCooldown: cfg.CatalogRefreshCooldown,
	})
	checkoutService := service.NewCheckoutService(catalogService, provider, recorder)

	opts := handler.Options{Logger: logger, ExposeErrors: !cfg.IsProduction()}

	// The sync worker runs whenever payments are configured; webhooks
	// trigger it even when periodic syncs are off.
	var (
		worker      *catalog.Worker
		syncTrigger handler.SyncTrigger
	)
	if payment.IsConfigured(provider) {
		worker = catalog.NewWorker(catalogService, catalog.WorkerConfig{Interval: cfg.CatalogSyncInterval})
		syncTrigger = worker
	}

	// The mirror only gets its own readiness check when it lives elsewhere.
	var mirrorCheck handler.HealthChecker
	if cfg.MirrorDatabaseURL != "" {
		mirrorCheck = mirror
	}

	routes := server.Routes{
		Health:   handler.NewHealthHandler(repo, cacheClient, mirrorCheck),
		Metrics:  handler.NewMetricsHandler(recorder),
		Waitlist: handler.NewWaitlistHandler(waitlistService, recorder, opts),
		Admin:    handler.NewAdminHandler(cfg.AdminPassword, tokens, cacheClient, recorder, opts),
		Blog:     handler.NewBlogHandler(blogService, opts),
		Catalog: handler.NewCatalogHandler(catalogService, checkoutService, handler.CatalogConfig{
			BaseURL:        cfg.GetBaseURL(),
			AllowedOrigins: cfg.GetCORSAllowedOrigins(),
			PublishableKey: cfg.StripePublishableKey,
		}, opts),
		Webhook: handler.NewWebhookHandler(cfg.StripeWebhookSecret, syncTrigger, opts),
		Site: handler.NewSiteHandler(blogService, staticFiles(cfg.StaticDir, logger), handler.SiteConfig{
			BaseURL:  cfg.GetBaseURL(),
			SiteName: cfg.SiteName,
		}, opts),
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r := server.NewRouter(routes, server.RouterConfig{
		Logger:             logger,
		IsDevelopment:      cfg.IsDevelopment(),
		CORS:               corsCfg,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		RateLimit: middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: cacheClient,
			Enabled: cfg.RateLimitEnabled,
			RPS:     cfg.RateLimitRPS,
			Burst:   cfg.RateLimitBurst,
		},
		AdminAuth: middleware.AdminAuthConfig{
			Logger:      logger,
			Tokens:      tokens,
			Revocations: cacheClient,
		},
	})

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Hooks run last-registered first: the worker stops before the stores
	// it writes to are closed.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})
	srv.OnShutdown("mirror", func(context.Context) error {
		return mirrorDB.Close()
	})

	if worker != nil {
		if err := worker.Start(ctx); err != nil {
			logger.Error("failed to start catalog worker", slog.String("error", err.Error()))
			os.Exit(1)
		}
		srv.OnShutdown("catalog_worker", func(context.Context) error {
			return worker.Stop()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.GetBaseURL(),
		"env", cfg.AppEnv,
		"payments", payment.IsConfigured(provider),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// staticFiles returns the client bundle directory, or nil when it is absent.
func staticFiles(dir string, logger *slog.Logger) fs.FS {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		logger.Warn("static_dir_missing", slog.String("dir", dir))
		return nil
	}
	return os.DirFS(dir)
}
