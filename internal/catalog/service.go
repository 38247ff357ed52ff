package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/envis/envis/internal/cache"
	"github.com/envis/envis/internal/metrics"
	"github.com/envis/envis/internal/model"
	"github.com/envis/envis/internal/payment"
)

// Catalog errors.
var (
	ErrPlanNotFound = errors.New("plan not found")
)

// Mirror is the local copy of provider products and prices.
type Mirror interface {
	ListActive(ctx context.Context) ([]model.Product, error)
	Replace(ctx context.Context, products []model.Product, prices []model.Price, syncedAt time.Time) (SyncStats, error)
}

// ProductCache caches the public product listing. Errors are never fatal.
// SetProducts must drop a listing read at a superseded generation.
type ProductCache interface {
	GetProducts(ctx context.Context) ([]model.Product, error)
	ProductsGeneration(ctx context.Context) (int64, error)
	SetProducts(ctx context.Context, gen int64, products []model.Product) error
	InvalidateProducts(ctx context.Context) error
}

// onDemandSyncTimeout bounds a refresh shared by coalesced plan lookups.
const onDemandSyncTimeout = 30 * time.Second

// Config holds catalog service settings.
type Config struct {
	// RefreshCooldown is the minimum time between on-demand refreshes
	// triggered by plan lookups that miss the mirror.
	RefreshCooldown time.Duration
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{RefreshCooldown: time.Minute}
}

// Service reads the catalog from the mirror and refreshes the mirror from
// the payment provider.
type Service struct {
	mirror   Mirror
	provider payment.Provider
	cache    ProductCache
	metrics  metrics.Recorder
	c        Config
	now      func() time.Time

	refresh     singleflight.Group
	mu          sync.Mutex
	lastRefresh time.Time
}

// NewService creates a catalog Service. A nil cache disables caching.
func NewService(mirror Mirror, provider payment.Provider, c ProductCache, recorder metrics.Recorder, cfg Config) *Service {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if provider == nil {
		provider = payment.Unconfigured{}
	}
	return &Service{
		mirror:   mirror,
		provider: provider,
		cache:    c,
		metrics:  recorder,
		c:        cfg,
		now:      time.Now,
	}
}

// ListProducts returns the public catalog.
func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	fill := false
	var gen int64
	if s.cache != nil {
		products, err := s.cache.GetProducts(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			slog.Warn("catalog_cache_read_failed", "error", err)
		}
		if gen, err = s.cache.ProductsGeneration(ctx); err != nil {
			slog.Warn("catalog_cache_read_failed", "error", err)
		} else {
			fill = true
		}
	}

	rows, err := s.mirror.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products := Arrange(rows)

	if fill {
		if err := s.cache.SetProducts(ctx, gen, products); err != nil {
			slog.Warn("catalog_cache_write_failed", "error", err)
		}
	}
	return products, nil
}

// ResolvePlan maps a plan identifier ("monthly", "family", ...) to a price
// ID. A mirror miss triggers one coalesced refresh from the provider,
// rate limited by RefreshCooldown, before ErrPlanNotFound is returned.
func (s *Service) ResolvePlan(ctx context.Context, plan string) (string, error) {
	price, found, err := s.lookupPlan(ctx, plan)
	if err != nil {
		return "", err
	}
	if found {
		return price.ID, nil
	}

	refreshed, err := s.refreshOnDemand(ctx)
	if err != nil {
		slog.Warn("catalog_refresh_failed", "plan", plan, "error", err)
	}
	if !refreshed {
		return "", ErrPlanNotFound
	}

	price, found, err = s.lookupPlan(ctx, plan)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrPlanNotFound
	}
	return price.ID, nil
}

func (s *Service) lookupPlan(ctx context.Context, plan string) (model.Price, bool, error) {
	rows, err := s.mirror.ListActive(ctx)
	if err != nil {
		return model.Price{}, false, fmt.Errorf("failed to resolve plan: %w", err)
	}
	price, ok := findPlanPrice(rows, plan)
	return price, ok, nil
}

// refreshOnDemand syncs the mirror unless a refresh ran within the
// cooldown. Concurrent callers share one sync, which outlives the caller
// that started it. It reports whether the mirror may have changed.
func (s *Service) refreshOnDemand(ctx context.Context) (bool, error) {
	v, err, _ := s.refresh.Do("refresh", func() (interface{}, error) {
		s.mu.Lock()
		if !s.lastRefresh.IsZero() && s.now().Sub(s.lastRefresh) < s.c.RefreshCooldown {
			s.mu.Unlock()
			return false, nil
		}
		s.lastRefresh = s.now()
		s.mu.Unlock()

		syncCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), onDemandSyncTimeout)
		defer cancel()

		s.metrics.IncCatalogRefresh()
		if _, err := s.Sync(syncCtx); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Sync copies every product and price from the provider into the mirror
// and drops the cached listing.
func (s *Service) Sync(ctx context.Context) (SyncStats, error) {
	start := s.now()

	var (
		products []model.Product
		prices   []model.Price
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.provider.ListProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		prices, err = s.provider.ListPrices(gctx, "")
		return err
	})

	if err := g.Wait(); err != nil {
		s.metrics.IncCatalogSync(metrics.StatusFailed)
		return SyncStats{}, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	stats, err := s.mirror.Replace(ctx, products, prices, start.UTC())
	if err != nil {
		s.metrics.IncCatalogSync(metrics.StatusFailed)
		return SyncStats{}, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateProducts(ctx); err != nil {
			slog.Warn("catalog_cache_invalidate_failed", "error", err)
		}
	}

	s.metrics.IncCatalogSync(metrics.StatusSuccess)
	s.metrics.ObserveCatalogSyncDuration(s.now().Sub(start))
	return stats, nil
}
