package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/envis/envis/internal/cache"
	"github.com/envis/envis/internal/catalog"
	"github.com/envis/envis/internal/config"
	"github.com/envis/envis/internal/payment"
)

func seedProductsCmd() *cobra.Command {
	var skipSync bool
	cmd := &cobra.Command{
		Use:   "seed-products",
		Short: "Create the billing plans at Stripe",
		Long: `Ensure every billing plan exists at Stripe with an active price at the
expected amount, then sync the local catalog mirror.

Existing products are reused. A product without a matching active price gets
a new price and its other active prices are archived.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			provider, err := payment.NewStripe(cfg.StripeSecretKey)
			if err != nil {
				return fmt.Errorf("STRIPE_SECRET_KEY is required: %w", err)
			}

			ctx := cmd.Context()
			results, err := payment.Seed(ctx, provider, payment.DefaultPlans)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range results {
				action := "exists"
				switch {
				case r.ProductCreated:
					action = "created"
				case r.PriceCreated:
					action = "repriced"
				}
				fmt.Fprintf(out, "%-12s %-8s product=%s price=%s\n", r.PlanID, action, r.ProductID, r.PriceID)
			}

			if skipSync {
				return nil
			}
			return syncCatalog(ctx, cmd, cfg, provider)
		},
	}
	cmd.Flags().BoolVar(&skipSync, "skip-sync", false, "do not refresh the catalog mirror afterwards")
	return cmd
}

func syncCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-catalog",
		Short: "Copy products and prices from Stripe into the catalog mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			provider, err := payment.NewStripe(cfg.StripeSecretKey)
			if err != nil {
				return fmt.Errorf("STRIPE_SECRET_KEY is required: %w", err)
			}
			return syncCatalog(cmd.Context(), cmd, cfg, provider)
		},
	}
}

func syncCatalog(ctx context.Context, cmd *cobra.Command, cfg *config.CLIConfig, provider payment.Provider) error {
	mirrorURL := cfg.GetMirrorDatabaseURL()
	db, err := catalog.Open(ctx, mirrorURL)
	if err != nil {
		return fmt.Errorf("%s", config.SanitizeError(err, mirrorURL))
	}
	defer db.Close()

	var products catalog.ProductCache
	if cfg.RedisURL != "" {
		c, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("cache_unavailable", "error", config.SanitizeError(err, cfg.RedisURL))
		} else {
			defer c.Close()
			products = c
		}
	}

	svc := catalog.NewService(catalog.NewStore(db), provider, products, nil, catalog.DefaultConfig())
	stats, err := svc.Sync(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "mirror synced: %d products, %d prices, %d products deactivated, %d prices deactivated\n",
		stats.Products, stats.Prices, stats.DeactivatedProducts, stats.DeactivatedPrices)
	return nil
}
