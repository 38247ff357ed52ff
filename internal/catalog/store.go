// Package catalog serves the subscription catalog from a local mirror of
// the payment provider's products and prices and keeps that mirror fresh.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/envis/envis/internal/model"
)

// Store reads and writes the stripe.products / stripe.prices mirror.
type Store struct {
	db *sql.DB
}

// Open connects to the mirror database with the lib/pq driver.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping mirror database: %w", err)
	}
	return db, nil
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Ping checks mirror connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const listActiveQuery = `
	SELECT p.id, p.name, p.description, p.metadata, p.created,
	       pr.id, pr.unit_amount, pr.currency, pr.recurring_interval, pr.created
	FROM stripe.products p
	LEFT JOIN stripe.prices pr ON pr.product = p.id AND pr.active
	WHERE p.active
	ORDER BY p.created DESC, p.id, pr.unit_amount ASC, pr.id
`

// ListActive returns active products, newest first, each carrying its
// active prices in ascending amount. Products without an active price are
// returned with no prices.
func (s *Store) ListActive(ctx context.Context) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx, listActiveQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog mirror: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var (
			p        model.Product
			metadata []byte

			priceID, currency, interval sql.NullString
			amount                      sql.NullInt64
			priceCreated                sql.NullTime
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &metadata, &p.CreatedAt,
			&priceID, &amount, &currency, &interval, &priceCreated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}

		if n := len(products); n == 0 || products[n-1].ID != p.ID {
			if err := decodeMetadata(metadata, &p.Metadata); err != nil {
				return nil, fmt.Errorf("product %s: %w", p.ID, err)
			}
			p.Active = true
			products = append(products, p)
		}

		if !priceID.Valid {
			continue
		}
		last := &products[len(products)-1]
		last.Prices = append(last.Prices, model.Price{
			ID:                priceID.String,
			ProductID:         p.ID,
			UnitAmount:        amount.Int64,
			Currency:          currency.String,
			RecurringInterval: interval.String,
			Active:            true,
			CreatedAt:         priceCreated.Time,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog mirror: %w", err)
	}
	return products, nil
}

// SyncStats summarises one mirror replacement.
type SyncStats struct {
	Products            int
	Prices              int
	DeactivatedProducts int64
	DeactivatedPrices   int64
}

const (
	upsertProductQuery = `
		INSERT INTO stripe.products (id, name, description, metadata, active, created, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    metadata = EXCLUDED.metadata,
		    active = EXCLUDED.active,
		    created = EXCLUDED.created,
		    synced_at = EXCLUDED.synced_at
	`
	upsertPriceQuery = `
		INSERT INTO stripe.prices (id, product, unit_amount, currency, recurring_interval, active, created, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET product = EXCLUDED.product,
		    unit_amount = EXCLUDED.unit_amount,
		    currency = EXCLUDED.currency,
		    recurring_interval = EXCLUDED.recurring_interval,
		    active = EXCLUDED.active,
		    created = EXCLUDED.created,
		    synced_at = EXCLUDED.synced_at
	`
	deactivateProductsQuery = `
		UPDATE stripe.products SET active = FALSE, synced_at = $2
		WHERE active AND NOT (id = ANY($1))
	`
	deactivatePricesQuery = `
		UPDATE stripe.prices SET active = FALSE, synced_at = $2
		WHERE active AND NOT (id = ANY($1))
	`
)

// Replace upserts products and prices as seen upstream at syncedAt and
// marks every mirrored row missing from the upstream listing inactive. The
// whole replacement is one transaction.
func (s *Store) Replace(ctx context.Context, products []model.Product, prices []model.Price, syncedAt time.Time) (stats SyncStats, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to begin mirror sync: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	productIDs := make([]string, 0, len(products))
	for _, p := range products {
		metadata, err := json.Marshal(nonNilMetadata(p.Metadata))
		if err != nil {
			return stats, fmt.Errorf("marshal metadata of %s: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx, upsertProductQuery,
			p.ID, p.Name, p.Description, metadata, p.Active, p.CreatedAt, syncedAt,
		); err != nil {
			return stats, fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
		}
		productIDs = append(productIDs, p.ID)
	}

	priceIDs := make([]string, 0, len(prices))
	for _, pr := range prices {
		var interval sql.NullString
		if pr.RecurringInterval != "" {
			interval = sql.NullString{String: pr.RecurringInterval, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, upsertPriceQuery,
			pr.ID, pr.ProductID, pr.UnitAmount, pr.Currency, interval, pr.Active, pr.CreatedAt, syncedAt,
		); err != nil {
			return stats, fmt.Errorf("failed to upsert price %s: %w", pr.ID, err)
		}
		priceIDs = append(priceIDs, pr.ID)
	}

	res, err := tx.ExecContext(ctx, deactivateProductsQuery, pq.Array(productIDs), syncedAt)
	if err != nil {
		return stats, fmt.Errorf("failed to deactivate missing products: %w", err)
	}
	stats.DeactivatedProducts, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, deactivatePricesQuery, pq.Array(priceIDs), syncedAt)
	if err != nil {
		return stats, fmt.Errorf("failed to deactivate missing prices: %w", err)
	}
	stats.DeactivatedPrices, _ = res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("failed to commit mirror sync: %w", err)
	}

	stats.Products = len(products)
	stats.Prices = len(prices)
	return stats, nil
}

func decodeMetadata(raw []byte, dst *map[string]string) error {
	*dst = map[string]string{}
	if len(raw) == 0 {
		return nil
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("decode metadata: %w", err)
	}
	for k, v := range values {
		if s, ok := v.(string); ok {
			(*dst)[k] = s
			continue
		}
		(*dst)[k] = fmt.Sprint(v)
	}
	return nil
}

func nonNilMetadata(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
