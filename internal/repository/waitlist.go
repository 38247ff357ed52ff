package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/envis/envis/internal/model"
)

// Common errors for waitlist repository operations.
var (
	ErrWaitlistEntryNotFound = errors.New("waitlist entry not found")
	ErrEmailExists           = errors.New("email already on waitlist")
)

const waitlistColumns = `id, name, email, family_size, interests, created_at`

// CreateWaitlistEntry inserts a new entry. CreatedAt is assigned by the
// database and written back onto entry.
func (r *Repository) CreateWaitlistEntry(ctx context.Context, entry *model.WaitlistEntry) error {
	query := `
		INSERT INTO waitlist (id, name, email, family_size, interests)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.Name,
		entry.Email,
		entry.FamilySize,
		entry.Interests,
	).Scan(&entry.CreatedAt)

	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create waitlist entry: %w", err)
	}

	return nil
}

// GetWaitlistEntryByEmail retrieves an entry by exact email match.
func (r *Repository) GetWaitlistEntryByEmail(ctx context.Context, email string) (*model.WaitlistEntry, error) {
	query := `SELECT ` + waitlistColumns + ` FROM waitlist WHERE email = $1`

	entry, err := scanWaitlistEntry(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWaitlistEntryNotFound
		}
		return nil, fmt.Errorf("failed to get waitlist entry by email: %w", err)
	}

	return entry, nil
}

// ListWaitlistEntries returns every entry, newest first.
func (r *Repository) ListWaitlistEntries(ctx context.Context) ([]*model.WaitlistEntry, error) {
	query := `SELECT ` + waitlistColumns + ` FROM waitlist ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list waitlist entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*model.WaitlistEntry, 0)
	for rows.Next() {
		entry, err := scanWaitlistEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan waitlist entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating waitlist entries: %w", err)
	}

	return entries, nil
}

func scanWaitlistEntry(row pgx.Row) (*model.WaitlistEntry, error) {
	var entry model.WaitlistEntry
	err := row.Scan(
		&entry.ID,
		&entry.Name,
		&entry.Email,
		&entry.FamilySize,
		&entry.Interests,
		&entry.CreatedAt,
	)
	return &entry, err
}
