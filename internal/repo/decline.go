package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DeclineRepo records which sailors have hidden which trips from their own
// availability pool. A decline never changes the trip's status; the
// availability query filters on this table instead.
type DeclineRepo interface {
	// Add records a decline. Declining the same trip twice is a no-op, not
	// an error, so a double-tap in the UI stays harmless.
	Add(ctx context.Context, tripID, sailorID uuid.UUID) error

	// Exists reports whether the sailor has declined the trip.
	Exists(ctx context.Context, tripID, sailorID uuid.UUID) (bool, error)
}

// pgDeclineRepo is the Postgres implementation of DeclineRepo.
type pgDeclineRepo struct {
	db db
}

// NewDeclineRepo constructs a DeclineRepo backed by the provided db connection.
func NewDeclineRepo(db db) DeclineRepo {
	return &pgDeclineRepo{db: db}
}

func (r *pgDeclineRepo) Add(ctx context.Context, tripID, sailorID uuid.UUID) error {
	const q = `
		INSERT INTO trip_declines (trip_id, sailor_id)
		VALUES (@trip_id, @sailor_id)
		ON CONFLICT (trip_id, sailor_id) DO NOTHING`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "sailor_id": sailorID})
	if err != nil {
		return fmt.Errorf("repo.DeclineRepo.Add: %w", err)
	}
	return nil
}

func (r *pgDeclineRepo) Exists(ctx context.Context, tripID, sailorID uuid.UUID) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM trip_declines
			WHERE trip_id = @trip_id AND sailor_id = @sailor_id
		)`

	var exists bool
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "sailor_id": sailorID}).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repo.DeclineRepo.Exists: %w", err)
	}
	return exists, nil
}
