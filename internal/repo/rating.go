package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jpsantos/boatline/backend/internal/domain"
)

// uniqueViolation is the Postgres error code raised when an insert hits a
// unique index — here, the (trip_id, rater_id) at-most-once constraint.
const uniqueViolation = "23505"

// RatingRepo defines the persistence operations for Ratings.
type RatingRepo interface {
	// Create inserts a rating and returns the persisted record.
	// Returns domain.ErrConflict if this rater already rated this trip —
	// the unique index, not application logic, is the authority.
	Create(ctx context.Context, rating domain.Rating) (domain.Rating, error)

	// Exists reports whether the rater has already rated the trip.
	// This is the server-authoritative check behind the client rating gate.
	Exists(ctx context.Context, tripID, raterID uuid.UUID) (bool, error)

	// ListByRated returns all ratings received by a user, newest first.
	ListByRated(ctx context.Context, ratedID uuid.UUID) ([]domain.Rating, error)

	// Summary returns the user's average received score and rating count.
	// A user with no ratings averages 5.0 by convention.
	Summary(ctx context.Context, ratedID uuid.UUID) (domain.RatingSummary, error)
}

// pgRatingRepo is the Postgres implementation of RatingRepo.
type pgRatingRepo struct {
	db db
}

// NewRatingRepo constructs a RatingRepo backed by the provided db connection.
func NewRatingRepo(db db) RatingRepo {
	return &pgRatingRepo{db: db}
}

const ratingColumns = `id, trip_id, rater_id, rated_id, score, comment, created_at`

func (r *pgRatingRepo) Create(ctx context.Context, rating domain.Rating) (domain.Rating, error) {
	const q = `
		INSERT INTO ratings (trip_id, rater_id, rated_id, score, comment)
		VALUES (@trip_id, @rater_id, @rated_id, @score, @comment)
		RETURNING ` + ratingColumns

	args := pgx.NamedArgs{
		"trip_id":  rating.TripID,
		"rater_id": rating.RaterID,
		"rated_id": rating.RatedID,
		"score":    rating.Score,
		"comment":  rating.Comment,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanRating(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Rating{}, fmt.Errorf("repo.RatingRepo.Create: %w", domain.ErrConflict)
		}
		return domain.Rating{}, fmt.Errorf("repo.RatingRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgRatingRepo) Exists(ctx context.Context, tripID, raterID uuid.UUID) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM ratings
			WHERE trip_id = @trip_id AND rater_id = @rater_id
		)`

	var exists bool
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "rater_id": raterID}).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repo.RatingRepo.Exists: %w", err)
	}
	return exists, nil
}

func (r *pgRatingRepo) ListByRated(ctx context.Context, ratedID uuid.UUID) ([]domain.Rating, error) {
	const q = `
		SELECT ` + ratingColumns + `
		FROM ratings
		WHERE rated_id = @rated_id
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"rated_id": ratedID})
	if err != nil {
		return nil, fmt.Errorf("repo.RatingRepo.ListByRated: %w", err)
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		rt, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RatingRepo.ListByRated: scan: %w", err)
		}
		ratings = append(ratings, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RatingRepo.ListByRated: rows: %w", err)
	}

	return ratings, nil
}

func (r *pgRatingRepo) Summary(ctx context.Context, ratedID uuid.UUID) (domain.RatingSummary, error) {
	// coalesce to 5.0: an unrated user starts with a perfect score rather
	// than an empty one.
	const q = `
		SELECT coalesce(avg(score), 5.0), count(*)
		FROM ratings
		WHERE rated_id = @rated_id`

	s := domain.RatingSummary{UserID: ratedID}
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"rated_id": ratedID}).Scan(&s.Average, &s.Count)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("repo.RatingRepo.Summary: %w", err)
	}
	return s, nil
}

// scanRating maps a single database row into a domain.Rating.
func scanRating(s scanner) (domain.Rating, error) {
	var (
		rt      domain.Rating
		id      pgtype.UUID
		tripID  pgtype.UUID
		raterID pgtype.UUID
		ratedID pgtype.UUID
	)

	err := s.Scan(&id, &tripID, &raterID, &ratedID, &rt.Score, &rt.Comment, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, domain.ErrNotFound
		}
		return domain.Rating{}, err
	}

	rt.ID = uuid.UUID(id.Bytes)
	rt.TripID = uuid.UUID(tripID.Bytes)
	rt.RaterID = uuid.UUID(raterID.Bytes)
	rt.RatedID = uuid.UUID(ratedID.Bytes)

	return rt, nil
}
