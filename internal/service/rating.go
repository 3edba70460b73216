package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jpsantos/boatline/backend/internal/domain"
	"github.com/jpsantos/boatline/backend/internal/repo"
)

// RatingService implements post-trip ratings: each participant of a COMPLETED
// trip may rate the other exactly once. The (trip, rater) unique index in the
// database is the final authority on "once"; this layer decides who may rate
// whom and validates the score.
type RatingService struct {
	ratings repo.RatingRepo
	trips   repo.TripRepo
}

// NewRatingService constructs a RatingService backed by the provided repos.
func NewRatingService(ratings repo.RatingRepo, trips repo.TripRepo) *RatingService {
	return &RatingService{ratings: ratings, trips: trips}
}

// Submit records the rater's score of the other trip participant.
//
// The trip must be COMPLETED, the rater must be its passenger or bound
// sailor, and the score must be within [0, 5]. The rated party is derived,
// never supplied: the passenger rates the sailor and vice versa. A repeat
// submission returns domain.ErrConflict.
func (s *RatingService) Submit(ctx context.Context, tripID, raterID uuid.UUID, score float64, comment string) (domain.Rating, error) {
	if score < 0 || score > 5 {
		return domain.Rating{}, fmt.Errorf("%w: score must be between 0 and 5", domain.ErrValidation)
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Rating{}, fmt.Errorf("service.RatingService.Submit: %w", err)
	}
	if trip.Status != domain.StatusCompleted {
		return domain.Rating{}, fmt.Errorf("service.RatingService.Submit: %w", domain.ErrConflict)
	}

	ratedID, err := counterpart(trip, raterID)
	if err != nil {
		return domain.Rating{}, fmt.Errorf("service.RatingService.Submit: %w", err)
	}

	result, err := s.ratings.Create(ctx, domain.Rating{
		TripID:  tripID,
		RaterID: raterID,
		RatedID: ratedID,
		Score:   score,
		Comment: comment,
	})
	if err != nil {
		return domain.Rating{}, fmt.Errorf("service.RatingService.Submit: %w", err)
	}
	return result, nil
}

// HasRated reports whether the rater has already rated the trip. This is the
// server-authoritative answer the client-side rating gate falls back to when
// its local marker is absent.
func (s *RatingService) HasRated(ctx context.Context, tripID, raterID uuid.UUID) (bool, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return false, fmt.Errorf("service.RatingService.HasRated: %w", err)
	}
	rated, err := s.ratings.Exists(ctx, tripID, raterID)
	if err != nil {
		return false, fmt.Errorf("service.RatingService.HasRated: %w", err)
	}
	return rated, nil
}

// SummaryFor returns the user's average received score and rating count.
// Unrated users average 5.0.
func (s *RatingService) SummaryFor(ctx context.Context, userID uuid.UUID) (domain.RatingSummary, error) {
	summary, err := s.ratings.Summary(ctx, userID)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("service.RatingService.SummaryFor: %w", err)
	}
	return summary, nil
}

// ListForUser returns all ratings received by a user, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *RatingService) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Rating, error) {
	ratings, err := s.ratings.ListByRated(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.RatingService.ListForUser: %w", err)
	}
	if ratings == nil {
		return []domain.Rating{}, nil
	}
	return ratings, nil
}

// counterpart resolves who the rater is scoring: the passenger rates the
// sailor, the sailor rates the passenger. Anyone else is forbidden.
func counterpart(trip domain.Trip, raterID uuid.UUID) (uuid.UUID, error) {
	switch {
	case trip.PassengerID == raterID:
		if trip.SailorID == nil {
			// COMPLETED implies a bound sailor; guard against bad data anyway.
			return uuid.UUID{}, domain.ErrConflict
		}
		return *trip.SailorID, nil
	case trip.SailorID != nil && *trip.SailorID == raterID:
		return trip.PassengerID, nil
	default:
		return uuid.UUID{}, domain.ErrForbidden
	}
}
