// Package service contains the business logic for the Boatline API.
// Services validate inputs, enforce the trip state machine, and orchestrate
// repo calls. No SQL lives here — services depend on repo interfaces, not
// implementations. Status-transition atomicity lives in the repo; this layer
// owns validation, the active-trip guard, and actor permission checks.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jpsantos/boatline/backend/internal/domain"
	"github.com/jpsantos/boatline/backend/internal/repo"
)

// TripService implements the trip lifecycle: request intake, the
// price-negotiation state machine, and the per-sailor availability pool.
type TripService struct {
	trips    repo.TripRepo
	declines repo.DeclineRepo
}

// NewTripService constructs a TripService backed by the provided repos.
func NewTripService(trips repo.TripRepo, declines repo.DeclineRepo) *TripService {
	return &TripService{trips: trips, declines: declines}
}

// Request validates a passenger's trip request, runs the active-trip guard,
// and creates the trip in REQUESTED status.
//
// The guard: a passenger may hold at most one blocking trip. A trip blocks
// when it is IN_PROGRESS, or when it is REQUESTED / AWAITING_PASSENGER_APPROVAL /
// ACCEPTED with no scheduled_at. Scheduled trips never block new immediate
// requests until they actually start.
func (s *TripService) Request(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := validateTripRequest(trip); err != nil {
		return domain.Trip{}, err
	}

	blocked, err := s.trips.HasBlockingTrip(ctx, trip.PassengerID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Request: %w", err)
	}
	if blocked {
		return domain.Trip{}, fmt.Errorf("%w: finish or cancel your current trip before requesting a new one", domain.ErrActiveTrip)
	}

	result, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Request: %w", err)
	}
	return result, nil
}

// GetForParticipant returns a trip to someone allowed to see its detail view:
// the passenger, the bound sailor, or the sailor whose counter-offer is
// outstanding. Everyone else gets domain.ErrForbidden.
func (s *TripService) GetForParticipant(ctx context.Context, tripID, userID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetForParticipant: %w", err)
	}
	if !trip.IsParticipant(userID) &&
		(trip.CounterSailorID == nil || *trip.CounterSailorID != userID) {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetForParticipant: %w", domain.ErrForbidden)
	}
	return trip, nil
}

// ListForPassenger returns one page of the passenger's trips, newest first.
func (s *TripService) ListForPassenger(ctx context.Context, passengerID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.Trip], error) {
	trips, total, err := s.trips.ListByPassenger(ctx, passengerID, p)
	if err != nil {
		return domain.Page[domain.Trip]{}, fmt.Errorf("service.TripService.ListForPassenger: %w", err)
	}
	return domain.NewPage(trips, total, p), nil
}

// ListForSailor returns one page of the trips bound to the sailor, newest first.
func (s *TripService) ListForSailor(ctx context.Context, sailorID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.Trip], error) {
	trips, total, err := s.trips.ListBySailor(ctx, sailorID, p)
	if err != nil {
		return domain.Page[domain.Trip]{}, fmt.Errorf("service.TripService.ListForSailor: %w", err)
	}
	return domain.NewPage(trips, total, p), nil
}

// ListAvailable returns the sailor's availability pool: unclaimed REQUESTED
// trips the sailor has not declined. Always returns a non-nil slice.
func (s *TripService) ListAvailable(ctx context.Context, sailorID uuid.UUID) ([]domain.Trip, error) {
	trips, err := s.trips.ListAvailable(ctx, sailorID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListAvailable: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// Accept claims a REQUESTED trip for the sailor at the passenger's proposed
// price. Accept and counter-propose are mutually exclusive first-mover
// actions: whichever lands first wins, and the loser gets domain.ErrConflict.
func (s *TripService) Accept(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.Accept(ctx, tripID, sailorID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Accept: %w", err)
	}
	return trip, nil
}

// CounterPropose records the sailor's alternative price on a REQUESTED trip
// and moves it to AWAITING_PASSENGER_APPROVAL. The trip is earmarked: it
// leaves every sailor's availability pool, but no sailor is bound until the
// passenger accepts. Only one counter-offer may be outstanding at a time.
func (s *TripService) CounterPropose(ctx context.Context, tripID, sailorID uuid.UUID, newValue float64) (domain.Trip, error) {
	if newValue <= 0 {
		return domain.Trip{}, fmt.Errorf("%w: counter-offer must be greater than zero", domain.ErrValidation)
	}
	trip, err := s.trips.SetCounter(ctx, tripID, sailorID, newValue)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.CounterPropose: %w", err)
	}
	return trip, nil
}

// Decline hides a REQUESTED trip from this sailor's availability pool.
// The trip's status does not change and other sailors still see it.
// Declining twice is a no-op.
func (s *TripService) Decline(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Decline: %w", err)
	}
	if trip.Status != domain.StatusRequested || trip.SailorID != nil || trip.CounterSailorID != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Decline: %w", domain.ErrConflict)
	}
	if err := s.declines.Add(ctx, tripID, sailorID); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Decline: %w", err)
	}
	return trip, nil
}

// RespondToCounter is the passenger's answer to an outstanding counter-offer.
//
// accept=true binds the earmarked sailor, locks the agreed price to the
// counter price, and moves the trip to ACCEPTED. accept=false clears the
// counter-offer, returns the trip to REQUESTED for every other sailor, and
// records a decline for the rejected sailor so the trip never reappears in
// that sailor's pool.
func (s *TripService) RespondToCounter(ctx context.Context, tripID, passengerID uuid.UUID, accept bool) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.RespondToCounter: %w", err)
	}
	if trip.PassengerID != passengerID {
		return domain.Trip{}, fmt.Errorf("service.TripService.RespondToCounter: %w", domain.ErrForbidden)
	}
	if trip.Status != domain.StatusAwaitingPassengerApproval || trip.CounterSailorID == nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.RespondToCounter: %w", domain.ErrConflict)
	}

	if accept {
		result, err := s.trips.AcceptCounter(ctx, tripID)
		if err != nil {
			return domain.Trip{}, fmt.Errorf("service.TripService.RespondToCounter: %w", err)
		}
		return result, nil
	}

	rejectedSailor := *trip.CounterSailorID
	result, err := s.trips.RejectCounter(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.RespondToCounter: %w", err)
	}
	// The rejected sailor must not see this trip again.
	if err := s.declines.Add(ctx, tripID, rejectedSailor); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.RespondToCounter: %w", err)
	}
	return result, nil
}

// Cancel moves a trip to CANCELLED on behalf of either party. Allowed only
// from REQUESTED or ACCEPTED: an in-progress boat cannot be cancelled, an
// outstanding counter-offer must be answered first, and terminal states stay
// terminal.
func (s *TripService) Cancel(ctx context.Context, tripID, userID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Cancel: %w", err)
	}
	if !trip.IsParticipant(userID) {
		return domain.Trip{}, fmt.Errorf("service.TripService.Cancel: %w", domain.ErrForbidden)
	}
	result, err := s.trips.Cancel(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Cancel: %w", err)
	}
	return result, nil
}

// Start moves an ACCEPTED trip to IN_PROGRESS. Only the bound sailor may start.
func (s *TripService) Start(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error) {
	if err := s.requireBoundSailor(ctx, tripID, sailorID, "Start"); err != nil {
		return domain.Trip{}, err
	}
	result, err := s.trips.Start(ctx, tripID, sailorID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Start: %w", err)
	}
	return result, nil
}

// Complete moves an IN_PROGRESS trip to COMPLETED. Only the bound sailor may
// complete. Completion is the sole trigger for the rating gate on both sides.
func (s *TripService) Complete(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error) {
	if err := s.requireBoundSailor(ctx, tripID, sailorID, "Complete"); err != nil {
		return domain.Trip{}, err
	}
	result, err := s.trips.Complete(ctx, tripID, sailorID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Complete: %w", err)
	}
	return result, nil
}

// requireBoundSailor distinguishes "you are not this trip's sailor"
// (domain.ErrForbidden) from "wrong state" (domain.ErrConflict, raised later
// by the conditional update) so the caller gets an accurate error.
func (s *TripService) requireBoundSailor(ctx context.Context, tripID, sailorID uuid.UUID, op string) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.TripService.%s: %w", op, err)
	}
	if trip.SailorID == nil || *trip.SailorID != sailorID {
		return fmt.Errorf("service.TripService.%s: %w", op, domain.ErrForbidden)
	}
	return nil
}

// validateTripRequest enforces the intake rules. All failures are reported
// before any state is touched.
//   - Origin and destination must be non-blank.
//   - People must be at least 1.
//   - Proposed price must be greater than zero.
//   - Payment method must be a known enum value.
func validateTripRequest(trip domain.Trip) error {
	if strings.TrimSpace(trip.Origin) == "" {
		return fmt.Errorf("%w: origin is required", domain.ErrValidation)
	}
	if strings.TrimSpace(trip.Destination) == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if trip.People < 1 {
		return fmt.Errorf("%w: people must be at least 1", domain.ErrValidation)
	}
	if trip.ProposedPrice <= 0 {
		return fmt.Errorf("%w: proposed price must be greater than zero", domain.ErrValidation)
	}
	if !trip.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unknown payment method", domain.ErrValidation)
	}
	return nil
}
