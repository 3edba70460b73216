// Package handler implements the HTTP layer for the Boatline API.
// Handlers are methods on Server, split into domain-specific files (trip.go,
// rating.go, health.go) but sharing the same struct so they can access its
// dependencies. Handlers decode, delegate to a Servicer interface, and map
// sentinel errors to HTTP responses — no business logic lives here.
package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/jpsantos/boatline/backend/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Request(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetForParticipant(ctx context.Context, tripID, userID uuid.UUID) (domain.Trip, error)
	ListForPassenger(ctx context.Context, passengerID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.Trip], error)
	ListForSailor(ctx context.Context, sailorID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.Trip], error)
	ListAvailable(ctx context.Context, sailorID uuid.UUID) ([]domain.Trip, error)
	Accept(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error)
	CounterPropose(ctx context.Context, tripID, sailorID uuid.UUID, newValue float64) (domain.Trip, error)
	Decline(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error)
	RespondToCounter(ctx context.Context, tripID, passengerID uuid.UUID, accept bool) (domain.Trip, error)
	Cancel(ctx context.Context, tripID, userID uuid.UUID) (domain.Trip, error)
	Start(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error)
	Complete(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error)
}

// RatingServicer defines the business operations the rating handlers depend on.
type RatingServicer interface {
	Submit(ctx context.Context, tripID, raterID uuid.UUID, score float64, comment string) (domain.Rating, error)
	HasRated(ctx context.Context, tripID, raterID uuid.UUID) (bool, error)
	SummaryFor(ctx context.Context, userID uuid.UUID) (domain.RatingSummary, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Rating, error)
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	trips   TripServicer
	ratings RatingServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, ratings RatingServicer) *Server {
	return &Server{trips: trips, ratings: ratings}
}
