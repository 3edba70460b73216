package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jpsantos/boatline/backend/internal/domain"
	"github.com/jpsantos/boatline/backend/internal/middleware"
)

// createTripRequest is the JSON body for POST /api/passenger/trips.
type createTripRequest struct {
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	People        int        `json:"people"`
	PaymentMethod string     `json:"payment_method"`
	ProposedPrice float64    `json:"proposed_price"`
	Notes         string     `json:"notes"`
	ScheduledAt   *time.Time `json:"scheduled_at"` // RFC 3339, optional
}

// counterRequest is the JSON body for POST /api/sailor/trips/{id}/counter.
type counterRequest struct {
	NewValue float64 `json:"newValue"`
}

// respondCounterRequest is the JSON body for
// POST /api/passenger/trips/{id}/counter/respond.
type respondCounterRequest struct {
	Accept bool `json:"accept"`
}

// CreateTrip handles POST /api/passenger/trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())

	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "malformed request body")
		return
	}

	created, err := s.trips.Request(r.Context(), domain.Trip{
		PassengerID:   actor.ID,
		Origin:        req.Origin,
		Destination:   req.Destination,
		People:        req.People,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		ProposedPrice: req.ProposedPrice,
		Notes:         req.Notes,
		ScheduledAt:   req.ScheduledAt,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// ListPassengerTrips handles GET /api/passenger/trips.
// Supports ?page= and ?size= query parameters (defaults: page=1, size=20, max=100).
func (s *Server) ListPassengerTrips(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())

	page, err := s.trips.ListForPassenger(r.Context(), actor.ID, paginationFromQuery(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListSailorTrips handles GET /api/sailor/trips.
func (s *Server) ListSailorTrips(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())

	page, err := s.trips.ListForSailor(r.Context(), actor.ID, paginationFromQuery(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListAvailableTrips handles GET /api/sailor/trips/available.
// Returns unclaimed REQUESTED trips the calling sailor has not declined.
func (s *Server) ListAvailableTrips(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())

	trips, err := s.trips.ListAvailable(r.Context(), actor.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// GetTrip handles GET /api/trips/{id} — the poll target for detail views.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	tripID, ok := tripIDFromURL(w, r)
	if !ok {
		return
	}

	trip, err := s.trips.GetForParticipant(r.Context(), tripID, actor.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// AcceptTrip handles POST /api/sailor/trips/{id}/accept.
func (s *Server) AcceptTrip(w http.ResponseWriter, r *http.Request) {
	s.tripAction(w, r, s.trips.Accept)
}

// CounterTrip handles POST /api/sailor/trips/{id}/counter.
func (s *Server) CounterTrip(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	tripID, ok := tripIDFromURL(w, r)
	if !ok {
		return
	}

	var req counterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "malformed request body")
		return
	}

	trip, err := s.trips.CounterPropose(r.Context(), tripID, actor.ID, req.NewValue)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// DeclineTrip handles POST /api/sailor/trips/{id}/decline.
func (s *Server) DeclineTrip(w http.ResponseWriter, r *http.Request) {
	s.tripAction(w, r, s.trips.Decline)
}

// StartTrip handles POST /api/sailor/trips/{id}/start.
func (s *Server) StartTrip(w http.ResponseWriter, r *http.Request) {
	s.tripAction(w, r, s.trips.Start)
}

// CompleteTrip handles POST /api/sailor/trips/{id}/complete.
func (s *Server) CompleteTrip(w http.ResponseWriter, r *http.Request) {
	s.tripAction(w, r, s.trips.Complete)
}

// CancelTrip handles POST /api/passenger/trips/{id}/cancel and
// POST /api/sailor/trips/{id}/cancel — either party may cancel.
func (s *Server) CancelTrip(w http.ResponseWriter, r *http.Request) {
	s.tripAction(w, r, s.trips.Cancel)
}

// RespondCounter handles POST /api/passenger/trips/{id}/counter/respond.
func (s *Server) RespondCounter(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	tripID, ok := tripIDFromURL(w, r)
	if !ok {
		return
	}

	var req respondCounterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "malformed request body")
		return
	}

	trip, err := s.trips.RespondToCounter(r.Context(), tripID, actor.ID, req.Accept)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// tripAction runs one of the bodyless state-mutating calls (accept, decline,
// start, complete, cancel) that all share the same shape: trip id from the
// URL, actor from the context, updated trip back.
func (s *Server) tripAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, tripID, actorID uuid.UUID) (domain.Trip, error)) {
	actor, _ := middleware.ActorFrom(r.Context())
	tripID, ok := tripIDFromURL(w, r)
	if !ok {
		return
	}

	trip, err := fn(r.Context(), tripID, actor.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// tripIDFromURL parses the {id} chi URL parameter. On failure it writes a 422
// and returns ok=false.
func tripIDFromURL(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "invalid trip id")
		return uuid.UUID{}, false
	}
	return id, true
}

// paginationFromQuery reads optional ?page= and ?size= query parameters.
// Unparseable values are ignored in favor of the defaults.
func paginationFromQuery(r *http.Request) domain.PaginationParams {
	var page, size *int
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = &v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil {
		size = &v
	}
	return domain.NewPaginationParams(page, size)
}
