package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jpsantos/boatline/backend/internal/middleware"
)

// submitRatingRequest is the JSON body for POST /api/trips/{id}/ratings.
type submitRatingRequest struct {
	Score   float64 `json:"score"`
	Comment string  `json:"comment"`
}

// ratedResponse is the body of GET /api/trips/{id}/ratings/check.
type ratedResponse struct {
	Rated bool `json:"rated"`
}

// SubmitRating handles POST /api/trips/{id}/ratings.
// The rated party is derived server-side: each participant rates the other.
func (s *Server) SubmitRating(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	tripID, ok := tripIDFromURL(w, r)
	if !ok {
		return
	}

	var req submitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "malformed request body")
		return
	}

	rating, err := s.ratings.Submit(r.Context(), tripID, actor.ID, req.Score, req.Comment)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rating)
}

// CheckRating handles GET /api/trips/{id}/ratings/check.
// The client-side rating gate calls this when no local marker exists.
func (s *Server) CheckRating(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	tripID, ok := tripIDFromURL(w, r)
	if !ok {
		return
	}

	rated, err := s.ratings.HasRated(r.Context(), tripID, actor.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ratedResponse{Rated: rated})
}

// UserRatingSummary handles GET /api/users/{id}/rating.
func (s *Server) UserRatingSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "invalid user id")
		return
	}

	summary, err := s.ratings.SummaryFor(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// UserRatings handles GET /api/users/{id}/ratings.
func (s *Server) UserRatings(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "invalid user id")
		return
	}

	ratings, err := s.ratings.ListForUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}
