package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jpsantos/boatline/backend/internal/middleware"
)

// Routes builds the full router for the API. Everything under /api requires a
// bearer token (authn); the passenger and sailor subtrees additionally pin
// the caller's role. /healthz stays open for load balancers.
func (s *Server) Routes(authn func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(authn)

		r.Route("/passenger/trips", func(r chi.Router) {
			r.Use(middleware.RequireRole(middleware.RolePassenger))
			r.Post("/", s.CreateTrip)
			r.Get("/", s.ListPassengerTrips)
			r.Post("/{id}/counter/respond", s.RespondCounter)
			r.Post("/{id}/cancel", s.CancelTrip)
		})

		r.Route("/sailor/trips", func(r chi.Router) {
			r.Use(middleware.RequireRole(middleware.RoleSailor))
			r.Get("/", s.ListSailorTrips)
			r.Get("/available", s.ListAvailableTrips)
			r.Post("/{id}/accept", s.AcceptTrip)
			r.Post("/{id}/counter", s.CounterTrip)
			r.Post("/{id}/decline", s.DeclineTrip)
			r.Post("/{id}/start", s.StartTrip)
			r.Post("/{id}/complete", s.CompleteTrip)
			r.Post("/{id}/cancel", s.CancelTrip)
		})

		r.Route("/trips/{id}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Post("/ratings", s.SubmitRating)
			r.Get("/ratings/check", s.CheckRating)
		})

		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/rating", s.UserRatingSummary)
			r.Get("/ratings", s.UserRatings)
		})
	})

	return r
}
