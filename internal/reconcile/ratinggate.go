package reconcile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jpsantos/boatline/backend/internal/domain"
)

// RatingChecker asks the server whether the caller already rated a trip.
// Implemented by Client. The server's answer is authoritative; the local
// marker store below is only a latency optimization.
type RatingChecker interface {
	HasRated(ctx context.Context, tripID uuid.UUID) (bool, error)
}

// RatingSubmitter submits a rating. Implemented by Client.
type RatingSubmitter interface {
	SubmitRating(ctx context.Context, tripID uuid.UUID, score float64, comment string) (domain.Rating, error)
}

// MarkerStore remembers which trips this device has already handled (rated
// or explicitly skipped). Markers are cheap and may be stale — the gate
// never lets a marker override a server "not yet rated" answer, and a
// marker is only written after the server acknowledged the rating.
type MarkerStore interface {
	Has(tripID uuid.UUID) bool
	Set(tripID uuid.UUID)
	Clear(tripID uuid.UUID)
}

// MemoryMarkerStore is a MarkerStore scoped to one view session. It is
// deliberately not a process-wide global: each reconciler session owns its
// store and the markers die with the session.
type MemoryMarkerStore struct {
	marked map[uuid.UUID]struct{}
}

// NewMemoryMarkerStore returns an empty session-scoped store.
func NewMemoryMarkerStore() *MemoryMarkerStore {
	return &MemoryMarkerStore{marked: make(map[uuid.UUID]struct{})}
}

func (m *MemoryMarkerStore) Has(tripID uuid.UUID) bool {
	_, ok := m.marked[tripID]
	return ok
}

func (m *MemoryMarkerStore) Set(tripID uuid.UUID) {
	m.marked[tripID] = struct{}{}
}

func (m *MemoryMarkerStore) Clear(tripID uuid.UUID) {
	delete(m.marked, tripID)
}

// RatingGate decides whether to prompt the user to rate a completed trip,
// guaranteeing "never re-prompt someone who already acted, across devices":
// the local marker answers fast for this device, and when it is absent the
// server check covers actions taken elsewhere.
type RatingGate struct {
	markers MarkerStore
	checker RatingChecker
	submit  RatingSubmitter
}

// NewRatingGate constructs a gate. markers may be nil, in which case a fresh
// session-scoped MemoryMarkerStore is used.
func NewRatingGate(markers MarkerStore, checker RatingChecker, submit RatingSubmitter) *RatingGate {
	if markers == nil {
		markers = NewMemoryMarkerStore()
	}
	return &RatingGate{markers: markers, checker: checker, submit: submit}
}

// ShouldPrompt reports whether the rating dialog should be shown for tripID.
//
// The local marker short-circuits to false. Otherwise the server is asked:
// "already rated" back-fills the marker and suppresses the prompt; "not yet
// rated" clears any stale marker state and prompts. A check failure
// suppresses the prompt for now — the next completed-trip poll retries.
func (g *RatingGate) ShouldPrompt(ctx context.Context, tripID uuid.UUID) (bool, error) {
	if g.markers.Has(tripID) {
		return false, nil
	}

	rated, err := g.checker.HasRated(ctx, tripID)
	if err != nil {
		return false, fmt.Errorf("reconcile.RatingGate.ShouldPrompt: %w", err)
	}
	if rated {
		g.markers.Set(tripID)
		return false, nil
	}

	g.markers.Clear(tripID)
	return true, nil
}

// Submit sends the rating and, only after the server acknowledges it, sets
// the local marker. A failed submission leaves the marker unset so the user
// can be prompted again.
func (g *RatingGate) Submit(ctx context.Context, tripID uuid.UUID, score float64, comment string) (domain.Rating, error) {
	rating, err := g.submit.SubmitRating(ctx, tripID, score, comment)
	if err != nil {
		// A conflict means someone (this user, another device) already rated:
		// the server has spoken, so the marker is safe to set.
		if apiErr, ok := err.(*APIError); ok && apiErr.Code == "state_conflict" {
			g.markers.Set(tripID)
		}
		return domain.Rating{}, fmt.Errorf("reconcile.RatingGate.Submit: %w", err)
	}
	g.markers.Set(tripID)
	return rating, nil
}

// Skip records that the user dismissed the prompt for this trip; this device
// will not ask again for the same trip.
func (g *RatingGate) Skip(tripID uuid.UUID) {
	g.markers.Set(tripID)
}
