package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rating is one participant's post-trip score of the other.
// Identity is the (TripID, RaterID) pair: a trip admits at most two ratings,
// passenger→sailor and sailor→passenger, enforced by a unique index.
type Rating struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	RaterID   uuid.UUID `json:"rater_id"`
	RatedID   uuid.UUID `json:"rated_id"`
	Score     float64   `json:"score"` // 0–5 inclusive, halves allowed
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingSummary is a user's aggregate standing: average received score and
// how many ratings it is based on. Unrated users start at 5.0.
type RatingSummary struct {
	UserID  uuid.UUID `json:"user_id"`
	Average float64   `json:"average"`
	Count   int64     `json:"count"`
}
