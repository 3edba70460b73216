// Package domain contains the core data types for the Boatline marketplace.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler, sync).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle state of a trip. Transitions are owned by the
// service layer; the repo enforces them with status-conditional updates.
type TripStatus string

const (
	// StatusRequested — waiting for a sailor to accept or counter-propose.
	StatusRequested TripStatus = "REQUESTED"
	// StatusAwaitingPassengerApproval — a sailor sent a counter-offer and the
	// passenger has not answered yet. The trip is earmarked for that sailor
	// and hidden from everyone else's availability pool.
	StatusAwaitingPassengerApproval TripStatus = "AWAITING_PASSENGER_APPROVAL"
	// StatusAccepted — price agreed, sailor bound, waiting for departure.
	StatusAccepted TripStatus = "ACCEPTED"
	// StatusInProgress — the boat has left.
	StatusInProgress TripStatus = "IN_PROGRESS"
	// StatusCompleted — terminal. The only state in which ratings are accepted.
	StatusCompleted TripStatus = "COMPLETED"
	// StatusCancelled — terminal, reachable from REQUESTED or ACCEPTED only.
	StatusCancelled TripStatus = "CANCELLED"
)

// Valid reports whether s is one of the known wire values.
func (s TripStatus) Valid() bool {
	switch s {
	case StatusRequested, StatusAwaitingPassengerApproval, StatusAccepted,
		StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s TripStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PaymentMethod is how the passenger intends to pay. Money never moves
// through this system; the value is informational for the sailor.
type PaymentMethod string

const (
	PaymentCash            PaymentMethod = "CASH"
	PaymentInstantTransfer PaymentMethod = "INSTANT_TRANSFER"
)

// Valid reports whether m is one of the known wire values.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentInstantTransfer
}

// Trip is the central aggregate: one transport engagement between a passenger
// and (eventually) one sailor.
//
// CounterSailorID is the earmark set while a counter-offer is outstanding.
// It is distinct from SailorID: the sailor is only bound once the passenger
// accepts, so a rejected counter-offer leaves no trace on the trip itself.
type Trip struct {
	ID              uuid.UUID     `json:"id"`
	PassengerID     uuid.UUID     `json:"passenger_id"`
	SailorID        *uuid.UUID    `json:"sailor_id,omitempty"`
	CounterSailorID *uuid.UUID    `json:"-"`
	Origin          string        `json:"origin"`
	Destination     string        `json:"destination"`
	People          int           `json:"people"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	ProposedPrice   float64       `json:"proposed_price"`
	CounterPrice    *float64      `json:"counter_price,omitempty"`
	AgreedPrice     *float64      `json:"agreed_price,omitempty"`
	Status          TripStatus    `json:"status"`
	Notes           string        `json:"notes,omitempty"`
	RequestedAt     time.Time     `json:"requested_at"`
	ScheduledAt     *time.Time    `json:"scheduled_at,omitempty"` // nil for immediate trips
	StartedAt       *time.Time    `json:"started_at,omitempty"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Blocking reports whether this trip prevents its passenger from opening a
// new immediate request. An in-progress trip always blocks; a pending or
// accepted one blocks only when it is not scheduled for a later time.
func (t Trip) Blocking() bool {
	if t.Status == StatusInProgress {
		return true
	}
	switch t.Status {
	case StatusRequested, StatusAwaitingPassengerApproval, StatusAccepted:
		return t.ScheduledAt == nil
	}
	return false
}

// IsParticipant reports whether userID is the trip's passenger or its bound sailor.
func (t Trip) IsParticipant(userID uuid.UUID) bool {
	if t.PassengerID == userID {
		return true
	}
	return t.SailorID != nil && *t.SailorID == userID
}
