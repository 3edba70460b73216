package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. empty origin, non-positive price).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when an action is invalid for the trip's current
// status — accepting an already-accepted trip, a second counter-offer while
// one is outstanding, starting a trip that was never accepted. The losing
// writer is rejected whole; nothing is partially applied.
// Handlers should map this to HTTP 409 Conflict.
var ErrConflict = errors.New("state conflict")

// ErrActiveTrip is returned by the active-trip guard when the passenger
// already has a trip that blocks new immediate requests.
// Handlers should map this to HTTP 409 Conflict.
var ErrActiveTrip = errors.New("active trip exists")

// ErrForbidden is returned when the acting user is not permitted to perform
// the operation on this trip (wrong passenger, unbound sailor).
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")
