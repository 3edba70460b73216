package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jpsantos/boatline/backend/internal/domain"
)

// DefaultTripInterval is the poll cadence for a single-trip detail view.
const DefaultTripInterval = 5 * time.Second

// TripFetcher fetches one trip's authoritative state. Implemented by Client.
type TripFetcher interface {
	GetTrip(ctx context.Context, tripID uuid.UUID) (domain.Trip, error)
}

// TripHooks are the side effects a detail view hangs off the poll loop.
// Every hook is optional. Edge-triggered hooks fire exactly once per
// transition: the loop compares each response against the previous state and
// only calls a hook when its precondition just became true, so a dialog that
// is already open is never re-opened by the next poll.
type TripHooks struct {
	// OnUpdate receives every successfully applied state, in receipt order.
	OnUpdate func(trip domain.Trip)

	// OnCounterOffer fires when the status becomes AWAITING_PASSENGER_APPROVAL —
	// the moment the passenger should see the counter-offer dialog.
	OnCounterOffer func(trip domain.Trip)

	// OnAccepted fires when the status becomes ACCEPTED.
	OnAccepted func(trip domain.Trip)

	// OnCompleted fires when the status becomes COMPLETED. This is the sole
	// trigger for the rating gate.
	OnCompleted func(trip domain.Trip)

	// OnVanished fires when the trip stops being visible to this viewer
	// (e.g. a sailor whose counter-offer the passenger rejected). The message
	// is informational; the view should redirect, not show an error.
	OnVanished func(tripID uuid.UUID, message string)

	// OnError receives transient poll failures. The previous state is kept
	// and the loop simply waits for the next tick; the error is a dismissible
	// warning, never fatal.
	OnError func(err error)
}

// TripPoller drives the 5-second reconciliation loop for one trip.
// It is single-goroutine by construction: responses are fetched and applied
// sequentially, so ordering within one trip's loop is guaranteed.
type TripPoller struct {
	fetch    TripFetcher
	tripID   uuid.UUID
	interval time.Duration
	hooks    TripHooks

	// last is the previous applied state; nil until the first successful poll.
	last *domain.Trip
	// fired dedupes edge-triggered hooks across re-entries into the same status.
	fired map[domain.TripStatus]bool
}

// NewTripPoller constructs a poller for tripID. interval <= 0 falls back to
// DefaultTripInterval.
func NewTripPoller(fetch TripFetcher, tripID uuid.UUID, interval time.Duration, hooks TripHooks) *TripPoller {
	if interval <= 0 {
		interval = DefaultTripInterval
	}
	return &TripPoller{
		fetch:    fetch,
		tripID:   tripID,
		interval: interval,
		hooks:    hooks,
		fired:    make(map[domain.TripStatus]bool),
	}
}

// Run polls until ctx is cancelled. It performs one immediate poll so the
// view is populated before the first tick, then settles into the cadence.
// Run returns ctx.Err() on cancellation and is safe to call again with a new
// context (the dedupe state carries over, so re-running never re-fires a
// hook that already fired for this trip).
func (p *TripPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll performs one fetch-and-apply cycle.
func (p *TripPoller) poll(ctx context.Context) {
	trip, err := p.fetch.GetTrip(ctx, p.tripID)

	// A response that lands after cancellation must not mutate state: the
	// view it belongs to is already torn down.
	if ctx.Err() != nil {
		return
	}

	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.NotFound() {
			p.callVanished()
			return
		}
		if p.hooks.OnError != nil {
			p.hooks.OnError(err)
		}
		return // keep last-known-good state; next tick retries naturally
	}

	p.apply(trip)
}

// apply reconciles one authoritative state against the local view, firing
// exactly the hooks whose preconditions just became true.
func (p *TripPoller) apply(trip domain.Trip) {
	prev := p.last
	p.last = &trip

	if p.hooks.OnUpdate != nil {
		p.hooks.OnUpdate(trip)
	}

	if prev != nil && prev.Status == trip.Status {
		return
	}

	switch trip.Status {
	case domain.StatusRequested:
		// Back to REQUESTED means the counter-offer was rejected; the next
		// counter-offer is a new negotiation round and may prompt again.
		delete(p.fired, domain.StatusAwaitingPassengerApproval)
	case domain.StatusAwaitingPassengerApproval:
		p.fireOnce(trip, p.hooks.OnCounterOffer)
	case domain.StatusAccepted:
		p.fireOnce(trip, p.hooks.OnAccepted)
	case domain.StatusCompleted:
		p.fireOnce(trip, p.hooks.OnCompleted)
	}
}

// fireOnce calls hook at most once per status value until the dedupe entry
// is cleared, so a poll that observes the same status twice (or a Run
// restarted with a fresh context) never re-triggers the side effect.
func (p *TripPoller) fireOnce(trip domain.Trip, hook func(domain.Trip)) {
	if p.fired[trip.Status] {
		return
	}
	p.fired[trip.Status] = true
	if hook != nil {
		hook(trip)
	}
}

func (p *TripPoller) callVanished() {
	if p.hooks.OnVanished != nil {
		p.hooks.OnVanished(p.tripID, "this trip is no longer available to you")
	}
}

// Last returns the most recently applied state, or false before the first
// successful poll.
func (p *TripPoller) Last() (domain.Trip, bool) {
	if p.last == nil {
		return domain.Trip{}, false
	}
	return *p.last, true
}
