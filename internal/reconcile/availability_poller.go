package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jpsantos/boatline/backend/internal/domain"
)

// DefaultAvailabilityInterval is the poll cadence for a sailor's
// availability list view.
const DefaultAvailabilityInterval = 10 * time.Second

// AvailabilityFetcher fetches the sailor's current availability pool.
// Implemented by Client.
type AvailabilityFetcher interface {
	ListAvailable(ctx context.Context) ([]domain.Trip, error)
}

// AvailabilityHooks are the side effects a listing view hangs off the loop.
type AvailabilityHooks struct {
	// OnUpdate receives every successfully applied snapshot, in receipt order.
	OnUpdate func(trips []domain.Trip)

	// OnVanished fires once per trip that was present in the previous
	// snapshot but is gone from the current one — typically because another
	// sailor claimed it or the passenger rejected this sailor's counter-offer.
	// The message is informational: the view redirects to the listing with a
	// notice, it does not show an error.
	OnVanished func(tripID uuid.UUID, message string)

	// OnError receives transient poll failures; the previous snapshot is
	// kept and the next tick retries naturally.
	OnError func(err error)
}

// AvailabilityPoller drives the 10-second reconciliation loop over a sailor's
// availability pool, detecting trips that disappear between polls.
type AvailabilityPoller struct {
	fetch    AvailabilityFetcher
	interval time.Duration
	hooks    AvailabilityHooks

	// seen is the id set of the previous snapshot; nil until the first
	// successful poll, so nothing "vanishes" before a baseline exists.
	seen map[uuid.UUID]struct{}
}

// NewAvailabilityPoller constructs a poller. interval <= 0 falls back to
// DefaultAvailabilityInterval.
func NewAvailabilityPoller(fetch AvailabilityFetcher, interval time.Duration, hooks AvailabilityHooks) *AvailabilityPoller {
	if interval <= 0 {
		interval = DefaultAvailabilityInterval
	}
	return &AvailabilityPoller{fetch: fetch, interval: interval, hooks: hooks}
}

// Run polls until ctx is cancelled, with one immediate poll before the first
// tick. Returns ctx.Err() on cancellation; safe to call again with a new
// context.
func (p *AvailabilityPoller) Run(ctx context.Context) error {
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

func (p *AvailabilityPoller) poll(ctx context.Context) {
	trips, err := p.fetch.ListAvailable(ctx)

	// Discard responses that land after cancellation.
	if ctx.Err() != nil {
		return
	}

	if err != nil {
		if p.hooks.OnError != nil {
			p.hooks.OnError(err)
		}
		return
	}

	p.apply(trips)
}

func (p *AvailabilityPoller) apply(trips []domain.Trip) {
	current := make(map[uuid.UUID]struct{}, len(trips))
	for _, t := range trips {
		current[t.ID] = struct{}{}
	}

	if p.seen != nil && p.hooks.OnVanished != nil {
		for id := range p.seen {
			if _, still := current[id]; !still {
				p.hooks.OnVanished(id, "this trip was taken or withdrawn")
			}
		}
	}
	p.seen = current

	if p.hooks.OnUpdate != nil {
		p.hooks.OnUpdate(trips)
	}
}
