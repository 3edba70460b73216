package reconcile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpsantos/boatline/backend/internal/domain"
	"github.com/jpsantos/boatline/backend/internal/reconcile"
)

// scriptedListFetcher mirrors scriptedFetcher for the availability pool.
type scriptedListFetcher struct {
	script []func() ([]domain.Trip, error)
	calls  int
	cancel context.CancelFunc
}

func (f *scriptedListFetcher) ListAvailable(_ context.Context) ([]domain.Trip, error) {
	if f.calls >= len(f.script) {
		f.cancel()
		return nil, errors.New("script exhausted")
	}
	step := f.script[f.calls]
	f.calls++
	return step()
}

func pool(trips ...domain.Trip) func() ([]domain.Trip, error) {
	return func() ([]domain.Trip, error) { return trips, nil }
}

func listError(err error) func() ([]domain.Trip, error) {
	return func() ([]domain.Trip, error) { return nil, err }
}

func runListScript(t *testing.T, hooks reconcile.AvailabilityHooks, script ...func() ([]domain.Trip, error)) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &scriptedListFetcher{script: script, cancel: cancel}
	p := reconcile.NewAvailabilityPoller(fetcher, time.Millisecond, hooks)

	require.ErrorIs(t, p.Run(ctx), context.Canceled)
}

func openTrip() domain.Trip {
	return domain.Trip{ID: uuid.New(), Status: domain.StatusRequested}
}

func TestAvailabilityPoller_NoVanishOnFirstSnapshot(t *testing.T) {
	vanished := 0
	hooks := reconcile.AvailabilityHooks{
		OnVanished: func(uuid.UUID, string) { vanished++ },
	}

	// The first snapshot establishes the baseline; nothing existed before it,
	// so nothing can have vanished.
	runListScript(t, hooks, pool(openTrip(), openTrip()))

	assert.Zero(t, vanished)
}

func TestAvailabilityPoller_DetectsVanishedTrip(t *testing.T) {
	kept := openTrip()
	taken := openTrip()

	var vanishedIDs []uuid.UUID
	var snapshots [][]domain.Trip
	hooks := reconcile.AvailabilityHooks{
		OnUpdate:   func(trips []domain.Trip) { snapshots = append(snapshots, trips) },
		OnVanished: func(id uuid.UUID, _ string) { vanishedIDs = append(vanishedIDs, id) },
	}

	runListScript(t, hooks,
		pool(kept, taken),
		pool(kept),
	)

	require.Len(t, snapshots, 2)
	require.Len(t, vanishedIDs, 1)
	assert.Equal(t, taken.ID, vanishedIDs[0])
}

func TestAvailabilityPoller_NewTripIsNotVanished(t *testing.T) {
	first := openTrip()
	second := openTrip()

	vanished := 0
	hooks := reconcile.AvailabilityHooks{
		OnVanished: func(uuid.UUID, string) { vanished++ },
	}

	runListScript(t, hooks,
		pool(first),
		pool(first, second),
	)

	assert.Zero(t, vanished, "a trip appearing is growth, not a vanish event")
}

func TestAvailabilityPoller_ErrorKeepsBaseline(t *testing.T) {
	kept := openTrip()
	taken := openTrip()

	var vanishedIDs []uuid.UUID
	errs := 0
	hooks := reconcile.AvailabilityHooks{
		OnVanished: func(id uuid.UUID, _ string) { vanishedIDs = append(vanishedIDs, id) },
		OnError:    func(error) { errs++ },
	}

	// A failed poll in the middle must not reset the baseline: the vanish of
	// `taken` is still detected on the next good snapshot.
	runListScript(t, hooks,
		pool(kept, taken),
		listError(errors.New("timeout")),
		pool(kept),
	)

	assert.Equal(t, 1, errs)
	require.Len(t, vanishedIDs, 1)
	assert.Equal(t, taken.ID, vanishedIDs[0])
}
