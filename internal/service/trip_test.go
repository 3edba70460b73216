package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpsantos/boatline/backend/internal/domain"
	"github.com/jpsantos/boatline/backend/internal/repo"
	"github.com/jpsantos/boatline/backend/internal/service"
)

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field — set only the ones your test needs.
type mockTripRepo struct {
	create          func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listByPassenger func(ctx context.Context, passengerID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	listBySailor    func(ctx context.Context, sailorID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	listAvailable   func(ctx context.Context, sailorID uuid.UUID) ([]domain.Trip, error)
	hasBlockingTrip func(ctx context.Context, passengerID uuid.UUID) (bool, error)
	accept          func(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error)
	setCounter      func(ctx context.Context, tripID, sailorID uuid.UUID, price float64) (domain.Trip, error)
	acceptCounter   func(ctx context.Context, tripID uuid.UUID) (domain.Trip, error)
	rejectCounter   func(ctx context.Context, tripID uuid.UUID) (domain.Trip, error)
	cancel          func(ctx context.Context, tripID uuid.UUID) (domain.Trip, error)
	start           func(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error)
	complete        func(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error)
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) ListByPassenger(ctx context.Context, passengerID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listByPassenger(ctx, passengerID, p)
}
func (m *mockTripRepo) ListBySailor(ctx context.Context, sailorID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listBySailor(ctx, sailorID, p)
}
func (m *mockTripRepo) ListAvailable(ctx context.Context, sailorID uuid.UUID) ([]domain.Trip, error) {
	return m.listAvailable(ctx, sailorID)
}
func (m *mockTripRepo) HasBlockingTrip(ctx context.Context, passengerID uuid.UUID) (bool, error) {
	return m.hasBlockingTrip(ctx, passengerID)
}
func (m *mockTripRepo) Accept(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error) {
	return m.accept(ctx, tripID, sailorID)
}
func (m *mockTripRepo) SetCounter(ctx context.Context, tripID, sailorID uuid.UUID, price float64) (domain.Trip, error) {
	return m.setCounter(ctx, tripID, sailorID, price)
}
func (m *mockTripRepo) AcceptCounter(ctx context.Context, tripID uuid.UUID) (domain.Trip, error) {
	return m.acceptCounter(ctx, tripID)
}
func (m *mockTripRepo) RejectCounter(ctx context.Context, tripID uuid.UUID) (domain.Trip, error) {
	return m.rejectCounter(ctx, tripID)
}
func (m *mockTripRepo) Cancel(ctx context.Context, tripID uuid.UUID) (domain.Trip, error) {
	return m.cancel(ctx, tripID)
}
func (m *mockTripRepo) Start(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error) {
	return m.start(ctx, tripID, sailorID)
}
func (m *mockTripRepo) Complete(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error) {
	return m.complete(ctx, tripID, sailorID)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

// mockDeclineRepo is a test double for repo.DeclineRepo.
type mockDeclineRepo struct {
	add    func(ctx context.Context, tripID, sailorID uuid.UUID) error
	exists func(ctx context.Context, tripID, sailorID uuid.UUID) (bool, error)
}

func (m *mockDeclineRepo) Add(ctx context.Context, tripID, sailorID uuid.UUID) error {
	return m.add(ctx, tripID, sailorID)
}
func (m *mockDeclineRepo) Exists(ctx context.Context, tripID, sailorID uuid.UUID) (bool, error) {
	return m.exists(ctx, tripID, sailorID)
}

var _ repo.DeclineRepo = (*mockDeclineRepo)(nil)

// ---- helpers ---------------------------------------------------------------

func validRequest() domain.Trip {
	return domain.Trip{
		PassengerID:   uuid.New(),
		Origin:        "Porto A",
		Destination:   "Ilha B",
		People:        2,
		PaymentMethod: domain.PaymentCash,
		ProposedPrice: 50.00,
	}
}

// unblockedRepo echoes creates and reports no blocking trip — enough for
// tests that only care about intake validation.
func unblockedRepo() *mockTripRepo {
	return &mockTripRepo{
		create:          func(_ context.Context, t domain.Trip) (domain.Trip, error) { return t, nil },
		hasBlockingTrip: func(_ context.Context, _ uuid.UUID) (bool, error) { return false, nil },
	}
}

func noDeclines() *mockDeclineRepo {
	return &mockDeclineRepo{
		add: func(_ context.Context, _, _ uuid.UUID) error { return nil },
	}
}

// ---- Request (intake + guard) ----------------------------------------------

func TestTripService_Request_Valid(t *testing.T) {
	svc := service.NewTripService(unblockedRepo(), noDeclines())

	got, err := svc.Request(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, "Porto A", got.Origin)
	assert.Equal(t, 50.00, got.ProposedPrice)
}

func TestTripService_Request_BlankOrigin(t *testing.T) {
	svc := service.NewTripService(unblockedRepo(), noDeclines())

	req := validRequest()
	req.Origin = "   " // whitespace-only should be treated as empty

	_, err := svc.Request(context.Background(), req)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Request_BlankDestination(t *testing.T) {
	svc := service.NewTripService(unblockedRepo(), noDeclines())

	req := validRequest()
	req.Destination = ""

	_, err := svc.Request(context.Background(), req)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Request_ZeroPeople(t *testing.T) {
	svc := service.NewTripService(unblockedRepo(), noDeclines())

	req := validRequest()
	req.People = 0

	_, err := svc.Request(context.Background(), req)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Request_NonPositivePrice(t *testing.T) {
	svc := service.NewTripService(unblockedRepo(), noDeclines())

	req := validRequest()
	req.ProposedPrice = 0

	_, err := svc.Request(context.Background(), req)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Request_UnknownPaymentMethod(t *testing.T) {
	svc := service.NewTripService(unblockedRepo(), noDeclines())

	req := validRequest()
	req.PaymentMethod = "SEASHELLS"

	_, err := svc.Request(context.Background(), req)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Request_BlockedByActiveTrip(t *testing.T) {
	repo := unblockedRepo()
	repo.hasBlockingTrip = func(_ context.Context, _ uuid.UUID) (bool, error) { return true, nil }
	svc := service.NewTripService(repo, noDeclines())

	_, err := svc.Request(context.Background(), validRequest())

	assert.ErrorIs(t, err, domain.ErrActiveTrip)
}

func TestTripService_Request_ValidationBeforeGuard(t *testing.T) {
	// The guard must not even be consulted when validation fails.
	repo := unblockedRepo()
	guardCalled := false
	repo.hasBlockingTrip = func(_ context.Context, _ uuid.UUID) (bool, error) {
		guardCalled = true
		return false, nil
	}
	svc := service.NewTripService(repo, noDeclines())

	req := validRequest()
	req.ProposedPrice = -1

	_, err := svc.Request(context.Background(), req)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, guardCalled, "guard should not run on invalid input")
}

// ---- CounterPropose --------------------------------------------------------

func TestTripService_CounterPropose_NonPositiveValue(t *testing.T) {
	svc := service.NewTripService(&mockTripRepo{}, noDeclines())

	_, err := svc.CounterPropose(context.Background(), uuid.New(), uuid.New(), 0)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_CounterPropose_Valid(t *testing.T) {
	tripID := uuid.New()
	sailorID := uuid.New()
	repo := &mockTripRepo{
		setCounter: func(_ context.Context, gotTrip, gotSailor uuid.UUID, price float64) (domain.Trip, error) {
			assert.Equal(t, tripID, gotTrip)
			assert.Equal(t, sailorID, gotSailor)
			assert.Equal(t, 65.00, price)
			cp := price
			return domain.Trip{ID: gotTrip, Status: domain.StatusAwaitingPassengerApproval, CounterPrice: &cp}, nil
		},
	}
	svc := service.NewTripService(repo, noDeclines())

	got, err := svc.CounterPropose(context.Background(), tripID, sailorID, 65.00)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingPassengerApproval, got.Status)
	require.NotNil(t, got.CounterPrice)
	assert.Equal(t, 65.00, *got.CounterPrice)
}

// ---- Decline ---------------------------------------------------------------

func TestTripService_Decline_Requested(t *testing.T) {
	tripID := uuid.New()
	sailorID := uuid.New()
	added := false
	tr := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{ID: tripID, Status: domain.StatusRequested}, nil
		},
	}
	dr := &mockDeclineRepo{
		add: func(_ context.Context, gotTrip, gotSailor uuid.UUID) error {
			added = true
			assert.Equal(t, tripID, gotTrip)
			assert.Equal(t, sailorID, gotSailor)
			return nil
		},
	}
	svc := service.NewTripService(tr, dr)

	got, err := svc.Decline(context.Background(), tripID, sailorID)

	require.NoError(t, err)
	assert.True(t, added)
	// A decline is a visibility filter, not a transition: status unchanged.
	assert.Equal(t, domain.StatusRequested, got.Status)
}

func TestTripService_Decline_NotRequested(t *testing.T) {
	tr := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{Status: domain.StatusAccepted}, nil
		},
	}
	svc := service.NewTripService(tr, noDeclines())

	_, err := svc.Decline(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTripService_Decline_Earmarked(t *testing.T) {
	other := uuid.New()
	tr := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{Status: domain.StatusRequested, CounterSailorID: &other}, nil
		},
	}
	svc := service.NewTripService(tr, noDeclines())

	_, err := svc.Decline(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ---- RespondToCounter ------------------------------------------------------

func awaitingTrip(passengerID, counterSailorID uuid.UUID) domain.Trip {
	cp := 65.00
	return domain.Trip{
		ID:              uuid.New(),
		PassengerID:     passengerID,
		CounterSailorID: &counterSailorID,
		CounterPrice:    &cp,
		Status:          domain.StatusAwaitingPassengerApproval,
	}
}

func TestTripService_RespondToCounter_WrongPassenger(t *testing.T) {
	trip := awaitingTrip(uuid.New(), uuid.New())
	tr := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) { return trip, nil },
	}
	svc := service.NewTripService(tr, noDeclines())

	_, err := svc.RespondToCounter(context.Background(), trip.ID, uuid.New(), true)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTripService_RespondToCounter_NotAwaiting(t *testing.T) {
	passengerID := uuid.New()
	tr := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{PassengerID: passengerID, Status: domain.StatusRequested}, nil
		},
	}
	svc := service.NewTripService(tr, noDeclines())

	_, err := svc.RespondToCounter(context.Background(), uuid.New(), passengerID, true)

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTripService_RespondToCounter_Accept(t *testing.T) {
	passengerID := uuid.New()
	sailorID := uuid.New()
	trip := awaitingTrip(passengerID, sailorID)

	accepted := false
	tr := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) { return trip, nil },
		acceptCounter: func(_ context.Context, tripID uuid.UUID) (domain.Trip, error) {
			accepted = true
			assert.Equal(t, trip.ID, tripID)
			agreed := 65.00
			return domain.Trip{ID: tripID, SailorID: &sailorID, AgreedPrice: &agreed, Status: domain.StatusAccepted}, nil
		},
	}
	declined := false
	dr := &mockDeclineRepo{
		add: func(_ context.Context, _, _ uuid.UUID) error {
			declined = true
			return nil
		},
	}
	svc := service.NewTripService(tr, dr)

	got, err := svc.RespondToCounter(context.Background(), trip.ID, passengerID, true)

	require.NoError(t, err)
	assert.True(t, accepted)
	assert.False(t, declined, "accepting must not record a decline")
	assert.Equal(t, domain.StatusAccepted, got.Status)
	require.NotNil(t, got.AgreedPrice)
	assert.Equal(t, 65.00, *got.AgreedPrice)
	require.NotNil(t, got.SailorID)
	assert.Equal(t, sailorID, *got.SailorID)
}

func TestTripService_RespondToCounter_Reject(t *testing.T) {
	passengerID := uuid.New()
	sailorID := uuid.New()
	trip := awaitingTrip(passengerID, sailorID)

	tr := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) { return trip, nil },
		rejectCounter: func(_ context.Context, tripID uuid.UUID) (domain.Trip, error) {
			return domain.Trip{ID: tripID, PassengerID: passengerID, Status: domain.StatusRequested}, nil
		},
	}
	var declinedSailor uuid.UUID
	dr := &mockDeclineRepo{
		add: func(_ context.Context, _, gotSailor uuid.UUID) error {
			declinedSailor = gotSailor
			return nil
		},
	}
	svc := service.NewTripService(tr, dr)

	got, err := svc.RespondToCounter(context.Background(), trip.ID, passengerID, false)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusRequested, got.Status)
	assert.Nil(t, got.CounterPrice, "counter price must be cleared on rejection")
	// The rejected sailor is hidden from this trip going forward.
	assert.Equal(t, sailorID, declinedSailor)
}

// ---- Cancel / Start / Complete ---------------------------------------------

func TestTripService_Cancel_NonParticipant(t *testing.T) {
	tr := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{PassengerID: uuid.New(), Status: domain.StatusRequested}, nil
		},
	}
	svc := service.NewTripService(tr, noDeclines())

	_, err := svc.Cancel(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTripService_Cancel_ByPassenger(t *testing.T) {
	passengerID := uuid.New()
	tr := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{PassengerID: passengerID, Status: domain.StatusRequested}, nil
		},
		cancel: func(_ context.Context, tripID uuid.UUID) (domain.Trip, error) {
			return domain.Trip{ID: tripID, PassengerID: passengerID, Status: domain.StatusCancelled}, nil
		},
	}
	svc := service.NewTripService(tr, noDeclines())

	got, err := svc.Cancel(context.Background(), uuid.New(), passengerID)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
}

func TestTripService_Start_NotBoundSailor(t *testing.T) {
	bound := uuid.New()
	tr := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{SailorID: &bound, Status: domain.StatusAccepted}, nil
		},
	}
	svc := service.NewTripService(tr, noDeclines())

	_, err := svc.Start(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTripService_Start_Bound(t *testing.T) {
	sailorID := uuid.New()
	now := time.Now()
	tr := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{SailorID: &sailorID, Status: domain.StatusAccepted}, nil
		},
		start: func(_ context.Context, tripID, gotSailor uuid.UUID) (domain.Trip, error) {
			assert.Equal(t, sailorID, gotSailor)
			return domain.Trip{ID: tripID, SailorID: &sailorID, Status: domain.StatusInProgress, StartedAt: &now}, nil
		},
	}
	svc := service.NewTripService(tr, noDeclines())

	got, err := svc.Start(context.Background(), uuid.New(), sailorID)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, got.Status)
	assert.NotNil(t, got.StartedAt)
}

func TestTripService_Complete_Bound(t *testing.T) {
	sailorID := uuid.New()
	now := time.Now()
	tr := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{SailorID: &sailorID, Status: domain.StatusInProgress}, nil
		},
		complete: func(_ context.Context, tripID, gotSailor uuid.UUID) (domain.Trip, error) {
			return domain.Trip{ID: tripID, SailorID: &sailorID, Status: domain.StatusCompleted, CompletedAt: &now}, nil
		},
	}
	svc := service.NewTripService(tr, noDeclines())

	got, err := svc.Complete(context.Background(), uuid.New(), sailorID)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
}

// ---- GetForParticipant / listings ------------------------------------------

func TestTripService_GetForParticipant_EarmarkedSailorAllowed(t *testing.T) {
	sailorID := uuid.New()
	tr := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{PassengerID: uuid.New(), CounterSailorID: &sailorID,
				Status: domain.StatusAwaitingPassengerApproval}, nil
		},
	}
	svc := service.NewTripService(tr, noDeclines())

	_, err := svc.GetForParticipant(context.Background(), uuid.New(), sailorID)

	assert.NoError(t, err)
}

func TestTripService_GetForParticipant_StrangerForbidden(t *testing.T) {
	tr := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{PassengerID: uuid.New(), Status: domain.StatusRequested}, nil
		},
	}
	svc := service.NewTripService(tr, noDeclines())

	_, err := svc.GetForParticipant(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTripService_ListAvailable_NilBecomesEmpty(t *testing.T) {
	tr := &mockTripRepo{
		listAvailable: func(_ context.Context, _ uuid.UUID) ([]domain.Trip, error) { return nil, nil },
	}
	svc := service.NewTripService(tr, noDeclines())

	got, err := svc.ListAvailable(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTripService_ListForPassenger_Envelope(t *testing.T) {
	tr := &mockTripRepo{
		listByPassenger: func(_ context.Context, _ uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
			assert.Equal(t, 2, p.Page)
			return []domain.Trip{{ID: uuid.New()}}, 41, nil
		},
	}
	svc := service.NewTripService(tr, noDeclines())

	page, err := svc.ListForPassenger(context.Background(), uuid.New(), domain.PaginationParams{Page: 2, Size: 20})

	require.NoError(t, err)
	assert.Len(t, page.Content, 1)
	assert.Equal(t, int64(41), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
}
