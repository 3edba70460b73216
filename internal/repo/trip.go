// Package repo contains all database access logic for the Boatline API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping. The one rule the
// repo does own is atomicity: every status transition is conditional on the
// expected prior status, so a losing concurrent writer gets domain.ErrConflict
// instead of silently overwriting.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jpsantos/boatline/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip in REQUESTED status and returns the persisted
	// record (with DB-generated id and timestamps populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListByPassenger returns one page of the passenger's trips, newest first,
	// plus the total row count for the pagination envelope.
	ListByPassenger(ctx context.Context, passengerID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// ListBySailor returns one page of the trips bound to a sailor, newest
	// first, plus the total row count.
	ListBySailor(ctx context.Context, sailorID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// ListAvailable returns unclaimed REQUESTED trips that the given sailor
	// has not declined, newest first. Trips earmarked by an outstanding
	// counter-offer are excluded for everyone.
	ListAvailable(ctx context.Context, sailorID uuid.UUID) ([]domain.Trip, error)

	// HasBlockingTrip reports whether the passenger has any trip that blocks
	// a new immediate request: IN_PROGRESS, or non-terminal pre-start
	// (REQUESTED / AWAITING_PASSENGER_APPROVAL / ACCEPTED) with no schedule.
	HasBlockingTrip(ctx context.Context, passengerID uuid.UUID) (bool, error)

	// Accept atomically claims a REQUESTED, unclaimed, un-earmarked trip for
	// the sailor: binds sailor_id, sets agreed_price to the passenger's
	// proposed price, and moves the status to ACCEPTED.
	// Returns domain.ErrConflict if the trip exists but was already claimed,
	// earmarked, or has left REQUESTED; domain.ErrNotFound if it never existed.
	Accept(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error)

	// SetCounter atomically records a sailor's counter-offer on a REQUESTED,
	// unclaimed, un-earmarked trip: sets counter_price, earmarks the trip via
	// counter_sailor_id, and moves the status to AWAITING_PASSENGER_APPROVAL.
	// Conflict/not-found semantics match Accept.
	SetCounter(ctx context.Context, tripID, sailorID uuid.UUID, price float64) (domain.Trip, error)

	// AcceptCounter atomically resolves an outstanding counter-offer in the
	// sailor's favor: binds sailor_id from the earmark, sets agreed_price to
	// the counter price, clears the counter fields, status → ACCEPTED.
	AcceptCounter(ctx context.Context, tripID uuid.UUID) (domain.Trip, error)

	// RejectCounter atomically clears an outstanding counter-offer: counter
	// fields are reset and the trip returns to REQUESTED, re-entering every
	// sailor's availability pool.
	RejectCounter(ctx context.Context, tripID uuid.UUID) (domain.Trip, error)

	// Cancel moves a REQUESTED or ACCEPTED trip to CANCELLED.
	// Any other current status yields domain.ErrConflict.
	Cancel(ctx context.Context, tripID uuid.UUID) (domain.Trip, error)

	// Start moves an ACCEPTED trip bound to the given sailor to IN_PROGRESS
	// and stamps started_at.
	Start(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error)

	// Complete moves an IN_PROGRESS trip bound to the given sailor to
	// COMPLETED and stamps completed_at.
	Complete(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

// tripColumns is the canonical SELECT / RETURNING column list, kept in one
// place so every query stays in sync with scanTrip.
const tripColumns = `id, passenger_id, sailor_id, counter_sailor_id, origin, destination,
		people, payment_method, proposed_price, counter_price, agreed_price,
		status, notes, requested_at, scheduled_at, started_at, completed_at,
		created_at, updated_at`

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (passenger_id, origin, destination, people, payment_method,
			proposed_price, notes, scheduled_at)
		VALUES (@passenger_id, @origin, @destination, @people, @payment_method,
			@proposed_price, @notes, @scheduled_at)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"passenger_id":   trip.PassengerID,
		"origin":         trip.Origin,
		"destination":    trip.Destination,
		"people":         trip.People,
		"payment_method": trip.PaymentMethod,
		"proposed_price": trip.ProposedPrice,
		"notes":          trip.Notes,
		"scheduled_at":   trip.ScheduledAt, // nil becomes NULL
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) ListByPassenger(ctx context.Context, passengerID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const q = `
		SELECT ` + tripColumns + `, count(*) OVER () AS total
		FROM trips
		WHERE passenger_id = @passenger_id
		ORDER BY created_at DESC
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{"passenger_id": passengerID, "limit": p.Size, "offset": p.Offset()}
	trips, total, err := r.queryPage(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByPassenger: %w", err)
	}
	return trips, total, nil
}

func (r *pgTripRepo) ListBySailor(ctx context.Context, sailorID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const q = `
		SELECT ` + tripColumns + `, count(*) OVER () AS total
		FROM trips
		WHERE sailor_id = @sailor_id
		ORDER BY created_at DESC
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{"sailor_id": sailorID, "limit": p.Size, "offset": p.Offset()}
	trips, total, err := r.queryPage(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListBySailor: %w", err)
	}
	return trips, total, nil
}

func (r *pgTripRepo) ListAvailable(ctx context.Context, sailorID uuid.UUID) ([]domain.Trip, error) {
	// The NOT EXISTS clause is the per-sailor visibility filter: a decline
	// hides the trip from this sailor without touching the trip's status.
	const q = `
		SELECT ` + tripColumns + `
		FROM trips t
		WHERE t.status = 'REQUESTED'
		  AND t.sailor_id IS NULL
		  AND t.counter_sailor_id IS NULL
		  AND NOT EXISTS (
			SELECT 1 FROM trip_declines d
			WHERE d.trip_id = t.id AND d.sailor_id = @sailor_id
		  )
		ORDER BY t.created_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"sailor_id": sailorID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListAvailable: %w", err)
	}
	defer rows.Close()

	trips, err := collectTrips(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListAvailable: %w", err)
	}
	return trips, nil
}

func (r *pgTripRepo) HasBlockingTrip(ctx context.Context, passengerID uuid.UUID) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM trips
			WHERE passenger_id = @passenger_id
			  AND (
				status = 'IN_PROGRESS'
				OR (status IN ('REQUESTED', 'AWAITING_PASSENGER_APPROVAL', 'ACCEPTED')
					AND scheduled_at IS NULL)
			  )
		)`

	var blocked bool
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"passenger_id": passengerID}).Scan(&blocked)
	if err != nil {
		return false, fmt.Errorf("repo.TripRepo.HasBlockingTrip: %w", err)
	}
	return blocked, nil
}

func (r *pgTripRepo) Accept(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET sailor_id    = @sailor_id,
		    agreed_price = proposed_price,
		    status       = 'ACCEPTED',
		    updated_at   = now()
		WHERE id = @id
		  AND status = 'REQUESTED'
		  AND sailor_id IS NULL
		  AND counter_sailor_id IS NULL
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{"id": tripID, "sailor_id": sailorID}
	result, err := r.transition(ctx, "Accept", tripID, q, args)
	if err != nil {
		return domain.Trip{}, err
	}
	return result, nil
}

func (r *pgTripRepo) SetCounter(ctx context.Context, tripID, sailorID uuid.UUID, price float64) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET counter_price     = @counter_price,
		    counter_sailor_id = @sailor_id,
		    status            = 'AWAITING_PASSENGER_APPROVAL',
		    updated_at        = now()
		WHERE id = @id
		  AND status = 'REQUESTED'
		  AND sailor_id IS NULL
		  AND counter_sailor_id IS NULL
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{"id": tripID, "sailor_id": sailorID, "counter_price": price}
	result, err := r.transition(ctx, "SetCounter", tripID, q, args)
	if err != nil {
		return domain.Trip{}, err
	}
	return result, nil
}

func (r *pgTripRepo) AcceptCounter(ctx context.Context, tripID uuid.UUID) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET sailor_id         = counter_sailor_id,
		    agreed_price      = counter_price,
		    counter_price     = NULL,
		    counter_sailor_id = NULL,
		    status            = 'ACCEPTED',
		    updated_at        = now()
		WHERE id = @id
		  AND status = 'AWAITING_PASSENGER_APPROVAL'
		  AND counter_sailor_id IS NOT NULL
		RETURNING ` + tripColumns

	result, err := r.transition(ctx, "AcceptCounter", tripID, q, pgx.NamedArgs{"id": tripID})
	if err != nil {
		return domain.Trip{}, err
	}
	return result, nil
}

func (r *pgTripRepo) RejectCounter(ctx context.Context, tripID uuid.UUID) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET counter_price     = NULL,
		    counter_sailor_id = NULL,
		    status            = 'REQUESTED',
		    updated_at        = now()
		WHERE id = @id
		  AND status = 'AWAITING_PASSENGER_APPROVAL'
		RETURNING ` + tripColumns

	result, err := r.transition(ctx, "RejectCounter", tripID, q, pgx.NamedArgs{"id": tripID})
	if err != nil {
		return domain.Trip{}, err
	}
	return result, nil
}

func (r *pgTripRepo) Cancel(ctx context.Context, tripID uuid.UUID) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET status     = 'CANCELLED',
		    updated_at = now()
		WHERE id = @id
		  AND status IN ('REQUESTED', 'ACCEPTED')
		RETURNING ` + tripColumns

	result, err := r.transition(ctx, "Cancel", tripID, q, pgx.NamedArgs{"id": tripID})
	if err != nil {
		return domain.Trip{}, err
	}
	return result, nil
}

func (r *pgTripRepo) Start(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET status     = 'IN_PROGRESS',
		    started_at = now(),
		    updated_at = now()
		WHERE id = @id
		  AND status = 'ACCEPTED'
		  AND sailor_id = @sailor_id
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{"id": tripID, "sailor_id": sailorID}
	result, err := r.transition(ctx, "Start", tripID, q, args)
	if err != nil {
		return domain.Trip{}, err
	}
	return result, nil
}

func (r *pgTripRepo) Complete(ctx context.Context, tripID, sailorID uuid.UUID) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET status       = 'COMPLETED',
		    completed_at = now(),
		    updated_at   = now()
		WHERE id = @id
		  AND status = 'IN_PROGRESS'
		  AND sailor_id = @sailor_id
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{"id": tripID, "sailor_id": sailorID}
	result, err := r.transition(ctx, "Complete", tripID, q, args)
	if err != nil {
		return domain.Trip{}, err
	}
	return result, nil
}

// transition runs a status-conditional UPDATE … RETURNING query. When the
// WHERE clause matches nothing, it distinguishes "trip never existed"
// (domain.ErrNotFound) from "trip exists but the precondition failed"
// (domain.ErrConflict) with a follow-up existence check, so the caller gets
// the conflict semantics the state machine requires without ever overwriting
// a concurrent winner's write.
func (r *pgTripRepo) transition(ctx context.Context, op string, tripID uuid.UUID, q string, args pgx.NamedArgs) (domain.Trip, error) {
	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.%s: %w", op, err)
	}

	const existsQ = `SELECT EXISTS (SELECT 1 FROM trips WHERE id = @id)`
	var exists bool
	if err := r.db.QueryRow(ctx, existsQ, pgx.NamedArgs{"id": tripID}).Scan(&exists); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.%s: existence check: %w", op, err)
	}
	if exists {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.%s: %w", op, domain.ErrConflict)
	}
	return domain.Trip{}, fmt.Errorf("repo.TripRepo.%s: %w", op, domain.ErrNotFound)
}

// queryPage runs a windowed-count list query and splits the result into the
// trip slice and the shared total. The `count(*) OVER ()` column rides along
// on every row so one round trip serves both the page and the envelope.
func (r *pgTripRepo) queryPage(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Trip, int64, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		trips []domain.Trip
		total int64
	)
	for rows.Next() {
		t, n, err := scanTripWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		trips = append(trips, t)
		total = n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows: %w", err)
	}

	return trips, total, nil
}

// collectTrips drains rows into a slice using scanTrip.
func collectTrips(rows pgx.Rows) ([]domain.Trip, error) {
	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return trips, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID and nullable column conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	t, err := scanTripDest(s, nil)
	if err != nil {
		return domain.Trip{}, err
	}
	return t, nil
}

// scanTripWithTotal is scanTrip plus the trailing count(*) OVER () column
// used by the paginated list queries.
func scanTripWithTotal(s scanner) (domain.Trip, int64, error) {
	var total int64
	t, err := scanTripDest(s, &total)
	if err != nil {
		return domain.Trip{}, 0, err
	}
	return t, total, nil
}

func scanTripDest(s scanner, total *int64) (domain.Trip, error) {
	var (
		t             domain.Trip
		id            pgtype.UUID
		passengerID   pgtype.UUID
		sailorID      pgtype.UUID
		counterSailor pgtype.UUID
		counterPrice  pgtype.Float8
		agreedPrice   pgtype.Float8
		scheduledAt   pgtype.Timestamptz
		startedAt     pgtype.Timestamptz
		completedAt   pgtype.Timestamptz
	)

	dest := []any{
		&id, &passengerID, &sailorID, &counterSailor, &t.Origin, &t.Destination,
		&t.People, &t.PaymentMethod, &t.ProposedPrice, &counterPrice, &agreedPrice,
		&t.Status, &t.Notes, &t.RequestedAt, &scheduledAt, &startedAt, &completedAt,
		&t.CreatedAt, &t.UpdatedAt,
	}
	if total != nil {
		dest = append(dest, total)
	}

	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.PassengerID = uuid.UUID(passengerID.Bytes)
	if sailorID.Valid {
		v := uuid.UUID(sailorID.Bytes)
		t.SailorID = &v
	}
	if counterSailor.Valid {
		v := uuid.UUID(counterSailor.Bytes)
		t.CounterSailorID = &v
	}
	if counterPrice.Valid {
		v := counterPrice.Float64
		t.CounterPrice = &v
	}
	if agreedPrice.Valid {
		v := agreedPrice.Float64
		t.AgreedPrice = &v
	}
	if scheduledAt.Valid {
		v := scheduledAt.Time
		t.ScheduledAt = &v
	}
	if startedAt.Valid {
		v := startedAt.Time
		t.StartedAt = &v
	}
	if completedAt.Valid {
		v := completedAt.Time
		t.CompletedAt = &v
	}

	return t, nil
}
