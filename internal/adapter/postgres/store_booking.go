package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/venably/venably/internal/domain"
	"github.com/venably/venably/internal/domain/booking"
)

// querier abstracts pgxpool.Pool and pgx.Tx for shared query helpers.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const bookingColumns = `id, tenant_id, contract_id, space_id, venue_id, customer_id,
	event_date, start_minute, end_minute, status, guest_count, amount_cents,
	created_at, updated_at`

func scanBooking(row scannable) (booking.Booking, error) {
	var b booking.Booking
	var contractID, spaceID, venueID *string
	err := row.Scan(&b.ID, &b.TenantID, &contractID, &spaceID, &venueID, &b.CustomerID,
		&b.EventDate, &b.StartMinute, &b.EndMinute, &b.Status, &b.GuestCount, &b.AmountCents,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	b.ContractID = orEmpty(contractID)
	b.SpaceID = orEmpty(spaceID)
	b.VenueID = orEmpty(venueID)
	return b, nil
}

// loadCandidates returns the non-cancelled bookings for one tenant/space/date,
// the candidate set for an overlap check. Cancelled bookings never conflict,
// so they are filtered here rather than in the checker.
func loadCandidates(ctx context.Context, q querier, tenantID, spaceID string, date time.Time) ([]booking.Booking, error) {
	rows, err := q.Query(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings
		 WHERE tenant_id = $1 AND space_id = $2 AND event_date = $3 AND status <> 'cancelled'`,
		tenantID, spaceID, date)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	defer rows.Close()

	var candidates []booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, b)
	}
	return candidates, rows.Err()
}

// LoadCandidates is the read-only availability path; no transaction needed.
func (s *Store) LoadCandidates(ctx context.Context, tenantID, spaceID string, date time.Time) ([]booking.Booking, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	return loadCandidates(ctx, s.pool, tenantID, spaceID, date)
}

func (s *Store) GetBooking(ctx context.Context, tenantID, id string) (*booking.Booking, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	b, err := scanBooking(row)
	if err != nil {
		return nil, notFoundWrap(err, "get booking %s", id)
	}
	return &b, nil
}

func (s *Store) ListBookings(ctx context.Context, tenantID string, from, to time.Time) ([]booking.Booking, error) {
	if tenantID == "" {
		return nil, domain.ErrTenantRequired
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings
		 WHERE tenant_id = $1 AND event_date >= $2 AND event_date < $3
		 ORDER BY event_date ASC, start_minute ASC`,
		tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CreateBooking runs the overlap check and the insert inside one serializable
// transaction, so a concurrent writer targeting the same slot either blocks
// this commit into a retryable serialization failure or trips the exclusion
// constraint. Either way no silent double booking commits.
func (s *Store) CreateBooking(ctx context.Context, tenantID string, req booking.CreateRequest) (*booking.Booking, []booking.Conflict, error) {
	slot, err := booking.ParseSlot(req.SpaceID, req.EventDate, req.StartTime, req.EndTime)
	if err != nil {
		return nil, nil, err
	}
	status := req.Status
	if status == "" {
		status = booking.StatusInquiry
	}

	tx, err := s.beginSerializable(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	// Reference ownership first: the conflict check and the exclusion
	// constraint are both tenant-scoped, so a foreign space ID would slip
	// past both and double-book the physical room across tenants.
	if err := checkCustomer(ctx, tx, tenantID, req.CustomerID); err != nil {
		return nil, nil, err
	}
	var venueID *string
	switch {
	case slot.SpaceID != "":
		v, err := spaceVenue(ctx, tx, tenantID, slot.SpaceID)
		if err != nil {
			return nil, nil, err
		}
		venueID = &v
	case req.VenueID != "":
		if err := checkVenue(ctx, tx, tenantID, req.VenueID); err != nil {
			return nil, nil, err
		}
		venueID = &req.VenueID
	}

	var conflicts []booking.Conflict
	if slot.SpaceID != "" {
		candidates, err := loadCandidates(ctx, tx, tenantID, slot.SpaceID, slot.EventDate)
		if err != nil {
			return nil, nil, err
		}
		conflicts = booking.FindConflicts(candidates, slot, "")
		if booking.HasBlocking(conflicts) {
			return nil, conflicts, &booking.ConflictError{Conflicts: conflicts}
		}
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO bookings (tenant_id, space_id, venue_id, customer_id, event_date,
		                       start_minute, end_minute, status, guest_count, amount_cents)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+bookingColumns,
		tenantID, nullIfEmpty(slot.SpaceID), venueID, req.CustomerID,
		slot.EventDate, slot.StartMinute, slot.EndMinute, status, req.GuestCount, req.AmountCents)
	b, err := scanBooking(row)
	if err != nil {
		return nil, nil, retryableWrap(err, "insert booking")
	}

	if err := commit(ctx, tx, "booking"); err != nil {
		return nil, nil, err
	}
	return &b, conflicts, nil
}

// UpdateBooking re-checks the edited slot against every other booking
// (excluding the booking's own prior reservation) inside one serializable
// transaction, then applies the update.
func (s *Store) UpdateBooking(ctx context.Context, tenantID, id string, req booking.UpdateRequest) (*booking.Booking, []booking.Conflict, error) {
	tx, err := s.beginSerializable(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row := tx.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	b, err := scanBooking(row)
	if err != nil {
		return nil, nil, notFoundWrap(err, "get booking %s", id)
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *req.Status)
		}
		if !b.Status.CanTransition(*req.Status) {
			return nil, nil, fmt.Errorf("%w: cannot move booking from %s to %s", domain.ErrValidation, b.Status, *req.Status)
		}
		b.Status = *req.Status
	}
	if req.SpaceID != nil {
		b.SpaceID = *req.SpaceID
	}
	if req.EventDate != nil {
		d, err := booking.ParseDate(*req.EventDate)
		if err != nil {
			return nil, nil, err
		}
		b.EventDate = d
	}
	if req.StartTime != nil {
		m, err := booking.ParseClock(*req.StartTime)
		if err != nil {
			return nil, nil, fmt.Errorf("start_time: %w", err)
		}
		b.StartMinute = m
	}
	if req.EndTime != nil {
		m, err := booking.ParseClock(*req.EndTime)
		if err != nil {
			return nil, nil, fmt.Errorf("end_time: %w", err)
		}
		b.EndMinute = m
	}
	if b.StartMinute >= b.EndMinute {
		return nil, nil, fmt.Errorf("%w: start_time must be before end_time", domain.ErrValidation)
	}
	if req.GuestCount != nil {
		b.GuestCount = *req.GuestCount
	}
	if req.AmountCents != nil {
		if *req.AmountCents < 0 {
			return nil, nil, fmt.Errorf("%w: amount_cents must not be negative", domain.ErrValidation)
		}
		b.AmountCents = *req.AmountCents
	}

	// Re-resolve the venue from the space so moving a booking to another
	// space carries its venue along, and so a foreign space ID is rejected
	// before the tenant-scoped conflict check runs.
	var venueID *string
	b.VenueID = ""
	if b.SpaceID != "" {
		v, err := spaceVenue(ctx, tx, tenantID, b.SpaceID)
		if err != nil {
			return nil, nil, err
		}
		venueID = &v
		b.VenueID = v
	}

	slot := booking.Slot{SpaceID: b.SpaceID, EventDate: b.EventDate, StartMinute: b.StartMinute, EndMinute: b.EndMinute}
	var conflicts []booking.Conflict
	if slot.SpaceID != "" && b.Live() {
		candidates, err := loadCandidates(ctx, tx, tenantID, slot.SpaceID, slot.EventDate)
		if err != nil {
			return nil, nil, err
		}
		conflicts = booking.FindConflicts(candidates, slot, b.ID)
		if booking.HasBlocking(conflicts) {
			return nil, conflicts, &booking.ConflictError{Conflicts: conflicts}
		}
	}

	row = tx.QueryRow(ctx,
		`UPDATE bookings
		 SET space_id = $3, venue_id = $4, event_date = $5, start_minute = $6, end_minute = $7,
		     status = $8, guest_count = $9, amount_cents = $10, updated_at = now()
		 WHERE id = $1 AND tenant_id = $2
		 RETURNING `+bookingColumns,
		b.ID, tenantID, nullIfEmpty(b.SpaceID), venueID, b.EventDate, b.StartMinute, b.EndMinute,
		b.Status, b.GuestCount, b.AmountCents)
	updated, err := scanBooking(row)
	if err != nil {
		return nil, nil, retryableWrap(err, "update booking %s", id)
	}

	if updated.ContractID != "" {
		if err := recomputeContractTotal(ctx, tx, tenantID, updated.ContractID); err != nil {
			return nil, nil, err
		}
	}

	if err := commit(ctx, tx, "booking update"); err != nil {
		return nil, nil, err
	}
	return &updated, conflicts, nil
}

// CancelBooking soft-cancels a booking. Cancelling twice is a no-op;
// completed bookings cannot be cancelled. The row is never physically
// deleted while financial records may reference it.
func (s *Store) CancelBooking(ctx context.Context, tenantID, id string) (*booking.Booking, error) {
	tx, err := s.beginSerializable(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row := tx.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	b, err := scanBooking(row)
	if err != nil {
		return nil, notFoundWrap(err, "get booking %s", id)
	}

	if b.Status == booking.StatusCancelled {
		return &b, nil
	}
	if !b.Status.CanTransition(booking.StatusCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel a %s booking", domain.ErrValidation, b.Status)
	}

	row = tx.QueryRow(ctx,
		`UPDATE bookings SET status = 'cancelled', updated_at = now()
		 WHERE id = $1 AND tenant_id = $2
		 RETURNING `+bookingColumns,
		b.ID, tenantID)
	cancelled, err := scanBooking(row)
	if err != nil {
		return nil, retryableWrap(err, "cancel booking %s", id)
	}

	if cancelled.ContractID != "" {
		if err := recomputeContractTotal(ctx, tx, tenantID, cancelled.ContractID); err != nil {
			return nil, err
		}
	}

	if err := commit(ctx, tx, "booking cancel"); err != nil {
		return nil, err
	}
	return &cancelled, nil
}
