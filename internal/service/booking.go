package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/venably/venably/internal/adapter/otel"
	"github.com/venably/venably/internal/domain/booking"
	"github.com/venably/venably/internal/port/database"
	"github.com/venably/venably/internal/port/messagequeue"
)

// BookingService coordinates single-booking writes: tenant resolution,
// request validation, the retried check-then-write transaction, and the
// post-commit event publish.
type BookingService struct {
	store   database.Store
	tenants *TenantService
	queue   messagequeue.Queue
	metrics *otel.Metrics
	retry   RetryPolicy
}

// NewBookingService creates a new BookingService. queue and metrics may be nil.
func NewBookingService(store database.Store, tenants *TenantService, queue messagequeue.Queue, metrics *otel.Metrics, retry RetryPolicy) *BookingService {
	return &BookingService{store: store, tenants: tenants, queue: queue, metrics: metrics, retry: retry}
}

// Get returns a booking by ID.
func (s *BookingService) Get(ctx context.Context, tenantID, id string) (*booking.Booking, error) {
	return s.store.GetBooking(ctx, tenantID, id)
}

// List returns the tenant's bookings with event dates in [from, to).
func (s *BookingService) List(ctx context.Context, tenantID string, from, to time.Time) ([]booking.Booking, error) {
	return s.store.ListBookings(ctx, tenantID, from, to)
}

// bookingWrite is the result of one committed write cycle.
type bookingWrite struct {
	booking  *booking.Booking
	warnings []booking.Conflict
}

// Create creates a booking. On success the returned conflicts are advisory
// warnings (inquiry overlaps); a blocking overlap rejects the write with
// *booking.ConflictError carrying the full conflict set.
func (s *BookingService) Create(ctx context.Context, tenantID string, req *booking.CreateRequest) (*booking.Booking, []booking.Conflict, error) {
	if _, err := s.tenants.Resolve(ctx, tenantID); err != nil {
		return nil, nil, err
	}
	if err := booking.ValidateCreateRequest(req); err != nil {
		return nil, nil, err
	}

	ctx, span := otel.StartWriteSpan(ctx, "booking_create", tenantID)
	defer span.End()

	start := time.Now()
	res, retries, err := retryWrite(ctx, s.retry, func() (bookingWrite, error) {
		b, warnings, err := s.store.CreateBooking(ctx, tenantID, *req)
		return bookingWrite{booking: b, warnings: warnings}, err
	})
	s.observeWrite(ctx, start, retries, err)
	if err != nil {
		return nil, conflictsOf(err), err
	}

	if s.metrics != nil {
		s.metrics.BookingsCreated.Add(ctx, 1)
		s.metrics.ConflictsAdvisory.Add(ctx, int64(len(res.warnings)))
	}
	s.publishBooking(ctx, messagequeue.SubjectBookingCreated, res.booking, len(res.warnings))
	return res.booking, res.warnings, nil
}

// Update applies partial updates to a booking, re-running the conflict check
// whenever the slot or status changes.
func (s *BookingService) Update(ctx context.Context, tenantID, id string, req booking.UpdateRequest) (*booking.Booking, []booking.Conflict, error) {
	if _, err := s.tenants.Resolve(ctx, tenantID); err != nil {
		return nil, nil, err
	}

	ctx, span := otel.StartWriteSpan(ctx, "booking_update", tenantID)
	defer span.End()

	start := time.Now()
	res, retries, err := retryWrite(ctx, s.retry, func() (bookingWrite, error) {
		b, warnings, err := s.store.UpdateBooking(ctx, tenantID, id, req)
		return bookingWrite{booking: b, warnings: warnings}, err
	})
	s.observeWrite(ctx, start, retries, err)
	if err != nil {
		return nil, conflictsOf(err), err
	}

	if s.metrics != nil {
		s.metrics.ConflictsAdvisory.Add(ctx, int64(len(res.warnings)))
	}
	s.publishBooking(ctx, messagequeue.SubjectBookingUpdated, res.booking, len(res.warnings))
	return res.booking, res.warnings, nil
}

// Cancel soft-cancels a booking, freeing its slot. Cancelling an already
// cancelled booking is an idempotent no-op.
func (s *BookingService) Cancel(ctx context.Context, tenantID, id string) (*booking.Booking, error) {
	if _, err := s.tenants.Resolve(ctx, tenantID); err != nil {
		return nil, err
	}

	b, retries, err := retryWrite(ctx, s.retry, func() (*booking.Booking, error) {
		return s.store.CancelBooking(ctx, tenantID, id)
	})
	s.observeWrite(ctx, time.Time{}, retries, err)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BookingsCancelled.Add(ctx, 1)
	}
	s.publishBooking(ctx, messagequeue.SubjectBookingCancelled, b, 0)
	return b, nil
}

// observeWrite records retry and outcome metrics for one write cycle.
func (s *BookingService) observeWrite(ctx context.Context, start time.Time, retries int, err error) {
	if s.metrics == nil {
		return
	}
	if retries > 0 {
		s.metrics.TxRetries.Add(ctx, int64(retries))
	}
	if !start.IsZero() {
		s.metrics.CommitDuration.Record(ctx, time.Since(start).Seconds())
	}
	var ce *booking.ConflictError
	if errors.As(err, &ce) {
		s.metrics.ConflictsBlocking.Add(ctx, 1)
	}
}

// conflictsOf extracts the conflict set from a write rejection, so handlers
// can report every colliding booking rather than just the first.
func conflictsOf(err error) []booking.Conflict {
	var ce *booking.ConflictError
	if errors.As(err, &ce) {
		return ce.Conflicts
	}
	return nil
}

// publishBooking emits a lifecycle event after a committed write. Publishing
// is best effort; a queue outage never fails the request.
func (s *BookingService) publishBooking(ctx context.Context, subject string, b *booking.Booking, warnings int) {
	if s.queue == nil || b == nil {
		return
	}
	payload := messagequeue.BookingEventPayload{
		TenantID:   b.TenantID,
		BookingID:  b.ID,
		ContractID: b.ContractID,
		SpaceID:    b.SpaceID,
		EventDate:  b.EventDate.Format(booking.DateLayout),
		StartTime:  booking.FormatClock(b.StartMinute),
		EndTime:    booking.FormatClock(b.EndMinute),
		Status:     string(b.Status),
		Warnings:   warnings,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		slog.Warn("event publish failed", "subject", subject, "booking", b.ID, "error", err)
	}
}
