// Package booking defines the Booking domain entity, the status policy that
// decides whether an overlap blocks a write, and the pure interval overlap
// checker.
package booking

import (
	"fmt"
	"time"

	"github.com/venably/venably/internal/domain"
)

// Status is the lifecycle state of a booking. The two confirmed states carry
// the payment sub-state because only the blocking decision cares about it.
type Status string

const (
	StatusInquiry            Status = "inquiry"
	StatusConfirmedDeposit   Status = "confirmed_deposit_paid"
	StatusConfirmedFullyPaid Status = "confirmed_fully_paid"
	StatusCompleted          Status = "completed"
	StatusCancelled          Status = "cancelled"
)

// Statuses lists every valid booking status.
var Statuses = []Status{
	StatusInquiry,
	StatusConfirmedDeposit,
	StatusConfirmedFullyPaid,
	StatusCompleted,
	StatusCancelled,
}

// BlockingStatuses are the statuses that hard-reserve a space: an overlap
// with a booking in one of these states rejects the write. Inquiry overlaps
// are advisory only, so provisional holds never permanently reserve a space.
var BlockingStatuses = []Status{
	StatusConfirmedDeposit,
	StatusConfirmedFullyPaid,
	StatusCompleted,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Blocking reports whether a booking in this status hard-reserves its slot.
func (s Status) Blocking() bool {
	for _, v := range BlockingStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CanTransition reports whether a booking may move from s to next.
// Completed and cancelled are terminal; cancelling an already-cancelled
// booking is treated as an idempotent no-op by the coordinator, not here.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusInquiry:
		return next == StatusConfirmedDeposit || next == StatusConfirmedFullyPaid || next == StatusCancelled
	case StatusConfirmedDeposit:
		return next == StatusConfirmedFullyPaid || next == StatusCompleted || next == StatusCancelled
	case StatusConfirmedFullyPaid:
		return next == StatusConfirmedDeposit || next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

// Booking represents one calendar reservation of a space.
// Start and end are minutes since midnight, half-open [Start, End): a booking
// ending at the exact minute another starts does not collide with it.
type Booking struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	ContractID  string    `json:"contract_id,omitempty"`
	SpaceID     string    `json:"space_id,omitempty"`
	VenueID     string    `json:"venue_id,omitempty"`
	CustomerID  string    `json:"customer_id"`
	EventDate   time.Time `json:"event_date"`
	StartMinute int       `json:"start_minute"`
	EndMinute   int       `json:"end_minute"`
	Status      Status    `json:"status"`
	GuestCount  int       `json:"guest_count"`
	AmountCents int64     `json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Live reports whether the booking still occupies its slot.
func (b *Booking) Live() bool {
	return b.Status != StatusCancelled
}

// CreateRequest holds the fields needed to create a single booking.
// Times arrive as clock strings and are parsed once at this boundary.
type CreateRequest struct {
	CustomerID  string `json:"customer_id"`
	VenueID     string `json:"venue_id,omitempty"`
	SpaceID     string `json:"space_id,omitempty"`
	EventDate   string `json:"event_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Status      Status `json:"status,omitempty"`
	GuestCount  int    `json:"guest_count,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"`
}

// UpdateRequest holds the fields that can change on an existing booking.
// Nil pointers leave the current value untouched.
type UpdateRequest struct {
	SpaceID     *string `json:"space_id,omitempty"`
	EventDate   *string `json:"event_date,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	Status      *Status `json:"status,omitempty"`
	GuestCount  *int    `json:"guest_count,omitempty"`
	AmountCents *int64  `json:"amount_cents,omitempty"`
}

// Slot is a validated, parsed reservation of one space on one date.
type Slot struct {
	SpaceID     string
	EventDate   time.Time
	StartMinute int
	EndMinute   int
}

// ParseSlot validates and canonicalizes the date/time fields of a request.
// spaceID may be empty (space-less inquiries cannot collide).
func ParseSlot(spaceID, eventDate, startTime, endTime string) (Slot, error) {
	var s Slot
	if eventDate == "" {
		return s, fmt.Errorf("%w: event_date is required", domain.ErrValidation)
	}
	d, err := ParseDate(eventDate)
	if err != nil {
		return s, err
	}
	start, err := ParseClock(startTime)
	if err != nil {
		return s, fmt.Errorf("start_time: %w", err)
	}
	end, err := ParseClock(endTime)
	if err != nil {
		return s, fmt.Errorf("end_time: %w", err)
	}
	if start >= end {
		return s, fmt.Errorf("%w: start_time must be before end_time", domain.ErrValidation)
	}
	s.SpaceID = spaceID
	s.EventDate = d
	s.StartMinute = start
	s.EndMinute = end
	return s, nil
}

// ValidateCreateRequest checks a single-booking create request.
func ValidateCreateRequest(req *CreateRequest) error {
	if req.CustomerID == "" {
		return fmt.Errorf("%w: customer_id is required", domain.ErrValidation)
	}
	if req.Status != "" && !req.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, req.Status)
	}
	if req.Status == StatusCancelled {
		return fmt.Errorf("%w: cannot create a cancelled booking", domain.ErrValidation)
	}
	if req.GuestCount < 0 {
		return fmt.Errorf("%w: guest_count must not be negative", domain.ErrValidation)
	}
	if req.AmountCents < 0 {
		return fmt.Errorf("%w: amount_cents must not be negative", domain.ErrValidation)
	}
	_, err := ParseSlot(req.SpaceID, req.EventDate, req.StartTime, req.EndTime)
	return err
}
