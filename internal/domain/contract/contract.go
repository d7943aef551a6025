// Package contract defines the Contract aggregate: a named group of bookings
// forming one multi-date event, created and updated as a unit.
package contract

import (
	"fmt"
	"time"

	"github.com/venably/venably/internal/domain"
	"github.com/venably/venably/internal/domain/booking"
)

// Status is a plain label on the contract itself. Only member bookings are
// conflict-checked; the contract status never participates in overlap logic.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Contract is the aggregate root for a multi-date reservation. TotalCents is
// derived: always the sum of live member amounts, recomputed after every
// member mutation and never accepted from a client.
type Contract struct {
	ID         string            `json:"id"`
	TenantID   string            `json:"tenant_id"`
	CustomerID string            `json:"customer_id"`
	Name       string            `json:"name"`
	Status     Status            `json:"status"`
	TotalCents int64             `json:"total_cents"`
	Members    []booking.Booking `json:"members,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// MemberInput describes one member booking in a create or update request.
// On update, ID names an existing member row to keep; members present in the
// database but absent from the new set are soft-cancelled.
type MemberInput struct {
	ID          string         `json:"id,omitempty"`
	SpaceID     string         `json:"space_id,omitempty"`
	EventDate   string         `json:"event_date"`
	StartTime   string         `json:"start_time"`
	EndTime     string         `json:"end_time"`
	Status      booking.Status `json:"status,omitempty"`
	GuestCount  int            `json:"guest_count,omitempty"`
	AmountCents int64          `json:"amount_cents,omitempty"`
}

// CreateRequest holds the fields needed to create a contract with its first
// member set.
type CreateRequest struct {
	Name       string        `json:"name"`
	CustomerID string        `json:"customer_id"`
	Members    []MemberInput `json:"members"`
}

// UpdateRequest replaces a contract's member set.
type UpdateRequest struct {
	Name    *string       `json:"name,omitempty"`
	Members []MemberInput `json:"members"`
}

// Member is a parsed, validated member input.
type Member struct {
	ID          string
	Slot        booking.Slot
	Status      booking.Status
	GuestCount  int
	AmountCents int64
}

// ParseMembers validates and canonicalizes a member set. The set must be
// non-empty and must contain at least one live member: a contract with zero
// live bookings is a dangling object, so removing the last live member is
// rejected here rather than leaving the aggregate hollow.
func ParseMembers(inputs []MemberInput) ([]Member, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: a contract needs at least one member booking", domain.ErrValidation)
	}

	members := make([]Member, 0, len(inputs))
	live := 0
	for i, in := range inputs {
		slot, err := booking.ParseSlot(in.SpaceID, in.EventDate, in.StartTime, in.EndTime)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i+1, err)
		}
		status := in.Status
		if status == "" {
			status = booking.StatusInquiry
		}
		if !status.Valid() {
			return nil, fmt.Errorf("%w: member %d: unknown status %q", domain.ErrValidation, i+1, in.Status)
		}
		if in.GuestCount < 0 || in.AmountCents < 0 {
			return nil, fmt.Errorf("%w: member %d: negative guest_count or amount", domain.ErrValidation, i+1)
		}
		if status != booking.StatusCancelled {
			live++
		}
		members = append(members, Member{
			ID:          in.ID,
			Slot:        slot,
			Status:      status,
			GuestCount:  in.GuestCount,
			AmountCents: in.AmountCents,
		})
	}
	if live == 0 {
		return nil, fmt.Errorf("%w: a contract must keep at least one live member; cancel the contract instead", domain.ErrValidation)
	}
	return members, nil
}

// ValidateCreateRequest checks a contract create request.
func ValidateCreateRequest(req *CreateRequest) ([]Member, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if req.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer_id is required", domain.ErrValidation)
	}
	members, err := ParseMembers(req.Members)
	if err != nil {
		return nil, err
	}
	for i, m := range members {
		if m.ID != "" {
			return nil, fmt.Errorf("%w: member %d: id must be empty on create", domain.ErrValidation, i+1)
		}
	}
	return members, nil
}

// TotalCents sums the amounts of live members. This is the only way a
// contract total is ever produced.
func TotalCents(members []booking.Booking) int64 {
	var total int64
	for _, m := range members {
		if m.Live() {
			total += m.AmountCents
		}
	}
	return total
}
