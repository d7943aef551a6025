package contract

import (
	"errors"
	"testing"

	"github.com/venably/venably/internal/domain"
	"github.com/venably/venably/internal/domain/booking"
)

func member(space, date string, status booking.Status, cents int64) MemberInput {
	return MemberInput{
		SpaceID:     space,
		EventDate:   date,
		StartTime:   "18:00",
		EndTime:     "22:00",
		Status:      status,
		AmountCents: cents,
	}
}

func TestValidateCreateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRequest
		wantErr bool
	}{
		{
			"valid two-date contract",
			CreateRequest{Name: "Summer Gala", CustomerID: "c1", Members: []MemberInput{
				member("s1", "2025-06-01", booking.StatusInquiry, 50000),
				member("s1", "2025-06-02", booking.StatusInquiry, 50000),
			}},
			false,
		},
		{"missing name", CreateRequest{CustomerID: "c1", Members: []MemberInput{member("s1", "2025-06-01", "", 0)}}, true},
		{"missing customer", CreateRequest{Name: "x", Members: []MemberInput{member("s1", "2025-06-01", "", 0)}}, true},
		{"no members", CreateRequest{Name: "x", CustomerID: "c1"}, true},
		{
			"member with id on create",
			CreateRequest{Name: "x", CustomerID: "c1", Members: []MemberInput{
				{ID: "b1", SpaceID: "s1", EventDate: "2025-06-01", StartTime: "18:00", EndTime: "22:00"},
			}},
			true,
		},
		{
			"invalid member time",
			CreateRequest{Name: "x", CustomerID: "c1", Members: []MemberInput{
				{SpaceID: "s1", EventDate: "2025-06-01", StartTime: "22:00", EndTime: "18:00"},
			}},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateCreateRequest(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCreateRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrValidation) {
				t.Errorf("error should wrap ErrValidation, got %v", err)
			}
		})
	}
}

func TestParseMembers_DefaultsToInquiry(t *testing.T) {
	members, err := ParseMembers([]MemberInput{member("s1", "2025-06-01", "", 0)})
	if err != nil {
		t.Fatal(err)
	}
	if members[0].Status != booking.StatusInquiry {
		t.Errorf("expected default status inquiry, got %s", members[0].Status)
	}
}

func TestParseMembers_RejectsZeroLiveMembers(t *testing.T) {
	_, err := ParseMembers([]MemberInput{
		member("s1", "2025-06-01", booking.StatusCancelled, 0),
		member("s1", "2025-06-02", booking.StatusCancelled, 0),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for all-cancelled member set, got %v", err)
	}
}

func TestTotalCents(t *testing.T) {
	members := []booking.Booking{
		{Status: booking.StatusConfirmedDeposit, AmountCents: 120000},
		{Status: booking.StatusInquiry, AmountCents: 30000},
		{Status: booking.StatusCancelled, AmountCents: 99999},
	}
	if got := TotalCents(members); got != 150000 {
		t.Errorf("TotalCents() = %d, want 150000 (cancelled members excluded)", got)
	}
	if got := TotalCents(nil); got != 0 {
		t.Errorf("TotalCents(nil) = %d, want 0", got)
	}
}
