package service

import (
	"context"
	"errors"
	"testing"

	"github.com/venably/venably/internal/domain"
	"github.com/venably/venably/internal/domain/booking"
)

func TestAvailabilityCheck(t *testing.T) {
	store := activeTenantStore()
	store.bookings = []booking.Booking{
		{ID: "bok-1", TenantID: "ten-1", SpaceID: "spc-1",
			EventDate: mustDate(t, "2026-09-12"), StartMinute: 840, EndMinute: 1080,
			Status: booking.StatusConfirmedFullyPaid},
		{ID: "bok-2", TenantID: "ten-1", SpaceID: "spc-2",
			EventDate: mustDate(t, "2026-09-12"), StartMinute: 840, EndMinute: 1080,
			Status: booking.StatusInquiry},
	}
	svc := NewAvailabilityService(store)

	results, err := svc.Check(context.Background(), "ten-1", CheckRequest{
		SpaceIDs:  []string{"spc-1", "spc-2", "spc-3"},
		EventDate: "2026-09-12",
		StartTime: "15:00",
		EndTime:   "17:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Available {
		t.Fatal("spc-1 has a blocking overlap, should be unavailable")
	}
	if !results[1].Available || len(results[1].Conflicts) != 1 {
		t.Fatalf("spc-2 should be available with one advisory conflict, got %+v", results[1])
	}
	if !results[2].Available || len(results[2].Conflicts) != 0 {
		t.Fatalf("spc-3 should be free, got %+v", results[2])
	}
}

func TestAvailabilityCheckExcludesOwnBooking(t *testing.T) {
	store := activeTenantStore()
	store.bookings = []booking.Booking{
		{ID: "bok-1", TenantID: "ten-1", SpaceID: "spc-1",
			EventDate: mustDate(t, "2026-09-12"), StartMinute: 840, EndMinute: 1080,
			Status: booking.StatusConfirmedFullyPaid},
	}
	svc := NewAvailabilityService(store)

	results, err := svc.Check(context.Background(), "ten-1", CheckRequest{
		SpaceIDs:         []string{"spc-1"},
		EventDate:        "2026-09-12",
		StartTime:        "14:00",
		EndTime:          "18:00",
		ExcludeBookingID: "bok-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !results[0].Available {
		t.Fatal("a booking must not conflict with itself")
	}
}

func TestAvailabilityCheckValidation(t *testing.T) {
	svc := NewAvailabilityService(activeTenantStore())

	_, err := svc.Check(context.Background(), "", CheckRequest{SpaceIDs: []string{"spc-1"}})
	if !errors.Is(err, domain.ErrTenantRequired) {
		t.Fatalf("expected ErrTenantRequired, got %v", err)
	}

	_, err = svc.Check(context.Background(), "ten-1", CheckRequest{
		EventDate: "2026-09-12", StartTime: "10:00", EndTime: "12:00",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty space list, got %v", err)
	}

	_, err = svc.Check(context.Background(), "ten-1", CheckRequest{
		SpaceIDs: []string{"spc-1"}, EventDate: "2026-09-12", StartTime: "25:00", EndTime: "26:00",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for bad clock, got %v", err)
	}
}
