package booking

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 int
		want           bool
	}{
		{"identical", 1080, 1320, 1080, 1320, true},
		{"partial overlap tail", 1080, 1320, 1200, 1380, true},
		{"partial overlap head", 1200, 1380, 1080, 1320, true},
		{"containment", 1080, 1320, 1140, 1200, true},
		{"contained by", 1140, 1200, 1080, 1320, true},
		{"adjacent after", 1080, 1320, 1320, 1380, false},
		{"adjacent before", 1320, 1380, 1080, 1320, false},
		{"disjoint", 540, 600, 1080, 1320, false},
		{"one minute overlap", 1080, 1321, 1320, 1380, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("Overlaps(%d,%d,%d,%d) = %v, want %v", tt.s1, tt.e1, tt.s2, tt.e2, got, tt.want)
			}
		})
	}
}

func TestFindConflicts(t *testing.T) {
	existing := []Booking{
		{ID: "b1", SpaceID: "s1", EventDate: date("2025-06-01"), StartMinute: 1080, EndMinute: 1320, Status: StatusConfirmedDeposit},
		{ID: "b2", SpaceID: "s1", EventDate: date("2025-06-01"), StartMinute: 540, EndMinute: 720, Status: StatusInquiry},
		{ID: "b3", SpaceID: "s2", EventDate: date("2025-06-01"), StartMinute: 1080, EndMinute: 1320, Status: StatusConfirmedFullyPaid},
		{ID: "b4", SpaceID: "s1", EventDate: date("2025-06-02"), StartMinute: 1080, EndMinute: 1320, Status: StatusCompleted},
		{ID: "b5", SpaceID: "s1", EventDate: date("2025-06-01"), StartMinute: 1080, EndMinute: 1320, Status: StatusCancelled},
	}

	slot := func(space string, d string, start, end int) Slot {
		return Slot{SpaceID: space, EventDate: date(d), StartMinute: start, EndMinute: end}
	}

	t.Run("blocking overlap detected", func(t *testing.T) {
		got := FindConflicts(existing, slot("s1", "2025-06-01", 1200, 1380), "")
		if len(got) != 1 {
			t.Fatalf("expected 1 conflict, got %d", len(got))
		}
		if got[0].BookingID != "b1" || !got[0].Blocking {
			t.Errorf("unexpected conflict %+v", got[0])
		}
	})

	t.Run("adjacent slot does not conflict", func(t *testing.T) {
		if got := FindConflicts(existing, slot("s1", "2025-06-01", 1320, 1380), ""); len(got) != 0 {
			t.Errorf("expected no conflicts, got %+v", got)
		}
	})

	t.Run("inquiry overlap is advisory", func(t *testing.T) {
		got := FindConflicts(existing, slot("s1", "2025-06-01", 600, 660), "")
		if len(got) != 1 {
			t.Fatalf("expected 1 conflict, got %d", len(got))
		}
		if got[0].Blocking {
			t.Error("inquiry conflict must be advisory")
		}
		if HasBlocking(got) {
			t.Error("HasBlocking reported true for advisory-only set")
		}
	})

	t.Run("cancelled bookings never conflict", func(t *testing.T) {
		got := FindConflicts(existing, slot("s1", "2025-06-01", 1080, 1320), "b1")
		// b1 excluded, b5 cancelled: nothing left in that window except b5.
		if len(got) != 0 {
			t.Errorf("expected no conflicts, got %+v", got)
		}
	})

	t.Run("exclude own booking when re-checking an edit", func(t *testing.T) {
		got := FindConflicts(existing, slot("s1", "2025-06-01", 1080, 1320), "b1")
		for _, c := range got {
			if c.BookingID == "b1" {
				t.Error("excluded booking reported as conflict")
			}
		}
	})

	t.Run("other space does not conflict", func(t *testing.T) {
		if got := FindConflicts(existing, slot("s3", "2025-06-01", 1080, 1320), ""); len(got) != 0 {
			t.Errorf("expected no conflicts, got %+v", got)
		}
	})

	t.Run("other date does not conflict", func(t *testing.T) {
		if got := FindConflicts(existing, slot("s1", "2025-06-03", 1080, 1320), ""); len(got) != 0 {
			t.Errorf("expected no conflicts, got %+v", got)
		}
	})

	t.Run("space-less slot short-circuits", func(t *testing.T) {
		if got := FindConflicts(existing, slot("", "2025-06-01", 1080, 1320), ""); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestConflictError(t *testing.T) {
	err := &ConflictError{Conflicts: []Conflict{
		{BookingID: "b1", Blocking: true},
		{BookingID: "b2", Blocking: false},
	}}
	want := "booking conflict: 1 blocking of 2 total"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
