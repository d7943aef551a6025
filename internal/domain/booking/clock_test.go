package booking

import (
	"errors"
	"testing"

	"github.com/venably/venably/internal/domain"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"9:00", 540, false},
		{"18:30", 1110, false},
		{"24:00", 1440, false},
		{"09:00 AM", 540, false},
		{"9:00 am", 540, false},
		{"12:00 AM", 0, false},
		{"12:00 PM", 720, false},
		{"6:00 PM", 1080, false},
		{"11:59 PM", 1439, false},
		{" 6:00 PM ", 1080, false},
		{"", 0, true},
		{"25:00", 0, true},
		{"24:01", 0, true},
		{"13:00 PM", 0, true},
		{"0:00 AM", 0, true},
		{"10:60", 0, true},
		{"noon", 0, true},
		{"18:00sharp", 0, true},
		{"18:00:00", 0, true},
		{"x18:00", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("error should wrap ErrValidation, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseClock_FormatsAgree(t *testing.T) {
	// The same wall-clock moment in both legacy formats must parse to the
	// same integer, the failure mode the canonical representation exists for.
	a, err := ParseClock("09:00")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseClock("09:00 AM")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("24h and 12h forms disagree: %d vs %d", a, b)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-01")
	if err != nil {
		t.Fatal(err)
	}
	if d.Year() != 2025 || d.Month() != 6 || d.Day() != 1 {
		t.Errorf("unexpected date %v", d)
	}
	if _, err := ParseDate("06/01/2025"); err == nil {
		t.Error("expected error for non-canonical date format")
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(1110); got != "18:30" {
		t.Errorf("FormatClock(1110) = %q, want 18:30", got)
	}
}
