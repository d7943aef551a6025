package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/venably/venably/internal/domain"
)

// DateLayout is the canonical calendar-date format at the API boundary.
const DateLayout = "2006-01-02"

// MinutesPerDay bounds a clock value; an end time of 24:00 means midnight at
// the end of the event date.
const MinutesPerDay = 24 * 60

// ParseDate parses a calendar date, discarding any time or zone component.
// Dates are compared as calendar dates only, so a booking never shifts to a
// neighbouring day under timezone conversion.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid event_date %q (want YYYY-MM-DD)", domain.ErrValidation, s)
	}
	return d, nil
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseClock parses a wall-clock time into minutes since midnight. It accepts
// both 24-hour ("18:00") and 12-hour ("6:00 PM") forms, so the historically
// inconsistent formats normalize to one integer representation, compared once
// and only as integers. "24:00" is accepted as end-of-day.
func ParseClock(s string) (int, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("%w: time is required", domain.ErrValidation)
	}

	upper := strings.ToUpper(raw)
	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(upper, suffix) {
			meridiem = suffix
			upper = strings.TrimSpace(strings.TrimSuffix(upper, suffix))
			break
		}
	}

	// strconv rejects trailing garbage, so "18:00sharp" does not parse as 18:00.
	hhRaw, mmRaw, ok := strings.Cut(upper, ":")
	if !ok {
		return 0, fmt.Errorf("%w: invalid time %q", domain.ErrValidation, s)
	}
	hh, err := strconv.Atoi(hhRaw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid time %q", domain.ErrValidation, s)
	}
	mm, err := strconv.Atoi(mmRaw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid time %q", domain.ErrValidation, s)
	}
	if mm < 0 || mm > 59 {
		return 0, fmt.Errorf("%w: invalid minutes in %q", domain.ErrValidation, s)
	}

	switch meridiem {
	case "AM":
		if hh < 1 || hh > 12 {
			return 0, fmt.Errorf("%w: invalid hour in %q", domain.ErrValidation, s)
		}
		if hh == 12 {
			hh = 0
		}
	case "PM":
		if hh < 1 || hh > 12 {
			return 0, fmt.Errorf("%w: invalid hour in %q", domain.ErrValidation, s)
		}
		if hh != 12 {
			hh += 12
		}
	default:
		if hh < 0 || hh > 24 || (hh == 24 && mm != 0) {
			return 0, fmt.Errorf("%w: invalid hour in %q", domain.ErrValidation, s)
		}
	}

	return hh*60 + mm, nil
}

// FormatClock renders minutes since midnight as a 24-hour clock string.
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
