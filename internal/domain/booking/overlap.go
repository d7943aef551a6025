package booking

import (
	"fmt"
	"strings"
	"time"
)

// Conflict describes one detected overlap between a proposed slot and an
// existing booking. Conflicts are returned as structured data, never encoded
// in error strings, so callers can present every clashing date at once.
type Conflict struct {
	EventDate time.Time `json:"event_date"`
	SpaceID   string    `json:"space_id"`
	BookingID string    `json:"booking_id"`
	Status    Status    `json:"status"`
	Blocking  bool      `json:"blocking"`
}

// ConflictError is the terminal outcome of a write whose slot collides with
// at least one blocking booking. It carries the full conflict set, advisory
// records included, and implies no rows were written.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	n := 0
	for _, c := range e.Conflicts {
		if c.Blocking {
			n++
		}
	}
	return fmt.Sprintf("booking conflict: %d blocking of %d total", n, len(e.Conflicts))
}

// HasBlocking reports whether any conflict in the set is blocking.
func HasBlocking(conflicts []Conflict) bool {
	for _, c := range conflicts {
		if c.Blocking {
			return true
		}
	}
	return false
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Exactly adjacent intervals (e1 == s2) do not.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// FindConflicts evaluates a proposed slot against the candidate set and
// returns one Conflict per overlapping booking, blocking flag set per the
// status policy. The caller loads candidates for the tenant/space/date;
// cancelled bookings must already be excluded from that set, and excludeID
// omits the proposal's own prior row when re-checking an edit.
//
// A slot without a space cannot collide: no space has been reserved yet.
func FindConflicts(candidates []Booking, slot Slot, excludeID string) []Conflict {
	if slot.SpaceID == "" {
		return nil
	}

	var conflicts []Conflict
	for _, c := range candidates {
		if c.ID == excludeID || c.Status == StatusCancelled {
			continue
		}
		if c.SpaceID != slot.SpaceID || !SameDate(c.EventDate, slot.EventDate) {
			continue
		}
		if !Overlaps(slot.StartMinute, slot.EndMinute, c.StartMinute, c.EndMinute) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			EventDate: slot.EventDate,
			SpaceID:   slot.SpaceID,
			BookingID: c.ID,
			Status:    c.Status,
			Blocking:  c.Status.Blocking(),
		})
	}
	return conflicts
}

// SlotKey identifies one (space, date) contention domain, used to group
// candidate loads when a contract spans several dates and spaces.
func SlotKey(spaceID string, date time.Time) string {
	return strings.Join([]string{spaceID, date.Format(DateLayout)}, "|")
}
