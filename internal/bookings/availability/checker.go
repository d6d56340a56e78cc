// Package availability decides whether a bike can be granted for a candidate
// interval. It performs no I/O; callers supply the active bookings.
package availability

import (
	"rentabike/pkg/model"
)

type Result struct {
	HasConflict bool
	// Conflict is the first blocking booking in iteration order.
	Conflict *model.Booking
}

// Check runs the candidate against existing bookings for the same bike.
// Inactive bookings and the one named by excludeID are skipped. A stored
// booking whose dates cannot be parsed is treated as blocking.
func Check(candidate Interval, existing []*model.Booking, excludeID string) Result {
	for _, b := range existing {
		if b == nil || !b.Status.IsActive() {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}

		other, err := ForBooking(b)
		if err != nil || candidate.Overlaps(other) {
			return Result{HasConflict: true, Conflict: b}
		}
	}
	return Result{}
}
