// Package lifecycle holds the booking rules that depend on time rather than
// on other bookings: the pending hold window and the price quote.
package lifecycle

import (
	"time"

	"rentabike/pkg/model"
)

// DefaultHoldDuration is how long a pending booking waits for payment.
const DefaultHoldDuration = 3 * time.Hour

type Policy struct {
	HoldDuration time.Duration
}

func NewPolicy(hold time.Duration) Policy {
	if hold <= 0 {
		hold = DefaultHoldDuration
	}
	return Policy{HoldDuration: hold}
}

// ExpiresAt returns the hold deadline of a pending booking. Other statuses
// have no deadline.
func (p Policy) ExpiresAt(b *model.Booking) (time.Time, bool) {
	if b == nil || b.Status != model.StatusPending {
		return time.Time{}, false
	}
	return b.CreatedAt.Add(p.HoldDuration), true
}

// IsPendingExpired is derived at read time; nothing sweeps expired holds.
func (p Policy) IsPendingExpired(b *model.Booking, now time.Time) bool {
	deadline, ok := p.ExpiresAt(b)
	return ok && now.After(deadline)
}

// TimeRemaining is zero once the hold has lapsed or for non-pending bookings.
func (p Policy) TimeRemaining(b *model.Booking, now time.Time) time.Duration {
	deadline, ok := p.ExpiresAt(b)
	if !ok || !now.Before(deadline) {
		return 0
	}
	return deadline.Sub(now)
}

// Describe attaches the derived expiry fields for display.
func (p Policy) Describe(b *model.Booking, bike *model.BikeSummary, now time.Time) *model.BookingDetails {
	details := &model.BookingDetails{Booking: b, Bike: bike}
	if deadline, ok := p.ExpiresAt(b); ok {
		details.ExpiresAt = &deadline
		details.Expired = now.After(deadline)
	}
	return details
}

func IsPendingExpired(b *model.Booking, now time.Time) bool {
	return NewPolicy(DefaultHoldDuration).IsPendingExpired(b, now)
}
