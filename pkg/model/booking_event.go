package model

import "time"

type NotificationKind string

const (
	KindConfirmation NotificationKind = "confirmation"
	KindStatusUpdate NotificationKind = "status_update"
)

// BookingEvent is published on the booking lifecycle topic for the notifier.
type BookingEvent struct {
	Kind           NotificationKind `json:"kind"`
	Booking        Booking          `json:"booking"`
	Bike           *BikeSummary     `json:"bike,omitempty"`
	PreviousStatus BookingStatus    `json:"previous_status,omitempty"`
	HoldExpiresAt  *time.Time       `json:"hold_expires_at,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}
