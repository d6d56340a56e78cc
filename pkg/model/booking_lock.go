package model

import "time"

// BookingLock is an advisory lock document serializing booking writes per
// bike. Owner lets the holder release only its own lock; ExpiresAt is
// TTL-indexed so an abandoned lock is eventually reclaimed. FencedAt is
// stamped by the holder's transaction, so a reclaim racing that transaction
// write-conflicts with it.
type BookingLock struct {
	ID        string     `bson:"_id" json:"id"`
	Owner     string     `bson:"owner" json:"owner"`
	ExpiresAt time.Time  `bson:"expires_at" json:"expires_at"`
	FencedAt  *time.Time `bson:"fenced_at,omitempty" json:"fenced_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}
