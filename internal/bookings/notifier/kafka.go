// Package notifier publishes booking lifecycle events for the mail worker.
package notifier

import (
	"context"
	"fmt"

	"rentabike/internal/bookings/lifecycle"
	"rentabike/pkg/clock"
	"rentabike/pkg/config"
	"rentabike/pkg/kafka"
	"rentabike/pkg/model"
)

const SchemaVersion = "1"

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaNotifier struct {
	publisher Publisher
	policy    lifecycle.Policy
	clock     clock.Clock
	source    string
}

func NewKafkaNotifier(publisher Publisher, clk clock.Clock, cfg *config.Config) *KafkaNotifier {
	if clk == nil {
		clk = clock.System{}
	}
	return &KafkaNotifier{
		publisher: publisher,
		policy:    lifecycle.NewPolicy(cfg.PendingHoldDuration),
		clock:     clk,
		source:    cfg.ServiceName,
	}
}

func EventType(kind model.NotificationKind) string {
	return "booking." + string(kind)
}

// Notify publishes one event keyed by booking id, so every event for a
// booking lands on the same partition in order.
func (n *KafkaNotifier) Notify(ctx context.Context, booking *model.Booking, bike *model.Bike, kind model.NotificationKind, previous model.BookingStatus) error {
	now := n.clock.Now().UTC()

	event := model.BookingEvent{
		Kind:           kind,
		Booking:        *booking,
		Bike:           bike.Summary(),
		PreviousStatus: previous,
		OccurredAt:     now,
	}
	if deadline, ok := n.policy.ExpiresAt(booking); ok {
		event.HoldExpiresAt = &deadline
	}

	msg, err := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(event).
		WithEventType(EventType(kind)).
		WithSchemaVersion(SchemaVersion).
		WithSource(n.source).
		WithTimestamp(now).
		Build()
	if err != nil {
		return err
	}

	if err := n.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event for booking %s: %w", kind, booking.ID, err)
	}
	return nil
}
