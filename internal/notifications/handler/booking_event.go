package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"rentabike/internal/notifications/mailer"
	"rentabike/internal/notifications/templates"
	"rentabike/pkg/kafka"
	"rentabike/pkg/logger"
	"rentabike/pkg/model"
)

type BookingEventHandler struct {
	mailer     mailer.Mailer
	shop       templates.Shop
	adminEmail string
	log        *logger.Logger
}

func NewBookingEventHandler(m mailer.Mailer, shop templates.Shop, adminEmail string, log *logger.Logger) *BookingEventHandler {
	return &BookingEventHandler{
		mailer:     m,
		shop:       shop,
		adminEmail: adminEmail,
		log:        log,
	}
}

// Handle sends the customer email for one lifecycle event, then the admin
// copy. Only a customer delivery failure is returned to the consumer; the
// admin copy is best effort so a retry never mails the customer twice.
func (h *BookingEventHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return kafka.NewPermanentError("decode booking event", err)
	}
	if event.Booking.CustomerEmail == "" {
		return kafka.NewPermanentError("booking event", fmt.Errorf("booking %s has no customer email", event.Booking.ID))
	}

	customer, admin, err := templates.Render(&event, h.shop)
	if err != nil {
		return kafka.NewPermanentError("render booking email", err)
	}

	if err := h.mailer.Send(ctx, mailer.Message{
		To:      event.Booking.CustomerEmail,
		Subject: customer.Subject,
		Body:    customer.Body,
	}); err != nil {
		return fmt.Errorf("send %s email for booking %s: %w", event.Kind, event.Booking.ID, err)
	}

	h.log.Info("Customer email sent",
		"booking_id", event.Booking.ID,
		"kind", event.Kind,
		"status", event.Booking.Status,
	)

	if h.adminEmail == "" {
		return nil
	}
	if err := h.mailer.Send(ctx, mailer.Message{
		To:      h.adminEmail,
		Subject: admin.Subject,
		Body:    admin.Body,
	}); err != nil {
		h.log.Warn("Admin email failed",
			"booking_id", event.Booking.ID,
			"kind", event.Kind,
			"error", err,
		)
	}
	return nil
}
