package handler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"rentabike/internal/notifications/mailer"
	"rentabike/internal/notifications/templates"
	"rentabike/pkg/kafka"
	"rentabike/pkg/logger"
	"rentabike/pkg/model"
)

type mockMailer struct {
	sendFunc func(ctx context.Context, msg mailer.Message) error
	sent     []mailer.Message
}

func (m *mockMailer) Send(ctx context.Context, msg mailer.Message) error {
	if m.sendFunc != nil {
		if err := m.sendFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, msg)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func eventMessage(t *testing.T, event model.BookingEvent) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return kafka.Message{Key: event.Booking.ID, Value: value}
}

func confirmationEvent() model.BookingEvent {
	return model.BookingEvent{
		Kind: model.KindConfirmation,
		Booking: model.Booking{
			ID:            "bk-1",
			CustomerName:  "Jane Doe",
			CustomerEmail: "jane@example.com",
			StartDate:     "2025-06-10",
			EndDate:       "2025-06-12",
			DurationHours: 72,
			TotalCost:     135,
			Status:        model.StatusPending,
		},
		Bike: &model.BikeSummary{Name: "Trail Runner", Type: "mountain"},
	}
}

func newHandler(m *mockMailer, adminEmail string) *BookingEventHandler {
	return NewBookingEventHandler(m, templates.Shop{Name: "Rent A Bike", PaymentEmail: "pay@example.com"}, adminEmail, testLogger())
}

func TestHandle_SendsCustomerAndAdmin(t *testing.T) {
	m := &mockMailer{}
	h := newHandler(m, "admin@example.com")

	if err := h.Handle(context.Background(), eventMessage(t, confirmationEvent())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(m.sent))
	}
	if m.sent[0].To != "jane@example.com" || m.sent[1].To != "admin@example.com" {
		t.Errorf("unexpected recipients %s, %s", m.sent[0].To, m.sent[1].To)
	}
}

func TestHandle_Failures(t *testing.T) {
	tests := []struct {
		name     string
		msg      func(t *testing.T) kafka.Message
		sendErr  error
		wantType kafka.ErrorType
	}{
		{
			name:     "undecodable payload",
			msg:      func(t *testing.T) kafka.Message { return kafka.Message{Value: []byte("{not json")} },
			wantType: kafka.ErrorTypePermanent,
		},
		{
			name: "no customer email",
			msg: func(t *testing.T) kafka.Message {
				e := confirmationEvent()
				e.Booking.CustomerEmail = ""
				return eventMessage(t, e)
			},
			wantType: kafka.ErrorTypePermanent,
		},
		{
			name:     "smtp unavailable",
			msg:      func(t *testing.T) kafka.Message { return eventMessage(t, confirmationEvent()) },
			sendErr:  kafka.NewTransientError("dial smtp", errors.New("connection refused")),
			wantType: kafka.ErrorTypeTransient,
		},
		{
			name:     "mailbox rejected",
			msg:      func(t *testing.T) kafka.Message { return eventMessage(t, confirmationEvent()) },
			sendErr:  kafka.NewPermanentError("rcpt to", errors.New("550 no such user")),
			wantType: kafka.ErrorTypePermanent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockMailer{sendFunc: func(ctx context.Context, msg mailer.Message) error { return tt.sendErr }}
			err := newHandler(m, "").Handle(context.Background(), tt.msg(t))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := kafka.ClassifyError(err); got != tt.wantType {
				t.Errorf("error type = %v, want %v (%v)", got, tt.wantType, err)
			}
		})
	}
}

func TestHandle_AdminFailureIsNotRetried(t *testing.T) {
	m := &mockMailer{sendFunc: func(ctx context.Context, msg mailer.Message) error {
		if msg.To == "admin@example.com" {
			return errors.New("connection reset")
		}
		return nil
	}}

	if err := newHandler(m, "admin@example.com").Handle(context.Background(), eventMessage(t, confirmationEvent())); err != nil {
		t.Errorf("admin failure must not fail the message: %v", err)
	}
	if len(m.sent) != 1 {
		t.Errorf("expected only the customer email delivered, got %d", len(m.sent))
	}
}
