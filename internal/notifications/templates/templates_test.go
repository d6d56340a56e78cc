package templates

import (
	"strings"
	"testing"
	"time"

	"rentabike/internal/bookings/lifecycle"
	"rentabike/pkg/model"
)

func testEvent(kind model.NotificationKind) *model.BookingEvent {
	deadline := time.Date(2025, 6, 9, 16, 0, 0, 0, time.UTC)
	return &model.BookingEvent{
		Kind: kind,
		Booking: model.Booking{
			ID:            "665f1c2ab9e1d2a3b4c5d6e7",
			BikeID:        "665f1c2ab9e1d2a3b4c5d6e0",
			CustomerName:  "Jane Doe",
			CustomerEmail: "jane@example.com",
			CustomerPhone: "+19025550123",
			StartDate:     "2025-06-10",
			EndDate:       "2025-06-12",
			PickupTime:    "09:00",
			DropoffTime:   "17:00",
			DurationHours: 56,
			TotalCost:     135,
			Status:        model.StatusPending,
		},
		Bike:          &model.BikeSummary{Name: "Trail Runner", Type: "mountain"},
		HoldExpiresAt: &deadline,
		OccurredAt:    time.Date(2025, 6, 9, 13, 0, 0, 0, time.UTC),
	}
}

func testShop() Shop {
	return Shop{
		Name:         "Rent A Bike",
		PaymentEmail: "payments@rentabike.example",
		DashboardURL: "https://rentabike.example/admin",
	}
}

func TestRender_Confirmation(t *testing.T) {
	customer, admin, err := Render(testEvent(model.KindConfirmation), testShop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"Hi Jane Doe",
		"payments@rentabike.example",
		"$135.00",
		"Booking ID 665f1c2ab9e1d2a3b4c5d6e7",
		"Trail Runner (mountain)",
		"3 day(s)",
		"Jun 9, 16:00 UTC",
	} {
		if !strings.Contains(customer.Body, want) {
			t.Errorf("customer body missing %q:\n%s", want, customer.Body)
		}
	}
	if !strings.Contains(customer.Subject, "PAYMENT REQUIRED") {
		t.Errorf("customer subject = %q", customer.Subject)
	}

	for _, want := range []string{"+19025550123", "https://rentabike.example/admin"} {
		if !strings.Contains(admin.Body, want) {
			t.Errorf("admin body missing %q", want)
		}
	}
}

func TestRender_TimedBookingDaysMatchCharge(t *testing.T) {
	tests := []struct {
		name            string
		start, end      string
		pickup, dropoff string
		wantDays        string
	}{
		{name: "dropoff earlier than pickup", start: "2025-06-10", end: "2025-06-12", pickup: "10:00", dropoff: "09:00", wantDays: "3 day(s)"},
		{name: "same day short rental", start: "2025-06-10", end: "2025-06-10", pickup: "10:00", dropoff: "12:00", wantDays: "1 day(s)"},
		{name: "whole days", start: "2025-06-10", end: "2025-06-13", wantDays: "4 day(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := lifecycle.Price(tt.start, tt.end, tt.pickup, tt.dropoff, 45)
			if err != nil {
				t.Fatalf("Price() error: %v", err)
			}

			event := testEvent(model.KindConfirmation)
			event.Booking.StartDate = tt.start
			event.Booking.EndDate = tt.end
			event.Booking.PickupTime = tt.pickup
			event.Booking.DropoffTime = tt.dropoff
			event.Booking.DurationHours = quote.DurationHours
			event.Booking.TotalCost = quote.TotalCost

			customer, _, err := Render(event, testShop())
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if !strings.Contains(customer.Body, tt.wantDays) {
				t.Errorf("body should state %q for %d charged day(s):\n%s", tt.wantDays, quote.Days, customer.Body)
			}
		})
	}
}

func TestRender_StatusUpdate(t *testing.T) {
	tests := []struct {
		status model.BookingStatus
		want   string
	}{
		{status: model.StatusConfirmed, want: "Payment received"},
		{status: model.StatusCancelled, want: "was cancelled"},
		{status: model.StatusCompleted, want: "Thanks for riding"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			event := testEvent(model.KindStatusUpdate)
			event.Booking.Status = tt.status
			event.PreviousStatus = model.StatusPending

			customer, admin, err := Render(event, testShop())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(customer.Body, tt.want) {
				t.Errorf("customer body missing %q:\n%s", tt.want, customer.Body)
			}
			if !strings.Contains(admin.Body, "PENDING -> "+strings.ToUpper(string(tt.status))) {
				t.Errorf("admin body missing transition:\n%s", admin.Body)
			}
		})
	}
}

func TestRender_MissingBikeAndUnknownKind(t *testing.T) {
	event := testEvent(model.KindConfirmation)
	event.Bike = nil
	customer, _, err := Render(event, testShop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(customer.Body, "your bike") {
		t.Errorf("expected placeholder bike name")
	}

	event.Kind = "reminder"
	if _, _, err := Render(event, testShop()); err == nil {
		t.Error("expected error for unknown kind")
	}
}
