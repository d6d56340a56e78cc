// Package templates renders the plain-text emails sent for booking
// lifecycle events: one for the customer and one copy for the shop admin.
package templates

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"rentabike/internal/bookings/availability"
	"rentabike/pkg/model"
)

type Email struct {
	Subject string
	Body    string
}

// Shop holds the business details printed in every email.
type Shop struct {
	Name         string
	PaymentEmail string
	DashboardURL string
	Location     *time.Location
}

type data struct {
	Shop     Shop
	Booking  model.Booking
	Bike     model.BikeSummary
	Previous model.BookingStatus
	Days     int
	Deadline string
	Updated  string
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"upper": func(s model.BookingStatus) string { return strings.ToUpper(string(s)) },
	"orDash": func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	},
}

var (
	customerConfirmation = template.Must(template.New("customer_confirmation").Funcs(funcs).Parse(`Hi {{.Booking.CustomerName}},

Thank you for choosing {{.Shop.Name}}! Your booking request has been received and is held pending payment.

PAYMENT REQUIRED{{if .Deadline}} BY {{.Deadline}}{{end}}
Your booking is cancelled if payment is not received in time.

E-transfer instructions
  Send to: {{.Shop.PaymentEmail}}
  Amount:  {{money .Booking.TotalCost}}
  Message: Booking ID {{.Booking.ID}}

Booking details
  Booking ID: {{.Booking.ID}}
  Bike:       {{.Bike.Name}} ({{.Bike.Type}})
  Start:      {{.Booking.StartDate}} {{orDash .Booking.PickupTime}}
  End:        {{.Booking.EndDate}} {{orDash .Booking.DropoffTime}}
  Duration:   {{.Days}} day(s)
  Total:      {{money .Booking.TotalCost}}
  Status:     PENDING PAYMENT
{{- if .Booking.SpecialRequests}}
  Requests:   {{.Booking.SpecialRequests}}
{{- end}}

Once payment is received we confirm your booking and send pickup instructions.
Please bring valid ID for pickup.

{{.Shop.Name}}
`))

	adminConfirmation = template.Must(template.New("admin_confirmation").Funcs(funcs).Parse(`New booking, payment pending.

Customer
  Name:  {{.Booking.CustomerName}}
  Email: {{.Booking.CustomerEmail}}
  Phone: {{.Booking.CustomerPhone}}

Booking
  Booking ID: {{.Booking.ID}}
  Bike:       {{.Bike.Name}} ({{.Bike.Type}})
  Start:      {{.Booking.StartDate}} {{orDash .Booking.PickupTime}}
  End:        {{.Booking.EndDate}} {{orDash .Booking.DropoffTime}}
  Duration:   {{.Days}} day(s)
  Total:      {{money .Booking.TotalCost}}
  Status:     {{.Booking.Status}}
{{- if .Booking.SpecialRequests}}
  Requests:   {{.Booking.SpecialRequests}}
{{- end}}
{{if .Deadline}}
Held until {{.Deadline}} pending e-transfer to {{.Shop.PaymentEmail}}.
{{- end}}
Action required: confirm the booking once payment arrives.
{{if .Shop.DashboardURL}}
Manage it at {{.Shop.DashboardURL}}
{{- end}}
`))

	customerStatusUpdate = template.Must(template.New("customer_status_update").Funcs(funcs).Parse(`Hi {{.Booking.CustomerName}},

Your booking {{.Booking.ID}} for {{.Bike.Name}} is now {{upper .Booking.Status}}.
{{if eq .Booking.Status "confirmed"}}
Payment received, thank you. Your bike is reserved:
  Pickup:  {{.Booking.StartDate}} {{orDash .Booking.PickupTime}}
  Return:  {{.Booking.EndDate}} {{orDash .Booking.DropoffTime}}
Please bring valid ID for pickup.
{{- else if eq .Booking.Status "cancelled"}}
The booking was cancelled. This usually means payment was not received in time.
Reply to this email if you think this is a mistake.
{{- else if eq .Booking.Status "completed"}}
Thanks for riding with us. We hope to see you again.
{{- end}}

{{.Shop.Name}}
`))

	adminStatusUpdate = template.Must(template.New("admin_status_update").Funcs(funcs).Parse(`Booking status updated: {{upper .Previous}} -> {{upper .Booking.Status}}

  Booking ID: {{.Booking.ID}}
  Customer:   {{.Booking.CustomerName}} ({{.Booking.CustomerEmail}})
  Bike:       {{.Bike.Name}} ({{.Bike.Type}})
  Dates:      {{.Booking.StartDate}} to {{.Booking.EndDate}}
  Updated:    {{.Updated}}
{{if .Shop.DashboardURL}}
View it at {{.Shop.DashboardURL}}
{{- end}}
`))
)

// Render builds the customer and admin emails for one event.
func Render(event *model.BookingEvent, shop Shop) (customer Email, admin Email, err error) {
	if shop.Location == nil {
		shop.Location = time.UTC
	}

	d := data{
		Shop:     shop,
		Booking:  event.Booking,
		Previous: event.PreviousStatus,
		Days:     rentalDays(&event.Booking),
		Updated:  event.OccurredAt.In(shop.Location).Format("2006-01-02 15:04 MST"),
	}
	if event.Bike != nil {
		d.Bike = *event.Bike
	} else {
		d.Bike = model.BikeSummary{ID: event.Booking.BikeID, Name: "your bike"}
	}
	if event.HoldExpiresAt != nil {
		d.Deadline = event.HoldExpiresAt.In(shop.Location).Format("Jan 2, 15:04 MST")
	}

	switch event.Kind {
	case model.KindConfirmation:
		customer.Subject = fmt.Sprintf("PAYMENT REQUIRED - Booking %s | %s", event.Booking.ID, shop.Name)
		admin.Subject = fmt.Sprintf("New Booking (Payment Pending): %s - %s", event.Booking.CustomerName, d.Bike.Name)
		if customer.Body, err = execute(customerConfirmation, d); err != nil {
			return Email{}, Email{}, err
		}
		if admin.Body, err = execute(adminConfirmation, d); err != nil {
			return Email{}, Email{}, err
		}
	case model.KindStatusUpdate:
		status := strings.ToUpper(string(event.Booking.Status))
		customer.Subject = fmt.Sprintf("Booking %s - %s | %s", status, d.Bike.Name, shop.Name)
		admin.Subject = fmt.Sprintf("Booking Status Updated: %s - %s", event.Booking.CustomerName, status)
		if customer.Body, err = execute(customerStatusUpdate, d); err != nil {
			return Email{}, Email{}, err
		}
		if admin.Body, err = execute(adminStatusUpdate, d); err != nil {
			return Email{}, Email{}, err
		}
	default:
		return Email{}, Email{}, fmt.Errorf("unknown notification kind %q", event.Kind)
	}
	return customer, admin, nil
}

func execute(t *template.Template, d data) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// rentalDays is the number of days charged: every calendar day from start
// through end, matching the quote.
func rentalDays(b *model.Booking) int {
	days, err := availability.InclusiveDays(b.StartDate, b.EndDate)
	if err != nil || days < 1 {
		days = int(math.Ceil(b.DurationHours / 24))
	}
	if days < 1 {
		return 1
	}
	return days
}
