package validator

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"rentabike/pkg/clock"
	"rentabike/pkg/logger"
	"rentabike/pkg/model"
)

func newTestValidator(t *testing.T, now time.Time) *BookingValidator {
	t.Helper()
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	loc, err := time.LoadLocation("America/Halifax")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	return NewBookingValidator(log, clock.NewFixed(now), loc)
}

func floatPtr(v float64) *float64 { return &v }

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		BikeID:        "665f1c2e8b3e4a0012345678",
		CustomerName:  "Anne Shirley",
		CustomerEmail: "anne@example.com",
		CustomerPhone: "+19025550123",
		StartDate:     "2025-06-10",
		EndDate:       "2025-06-12",
		DurationHours: floatPtr(72),
		TotalCost:     floatPtr(135),
	}
}

func reasonOf(t *testing.T, err error) *RequestError {
	t.Helper()
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %T: %v", err, err)
	}
	return reqErr
}

// 2025-06-09 10:00 in Halifax.
var halifaxMorning = time.Date(2025, 6, 9, 13, 0, 0, 0, time.UTC)

func TestValidate(t *testing.T) {
	v := newTestValidator(t, halifaxMorning)

	tests := []struct {
		name       string
		mutate     func(r *model.BookingRequest)
		wantReason string
	}{
		{
			name:   "valid request",
			mutate: func(r *model.BookingRequest) {},
		},
		{
			name: "valid with times",
			mutate: func(r *model.BookingRequest) {
				r.PickupTime = "09:00"
				r.DropoffTime = "17:00"
			},
		},
		{
			name: "same-day rental allowed",
			mutate: func(r *model.BookingRequest) {
				r.StartDate = "2025-06-10"
				r.EndDate = "2025-06-10"
			},
		},
		{
			name: "start today allowed",
			mutate: func(r *model.BookingRequest) {
				r.StartDate = "2025-06-09"
			},
		},
		{
			name: "invalid email",
			mutate: func(r *model.BookingRequest) {
				r.CustomerEmail = "anne.example.com"
			},
			wantReason: ReasonInvalidEmail,
		},
		{
			name: "email without tld",
			mutate: func(r *model.BookingRequest) {
				r.CustomerEmail = "anne@example"
			},
			wantReason: ReasonInvalidEmail,
		},
		{
			name: "pickup not 24-hour",
			mutate: func(r *model.BookingRequest) {
				r.PickupTime = "9am"
			},
			wantReason: ReasonInvalidTime,
		},
		{
			name: "dropoff hour out of range",
			mutate: func(r *model.BookingRequest) {
				r.DropoffTime = "24:00"
			},
			wantReason: ReasonInvalidTime,
		},
		{
			name: "bad date",
			mutate: func(r *model.BookingRequest) {
				r.StartDate = "2025-02-30"
			},
			wantReason: ReasonInvalidDate,
		},
		{
			name: "start yesterday",
			mutate: func(r *model.BookingRequest) {
				r.StartDate = "2025-06-08"
				r.EndDate = "2025-06-20"
			},
			wantReason: ReasonStartInPast,
		},
		{
			name: "start yesterday with end before start still reports past",
			mutate: func(r *model.BookingRequest) {
				r.StartDate = "2025-06-08"
				r.EndDate = "2025-06-01"
			},
			wantReason: ReasonStartInPast,
		},
		{
			name: "end before start",
			mutate: func(r *model.BookingRequest) {
				r.StartDate = "2025-06-12"
				r.EndDate = "2025-06-10"
			},
			wantReason: ReasonEndBeforeStart,
		},
		{
			name: "same day dropoff before pickup",
			mutate: func(r *model.BookingRequest) {
				r.EndDate = r.StartDate
				r.PickupTime = "14:00"
				r.DropoffTime = "10:00"
			},
			wantReason: ReasonEndBeforeStart,
		},
		{
			name: "special requests too long",
			mutate: func(r *model.BookingRequest) {
				b := make([]byte, 1001)
				for i := range b {
					b[i] = 'a'
				}
				r.SpecialRequests = string(b)
			},
			wantReason: ReasonInvalidField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			err := v.Validate(req)
			if tt.wantReason == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if got := reasonOf(t, err).Reason; got != tt.wantReason {
				t.Errorf("reason = %q, want %q", got, tt.wantReason)
			}
		})
	}
}

func TestValidate_MissingFields(t *testing.T) {
	v := newTestValidator(t, halifaxMorning)

	req := &model.BookingRequest{
		BikeID:        "665f1c2e8b3e4a0012345678",
		CustomerEmail: "not-an-email",
		StartDate:     "2025-06-10",
	}
	reqErr := reasonOf(t, v.Validate(req))

	if reqErr.Reason != ReasonMissingFields {
		t.Fatalf("reason = %q, want %q", reqErr.Reason, ReasonMissingFields)
	}
	want := []string{"customer_name", "customer_phone", "end_date", "duration_hours", "total_cost"}
	if !reflect.DeepEqual(reqErr.MissingFields, want) {
		t.Errorf("missing fields = %v, want %v", reqErr.MissingFields, want)
	}
}

// Pricing fields only need to be present; the service recomputes both, so a
// client-side zero is not treated as missing.
func TestValidate_ZeroPricingFieldsArePresent(t *testing.T) {
	v := newTestValidator(t, halifaxMorning)

	tests := []struct {
		name     string
		duration *float64
		cost     *float64
		wantErr  bool
	}{
		{"both zero", floatPtr(0), floatPtr(0), false},
		{"zero cost", floatPtr(72), floatPtr(0), false},
		{"duration absent", nil, floatPtr(0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.DurationHours = tt.duration
			req.TotalCost = tt.cost

			err := v.Validate(req)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			reqErr := reasonOf(t, err)
			if !reflect.DeepEqual(reqErr.MissingFields, []string{"duration_hours"}) {
				t.Errorf("missing fields = %v, want [duration_hours]", reqErr.MissingFields)
			}
		})
	}
}

func TestValidate_TodayUsesBusinessTimeZone(t *testing.T) {
	// 02:00 UTC on the 10th is still the evening of the 9th in Halifax.
	v := newTestValidator(t, time.Date(2025, 6, 10, 2, 0, 0, 0, time.UTC))

	if got := v.Today(); got != "2025-06-09" {
		t.Fatalf("Today() = %s, want 2025-06-09", got)
	}

	req := validRequest()
	req.StartDate = "2025-06-09"
	req.EndDate = "2025-06-09"
	if err := v.Validate(req); err != nil {
		t.Errorf("booking for local today should pass, got %v", err)
	}
}

func TestValidateStatus(t *testing.T) {
	v := newTestValidator(t, halifaxMorning)

	tests := []struct {
		in         string
		want       model.BookingStatus
		wantReason string
	}{
		{in: "confirmed", want: model.StatusConfirmed},
		{in: "cancelled", want: model.StatusCancelled},
		{in: "archived", wantReason: ReasonInvalidStatus},
		{in: "", wantReason: ReasonMissingFields},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := v.ValidateStatus(&model.StatusUpdate{Status: tt.in})
			if tt.wantReason != "" {
				if r := reasonOf(t, err).Reason; r != tt.wantReason {
					t.Errorf("reason = %q, want %q", r, tt.wantReason)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateTimes(t *testing.T) {
	v := newTestValidator(t, halifaxMorning)
	sameDay := &model.Booking{StartDate: "2025-06-10", EndDate: "2025-06-10"}

	if err := v.ValidateTimes(&model.TimesUpdate{PickupTime: "09:00", DropoffTime: "17:00"}, sameDay); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := v.ValidateTimes(&model.TimesUpdate{PickupTime: "17:00", DropoffTime: "09:00"}, sameDay)
	if r := reasonOf(t, err).Reason; r != ReasonEndBeforeStart {
		t.Errorf("reason = %q, want %q", r, ReasonEndBeforeStart)
	}

	err = v.ValidateTimes(&model.TimesUpdate{PickupTime: "9:00", DropoffTime: "17:00"}, sameDay)
	if r := reasonOf(t, err).Reason; r != ReasonInvalidTime {
		t.Errorf("reason = %q, want %q", r, ReasonInvalidTime)
	}

	err = v.ValidateTimes(&model.TimesUpdate{PickupTime: "09:00"}, sameDay)
	if r := reasonOf(t, err).Reason; r != ReasonMissingFields {
		t.Errorf("reason = %q, want %q", r, ReasonMissingFields)
	}
}
