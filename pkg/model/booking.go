package model

import (
	"time"
)

// Calendar layouts shared by requests, storage and the conflict checker.
// Dates and times are wall-clock values with no zone attached.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Booking struct {
	ID              string        `json:"id,omitempty" bson:"_id,omitempty"`
	BikeID          string        `json:"bike_id" bson:"bike_id"`
	CustomerName    string        `json:"customer_name" bson:"customer_name"`
	CustomerEmail   string        `json:"customer_email" bson:"customer_email"`
	CustomerPhone   string        `json:"customer_phone" bson:"customer_phone"`
	StartDate       string        `json:"start_date" bson:"start_date"`
	EndDate         string        `json:"end_date" bson:"end_date"`
	PickupTime      string        `json:"pickup_time,omitempty" bson:"pickup_time,omitempty"`
	DropoffTime     string        `json:"dropoff_time,omitempty" bson:"dropoff_time,omitempty"`
	DurationHours   float64       `json:"duration_hours" bson:"duration_hours"`
	TotalCost       float64       `json:"total_cost" bson:"total_cost"`
	Status          BookingStatus `json:"status" bson:"status"`
	SpecialRequests string        `json:"special_requests,omitempty" bson:"special_requests,omitempty"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// BookingRequest is the customer-facing create payload. DurationHours and
// TotalCost must be present but are recomputed server-side.
type BookingRequest struct {
	BikeID          string   `json:"bike_id" validate:"required"`
	CustomerName    string   `json:"customer_name" validate:"required"`
	CustomerEmail   string   `json:"customer_email" validate:"required"`
	CustomerPhone   string   `json:"customer_phone" validate:"required"`
	StartDate       string   `json:"start_date" validate:"required"`
	EndDate         string   `json:"end_date" validate:"required"`
	DurationHours   *float64 `json:"duration_hours" validate:"required"`
	TotalCost       *float64 `json:"total_cost" validate:"required"`
	PickupTime      string   `json:"pickup_time,omitempty"`
	DropoffTime     string   `json:"dropoff_time,omitempty"`
	SpecialRequests string   `json:"special_requests,omitempty" validate:"omitempty,max=1000"`
}

type StatusUpdate struct {
	Status string `json:"status" validate:"required"`
}

type TimesUpdate struct {
	PickupTime  string `json:"pickup_time" validate:"required"`
	DropoffTime string `json:"dropoff_time" validate:"required"`
}

// BookingDetails is a booking as shown to callers: joined with its bike and
// carrying the hold expiry derived at read time.
type BookingDetails struct {
	*Booking
	Bike      *BikeSummary `json:"bike,omitempty"`
	Expired   bool         `json:"expired"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

type BookingFilter struct {
	Status BookingStatus
	BikeID string
}

type BookedDates struct {
	BikeID      string   `json:"bike_id"`
	BookedDates []string `json:"booked_dates"`
	Count       int      `json:"count"`
}
