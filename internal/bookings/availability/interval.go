package availability

import (
	"fmt"
	"time"

	"rentabike/pkg/model"
)

// Whole-day bounds substituted when a booking carries no time of day.
const (
	DayStart = "00:00"
	DayEnd   = "23:59"
)

// Interval is a closed span of wall-clock instants. Values are parsed in UTC
// purely as a zone-free carrier; no conversion ever happens.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds the effective interval for a date range, defaulting a
// missing pickup to the start of the first day and a missing dropoff to the
// end of the last.
func NewInterval(startDate, endDate, pickupTime, dropoffTime string) (Interval, error) {
	if pickupTime == "" {
		pickupTime = DayStart
	}
	if dropoffTime == "" {
		dropoffTime = DayEnd
	}

	start, err := parseInstant(startDate, pickupTime)
	if err != nil {
		return Interval{}, fmt.Errorf("start: %w", err)
	}
	end, err := parseInstant(endDate, dropoffTime)
	if err != nil {
		return Interval{}, fmt.Errorf("end: %w", err)
	}
	return Interval{Start: start, End: end}, nil
}

func ForBooking(b *model.Booking) (Interval, error) {
	return NewInterval(b.StartDate, b.EndDate, b.PickupTime, b.DropoffTime)
}

// Overlaps is the inclusive intersection test: touching endpoints conflict.
func (i Interval) Overlaps(other Interval) bool {
	return !i.Start.After(other.End) && !other.Start.After(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func parseInstant(date, clock string) (time.Time, error) {
	return time.ParseInLocation(model.DateLayout+" "+model.TimeLayout, date+" "+clock, time.UTC)
}

// ParseDate parses a calendar date with no zone attached.
func ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation(model.DateLayout, date, time.UTC)
}

// InclusiveDays counts calendar days from start through end, both included.
// It returns 0 when end precedes start.
func InclusiveDays(startDate, endDate string) (int, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return 0, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return 0, err
	}
	if end.Before(start) {
		return 0, nil
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

// ExpandDays lists every calendar day a booking covers, inclusive.
func ExpandDays(startDate, endDate string) ([]string, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return nil, err
	}

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(model.DateLayout))
	}
	return days, nil
}
