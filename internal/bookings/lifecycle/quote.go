package lifecycle

import (
	"math"

	"rentabike/internal/bookings/availability"
)

type Quote struct {
	Days          int
	DurationHours float64
	TotalCost     float64
}

// Price charges the daily rate for every calendar day touched. Duration is
// the real pickup-to-dropoff span when both times are known, otherwise
// whole days.
func Price(startDate, endDate, pickupTime, dropoffTime string, dailyRate float64) (Quote, error) {
	days, err := availability.InclusiveDays(startDate, endDate)
	if err != nil {
		return Quote{}, err
	}

	hours := float64(days * 24)
	if pickupTime != "" && dropoffTime != "" {
		iv, err := availability.NewInterval(startDate, endDate, pickupTime, dropoffTime)
		if err != nil {
			return Quote{}, err
		}
		hours = iv.Duration().Hours()
	}

	return Quote{
		Days:          days,
		DurationHours: roundTo(hours, 2),
		TotalCost:     roundTo(float64(days)*dailyRate, 2),
	}, nil
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
