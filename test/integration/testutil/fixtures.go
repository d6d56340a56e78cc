package testutil

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentabike/pkg/model"
)

const BikesCollection = "Bikes"

type BikeBuilder struct {
	bike model.Bike
}

func NewBikeBuilder() *BikeBuilder {
	return &BikeBuilder{
		bike: model.Bike{
			Name:        "Test Bike",
			Type:        "hybrid",
			Description: "Integration test bike",
			PricePerDay: 45,
			ImageURL:    "https://example.com/bike.jpg",
			Available:   true,
			Features:    []string{},
			CreatedAt:   time.Now().UTC(),
		},
	}
}

func (b *BikeBuilder) WithName(name string) *BikeBuilder {
	b.bike.Name = name
	return b
}

func (b *BikeBuilder) WithPricePerDay(price float64) *BikeBuilder {
	b.bike.PricePerDay = price
	return b
}

func (b *BikeBuilder) Unavailable() *BikeBuilder {
	b.bike.Available = false
	return b
}

// Insert stores the bike directly and returns its id.
func (b *BikeBuilder) Insert(t *testing.T, s *Store) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := s.db.Collection(BikesCollection).InsertOne(ctx, b.bike)
	if err != nil {
		t.Fatalf("failed to insert bike: %v", err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex()
}

// BookingRequest returns a valid create payload for bikeID covering
// start..end. Duration and cost are placeholders; the service recomputes them.
func BookingRequest(bikeID string, start, end time.Time) map[string]any {
	return map[string]any{
		"bike_id":        bikeID,
		"customer_name":  "Jane Doe",
		"customer_email": "jane@example.com",
		"customer_phone": "+1 902 555 0123",
		"start_date":     start.Format(model.DateLayout),
		"end_date":       end.Format(model.DateLayout),
		"pickup_time":    "09:00",
		"dropoff_time":   "17:00",
		"duration_hours": 1,
		"total_cost":     1,
	}
}
