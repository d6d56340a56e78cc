package model

import "time"

type Bike struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Type         string    `json:"type" bson:"type"`
	Description  string    `json:"description" bson:"description"`
	PricePerHour float64   `json:"price_per_hour" bson:"price_per_hour"`
	PricePerDay  float64   `json:"price_per_day" bson:"price_per_day"`
	ImageURL     string    `json:"image_url" bson:"image_url"`
	Available    bool      `json:"available" bson:"available"`
	Features     []string  `json:"features" bson:"features"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

func (b *Bike) Summary() *BikeSummary {
	if b == nil {
		return nil
	}
	return &BikeSummary{
		ID:          b.ID,
		Name:        b.Name,
		Type:        b.Type,
		ImageURL:    b.ImageURL,
		PricePerDay: b.PricePerDay,
	}
}

type BikeSummary struct {
	ID          string  `json:"id" bson:"id"`
	Name        string  `json:"name" bson:"name"`
	Type        string  `json:"type" bson:"type"`
	ImageURL    string  `json:"image_url,omitempty" bson:"image_url,omitempty"`
	PricePerDay float64 `json:"price_per_day" bson:"price_per_day"`
}

type BikeRequest struct {
	Name         string   `json:"name" validate:"required,min=2,max=100"`
	Type         string   `json:"type" validate:"required,max=50"`
	Description  string   `json:"description" validate:"required,max=2000"`
	PricePerHour *float64 `json:"price_per_hour,omitempty" validate:"omitempty,gte=0"`
	PricePerDay  *float64 `json:"price_per_day" validate:"required,gte=0"`
	ImageURL     string   `json:"image_url" validate:"required,url"`
	Available    *bool    `json:"available,omitempty"`
	Features     []string `json:"features,omitempty" validate:"omitempty,max=20,dive,required,max=100"`
}

type BikeUpdate struct {
	Name         *string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Type         *string   `json:"type,omitempty" validate:"omitempty,max=50"`
	Description  *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	PricePerHour *float64  `json:"price_per_hour,omitempty" validate:"omitempty,gte=0"`
	PricePerDay  *float64  `json:"price_per_day,omitempty" validate:"omitempty,gte=0"`
	ImageURL     *string   `json:"image_url,omitempty" validate:"omitempty,url"`
	Available    *bool     `json:"available,omitempty"`
	Features     *[]string `json:"features,omitempty" validate:"omitempty,max=20,dive,required,max=100"`
}

type BikeFilter struct {
	AvailableOnly bool
}

type BikeList struct {
	Bikes     []*Bike   `json:"bikes"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}
