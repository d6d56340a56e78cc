package validator

import (
	"errors"
	"testing"

	"rentabike/pkg/model"
)

func ptr[T any](v T) *T { return &v }

func validRequest() *model.BikeRequest {
	return &model.BikeRequest{
		Name:        "Trail Runner",
		Type:        "mountain",
		Description: "Full suspension, 29er",
		PricePerDay: ptr(45.0),
		ImageURL:    "https://cdn.example.com/bikes/trail.jpg",
		Features:    []string{"hydraulic brakes", "dropper post"},
	}
}

func TestValidateCreate(t *testing.T) {
	v := NewBikeValidator()

	tests := []struct {
		name        string
		mutate      func(r *model.BikeRequest)
		wantMissing []string
		wantField   string
	}{
		{name: "valid", mutate: func(r *model.BikeRequest) {}},
		{name: "free bike is allowed", mutate: func(r *model.BikeRequest) { r.PricePerDay = ptr(0.0) }},
		{
			name: "missing fields reported together",
			mutate: func(r *model.BikeRequest) {
				r.Name = ""
				r.PricePerDay = nil
				r.ImageURL = ""
			},
			wantMissing: []string{"name", "price_per_day", "image_url"},
		},
		{name: "negative price", mutate: func(r *model.BikeRequest) { r.PricePerDay = ptr(-1.0) }, wantField: "price_per_day"},
		{name: "bad url", mutate: func(r *model.BikeRequest) { r.ImageURL = "not a url" }, wantField: "image_url"},
		{name: "empty feature", mutate: func(r *model.BikeRequest) { r.Features = []string{"ok", ""} }, wantField: "features[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			err := v.ValidateCreate(req)

			switch {
			case tt.wantMissing != nil:
				var missing *MissingFieldsError
				if !errors.As(err, &missing) {
					t.Fatalf("expected MissingFieldsError, got %v", err)
				}
				if len(missing.Fields) != len(tt.wantMissing) {
					t.Fatalf("missing = %v, want %v", missing.Fields, tt.wantMissing)
				}
				for i := range tt.wantMissing {
					if missing.Fields[i] != tt.wantMissing[i] {
						t.Errorf("missing[%d] = %s, want %s", i, missing.Fields[i], tt.wantMissing[i])
					}
				}
			case tt.wantField != "":
				var fieldErrs ValidationErrors
				if !errors.As(err, &fieldErrs) {
					t.Fatalf("expected ValidationErrors, got %v", err)
				}
				if fieldErrs[0].Field != tt.wantField {
					t.Errorf("field = %s, want %s", fieldErrs[0].Field, tt.wantField)
				}
			default:
				if err != nil {
					t.Errorf("unexpected error %v", err)
				}
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := NewBikeValidator()

	if err := v.ValidateUpdate(&model.BikeUpdate{Available: ptr(false)}); err != nil {
		t.Errorf("partial update should pass, got %v", err)
	}
	if err := v.ValidateUpdate(&model.BikeUpdate{PricePerDay: ptr(-5.0)}); err == nil {
		t.Error("negative price should fail")
	}
	if err := v.ValidateUpdate(&model.BikeUpdate{Name: ptr("x")}); err == nil {
		t.Error("one-letter name should fail")
	}
}
