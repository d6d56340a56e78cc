package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeFeatures(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "trims and removes duplicates",
			input: []string{" Front basket ", "Front   basket", "Lights"},
			want:  []string{"Front basket", "Lights"},
		},
		{
			name:  "drops empty values",
			input: []string{"", "  ", "Bell"},
			want:  []string{"Bell"},
		},
		{
			name:  "nil input gives empty slice",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeFeatures(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeFeatures(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeBikeType(t *testing.T) {
	if got := NormalizeBikeType("  City   Cruiser "); got != "city cruiser" {
		t.Errorf("NormalizeBikeType() = %q, want %q", got, "city cruiser")
	}
}
