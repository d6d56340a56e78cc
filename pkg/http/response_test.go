package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "rentabike/pkg/errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "validation",
			err:        apperrors.Validation("Missing required fields", map[string]any{"missing_fields": []string{"bike_id"}}),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apperrors.CodeValidation,
			wantMsg:    "Missing required fields",
		},
		{
			name:       "conflict",
			err:        apperrors.Conflict("Bike is already booked for the selected dates"),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeConflict,
			wantMsg:    "Bike is already booked for the selected dates",
		},
		{
			name:       "bike unavailable",
			err:        apperrors.BikeUnavailable("b1"),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeBikeUnavailable,
			wantMsg:    "Bike is not available for booking",
		},
		{
			name:       "infrastructure",
			err:        apperrors.Infrastructure("Failed to load bookings", errors.New("dial tcp")),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apperrors.CodeInfrastructure,
			wantMsg:    "Failed to load bookings",
		},
		{
			name:       "plain error hides cause",
			err:        errors.New("secret driver detail"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.CodeInternal,
			wantMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := WriteError(rec, tt.err); err != nil {
				t.Fatalf("WriteError() returned %v", err)
			}

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if body.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", body.Error, tt.wantMsg)
			}
		})
	}
}

func TestWriteError_RetryAfterOnInfrastructure(t *testing.T) {
	rec := httptest.NewRecorder()
	_ = WriteError(rec, apperrors.Infrastructure("db down", nil))

	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header for infrastructure errors")
	}
}

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{"defaults", "", 10, 0, false},
		{"explicit", "limit=5&offset=20", 5, 20, false},
		{"limit capped", "limit=5000", 100, 0, false},
		{"negative offset", "offset=-3", 10, 0, false},
		{"bad limit", "limit=abc", 0, 0, true},
		{"bad offset", "offset=x", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/admin/bookings?"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(r)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Trek"}`))
	if err := DecodeJSON(r, &dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dst.Name != "Trek" {
		t.Errorf("name = %q, want Trek", dst.Name)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	err := DecodeJSON(r, &dst)
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	err = DecodeJSON(r, &dst)
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for empty body, got %v", err)
	}
}
