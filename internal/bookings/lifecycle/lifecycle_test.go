package lifecycle

import (
	"testing"
	"time"

	"rentabike/pkg/model"
)

func TestIsPendingExpired(t *testing.T) {
	created := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status model.BookingStatus
		now    time.Time
		want   bool
	}{
		{"pending just inside hold", model.StatusPending, created.Add(2*time.Hour + 59*time.Minute), false},
		{"pending exactly at deadline", model.StatusPending, created.Add(3 * time.Hour), false},
		{"pending just past hold", model.StatusPending, created.Add(3*time.Hour + time.Minute), true},
		{"confirmed never expires", model.StatusConfirmed, created.Add(72 * time.Hour), false},
		{"completed never expires", model.StatusCompleted, created.Add(72 * time.Hour), false},
		{"cancelled never expires", model.StatusCancelled, created.Add(72 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &model.Booking{Status: tt.status, CreatedAt: created}
			if got := IsPendingExpired(b, tt.now); got != tt.want {
				t.Errorf("IsPendingExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolicy_TimeRemainingAndDescribe(t *testing.T) {
	created := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	policy := NewPolicy(0)
	b := &model.Booking{ID: "b1", Status: model.StatusPending, CreatedAt: created}

	if got := policy.TimeRemaining(b, created.Add(time.Hour)); got != 2*time.Hour {
		t.Errorf("TimeRemaining() = %v, want 2h", got)
	}
	if got := policy.TimeRemaining(b, created.Add(4*time.Hour)); got != 0 {
		t.Errorf("TimeRemaining() after expiry = %v, want 0", got)
	}

	details := policy.Describe(b, &model.BikeSummary{ID: "bike-1"}, created.Add(4*time.Hour))
	if !details.Expired {
		t.Error("expected Expired to be derived as true")
	}
	if details.ExpiresAt == nil || !details.ExpiresAt.Equal(created.Add(3*time.Hour)) {
		t.Errorf("unexpected ExpiresAt: %v", details.ExpiresAt)
	}

	confirmed := &model.Booking{Status: model.StatusConfirmed, CreatedAt: created}
	details = policy.Describe(confirmed, nil, created.Add(4*time.Hour))
	if details.Expired || details.ExpiresAt != nil {
		t.Errorf("confirmed booking should carry no expiry, got %+v", details)
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name          string
		start, end    string
		pickup, drop  string
		rate          float64
		wantDays      int
		wantHours     float64
		wantTotalCost float64
	}{
		{"three whole days", "2025-06-10", "2025-06-12", "", "", 45, 3, 72, 135},
		{"same day without times is one day", "2025-06-10", "2025-06-10", "", "", 45, 1, 24, 45},
		{"same day with times uses real span", "2025-06-10", "2025-06-10", "09:00", "17:00", 45, 1, 8, 45},
		{"multi-day with times", "2025-06-10", "2025-06-11", "09:00", "17:30", 40, 2, 32.5, 80},
		{"only pickup known falls back to days", "2025-06-10", "2025-06-11", "09:00", "", 40, 2, 48, 80},
		{"cents are rounded", "2025-06-10", "2025-06-12", "", "", 19.999, 3, 72, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Price(tt.start, tt.end, tt.pickup, tt.drop, tt.rate)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Days != tt.wantDays {
				t.Errorf("Days = %d, want %d", q.Days, tt.wantDays)
			}
			if q.DurationHours != tt.wantHours {
				t.Errorf("DurationHours = %v, want %v", q.DurationHours, tt.wantHours)
			}
			if q.TotalCost != tt.wantTotalCost {
				t.Errorf("TotalCost = %v, want %v", q.TotalCost, tt.wantTotalCost)
			}
		})
	}
}
