package availability

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"rentabike/pkg/model"
)

func booking(id, start, end, pickup, dropoff string, status model.BookingStatus) *model.Booking {
	return &model.Booking{
		ID:          id,
		BikeID:      "bike-1",
		StartDate:   start,
		EndDate:     end,
		PickupTime:  pickup,
		DropoffTime: dropoff,
		Status:      status,
	}
}

func mustInterval(t *testing.T, start, end, pickup, dropoff string) Interval {
	t.Helper()
	iv, err := NewInterval(start, end, pickup, dropoff)
	if err != nil {
		t.Fatalf("NewInterval(%s, %s, %s, %s): %v", start, end, pickup, dropoff, err)
	}
	return iv
}

func TestCheck_BoundaryAdjacency(t *testing.T) {
	tests := []struct {
		name         string
		existing     *model.Booking
		candidate    Interval
		wantConflict bool
	}{
		{
			name:         "timed handover same day does not conflict",
			existing:     booking("a", "2025-06-08", "2025-06-10", "09:00", "10:00", model.StatusConfirmed),
			candidate:    mustInterval(t, "2025-06-10", "2025-06-12", "14:00", "17:00"),
			wantConflict: false,
		},
		{
			name:         "whole-day bookings touching on the same day conflict",
			existing:     booking("a", "2025-06-08", "2025-06-10", "", "", model.StatusConfirmed),
			candidate:    mustInterval(t, "2025-06-10", "2025-06-12", "", ""),
			wantConflict: true,
		},
		{
			name:         "consecutive whole days do not conflict",
			existing:     booking("a", "2025-06-08", "2025-06-09", "", "", model.StatusConfirmed),
			candidate:    mustInterval(t, "2025-06-10", "2025-06-12", "", ""),
			wantConflict: false,
		},
		{
			name:         "legacy whole-day booking blocks a timed request on its last day",
			existing:     booking("a", "2025-06-08", "2025-06-10", "", "", model.StatusPending),
			candidate:    mustInterval(t, "2025-06-10", "2025-06-10", "18:00", "20:00"),
			wantConflict: true,
		},
		{
			name:         "exact instant handover conflicts",
			existing:     booking("a", "2025-06-10", "2025-06-10", "09:00", "12:00", model.StatusPending),
			candidate:    mustInterval(t, "2025-06-10", "2025-06-10", "12:00", "15:00"),
			wantConflict: true,
		},
		{
			name:         "same-day degenerate interval conflicts with containing span",
			existing:     booking("a", "2025-06-09", "2025-06-11", "", "", model.StatusConfirmed),
			candidate:    mustInterval(t, "2025-06-10", "2025-06-10", "", ""),
			wantConflict: true,
		},
		{
			name:         "cancelled booking never blocks",
			existing:     booking("a", "2025-06-10", "2025-06-12", "", "", model.StatusCancelled),
			candidate:    mustInterval(t, "2025-06-10", "2025-06-12", "", ""),
			wantConflict: false,
		},
		{
			name:         "completed booking never blocks",
			existing:     booking("a", "2025-06-10", "2025-06-12", "", "", model.StatusCompleted),
			candidate:    mustInterval(t, "2025-06-10", "2025-06-12", "", ""),
			wantConflict: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check(tt.candidate, []*model.Booking{tt.existing}, "")
			if got.HasConflict != tt.wantConflict {
				t.Fatalf("HasConflict = %v, want %v", got.HasConflict, tt.wantConflict)
			}
			if tt.wantConflict && got.Conflict != tt.existing {
				t.Errorf("expected conflicting booking %q, got %+v", tt.existing.ID, got.Conflict)
			}
		})
	}
}

func TestCheck_FirstConflictInIterationOrder(t *testing.T) {
	existing := []*model.Booking{
		booking("a", "2025-06-01", "2025-06-02", "", "", model.StatusConfirmed),
		booking("b", "2025-06-10", "2025-06-11", "", "", model.StatusPending),
		booking("c", "2025-06-11", "2025-06-12", "", "", model.StatusConfirmed),
	}
	got := Check(mustInterval(t, "2025-06-09", "2025-06-12", "", ""), existing, "")
	if !got.HasConflict || got.Conflict.ID != "b" {
		t.Fatalf("expected first conflict b, got %+v", got)
	}
}

func TestCheck_ExcludesOwnBooking(t *testing.T) {
	existing := []*model.Booking{
		booking("self", "2025-06-10", "2025-06-12", "", "", model.StatusConfirmed),
	}
	got := Check(mustInterval(t, "2025-06-10", "2025-06-12", "10:00", "16:00"), existing, "self")
	if got.HasConflict {
		t.Fatalf("a booking must not conflict with itself, got %+v", got)
	}
}

func TestCheck_UnparseableStoredBookingBlocks(t *testing.T) {
	existing := []*model.Booking{
		booking("broken", "10/06/2025", "2025-06-12", "", "", model.StatusConfirmed),
	}
	got := Check(mustInterval(t, "2025-07-01", "2025-07-02", "", ""), existing, "")
	if !got.HasConflict {
		t.Fatal("expected unparseable booking to be treated as blocking")
	}
}

// Random interval pairs, including many touching endpoints, compared against
// an integer-minute reference intersection.
func TestCheck_MatchesReferenceIntersection(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	times := []string{"", "00:00", "09:00", "10:00", "12:00", "14:00", "17:00", "23:59"}

	type span struct {
		start, end, pickup, dropoff string
	}
	randomSpan := func() span {
		startDay := rng.Intn(6)
		endDay := startDay + rng.Intn(3)
		pickup := times[rng.Intn(len(times))]
		dropoff := times[rng.Intn(len(times))]
		if startDay == endDay && pickup != "" && dropoff != "" && dropoff < pickup {
			pickup, dropoff = dropoff, pickup
		}
		return span{
			start:   base.AddDate(0, 0, startDay).Format(model.DateLayout),
			end:     base.AddDate(0, 0, endDay).Format(model.DateLayout),
			pickup:  pickup,
			dropoff: dropoff,
		}
	}
	minutes := func(date, clock, fallback string) int {
		if clock == "" {
			clock = fallback
		}
		ts, err := time.Parse(model.DateLayout+" "+model.TimeLayout, date+" "+clock)
		if err != nil {
			t.Fatalf("reference parse: %v", err)
		}
		return int(ts.Sub(base).Minutes())
	}

	for i := 0; i < 2000; i++ {
		a, b := randomSpan(), randomSpan()

		s1, e1 := minutes(a.start, a.pickup, "00:00"), minutes(a.end, a.dropoff, "23:59")
		s2, e2 := minutes(b.start, b.pickup, "00:00"), minutes(b.end, b.dropoff, "23:59")
		want := s1 <= e2 && s2 <= e1

		existing := booking("existing", b.start, b.end, b.pickup, b.dropoff, model.StatusConfirmed)
		got := Check(mustInterval(t, a.start, a.end, a.pickup, a.dropoff), []*model.Booking{existing}, "")

		if got.HasConflict != want {
			t.Fatalf("case %d: candidate %+v vs existing %+v: HasConflict = %v, want %v", i, a, b, got.HasConflict, want)
		}

		reverse := Check(mustInterval(t, b.start, b.end, b.pickup, b.dropoff),
			[]*model.Booking{booking("other", a.start, a.end, a.pickup, a.dropoff, model.StatusPending)}, "")
		if reverse.HasConflict != got.HasConflict {
			t.Fatalf("case %d: overlap must be symmetric", i)
		}
	}
}

func TestInclusiveDays(t *testing.T) {
	tests := []struct {
		start, end string
		want       int
	}{
		{"2025-06-10", "2025-06-12", 3},
		{"2025-06-10", "2025-06-10", 1},
		{"2025-06-12", "2025-06-10", 0},
		{"2024-02-28", "2024-03-01", 3},
		{"2025-03-08", "2025-03-10", 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s..%s", tt.start, tt.end), func(t *testing.T) {
			got, err := InclusiveDays(tt.start, tt.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("InclusiveDays() = %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := InclusiveDays("2025-13-01", "2025-06-10"); err == nil {
		t.Error("expected error for invalid date")
	}
}

func TestExpandDays(t *testing.T) {
	got, err := ExpandDays("2025-06-29", "2025-07-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"2025-06-29", "2025-06-30", "2025-07-01", "2025-07-02"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("day %d = %s, want %s", i, got[i], want[i])
		}
	}
}
