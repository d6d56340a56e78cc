//go:build integration

package bookings

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"rentabike/test/integration/testutil"
)

type bookingResponse struct {
	Data struct {
		ID            string  `json:"id"`
		BikeID        string  `json:"bike_id"`
		Status        string  `json:"status"`
		DurationHours float64 `json:"duration_hours"`
		TotalCost     float64 `json:"total_cost"`
		ExpiresAt     string  `json:"expires_at"`
	} `json:"data"`
}

func days(n int) time.Time {
	return time.Now().AddDate(0, 0, n)
}

func setup(t *testing.T) (*testutil.TestEnv, *testutil.Store, *testutil.Client) {
	t.Helper()
	env := testutil.NewTestEnv()
	store, client := env.Setup(t)
	t.Cleanup(func() { env.Cleanup(t, store) })
	return env, store, client
}

func TestCreateBooking(t *testing.T) {
	_, store, client := setup(t)
	bikeID := testutil.NewBikeBuilder().WithPricePerDay(45).Insert(t, store)

	resp := client.POST(t, "/api/v1/bookings", testutil.BookingRequest(bikeID, days(10), days(12)))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var created bookingResponse
	if err := resp.DecodeJSON(&created); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if created.Data.Status != "pending" {
		t.Errorf("status = %s, want pending", created.Data.Status)
	}
	if created.Data.DurationHours != 56 || created.Data.TotalCost != 135 {
		t.Errorf("expected server-side 56h / 135, got %vh / %v", created.Data.DurationHours, created.Data.TotalCost)
	}
	if created.Data.ExpiresAt == "" {
		t.Error("pending booking should carry expires_at")
	}
}

func TestCreateBooking_Conflict(t *testing.T) {
	_, store, client := setup(t)
	bikeID := testutil.NewBikeBuilder().Insert(t, store)

	first := client.POST(t, "/api/v1/bookings", testutil.BookingRequest(bikeID, days(20), days(22)))
	testutil.AssertStatusCode(t, first, http.StatusCreated)

	overlap := client.POST(t, "/api/v1/bookings", testutil.BookingRequest(bikeID, days(22), days(24)))
	testutil.AssertStatusCode(t, overlap, http.StatusConflict)
	if code := testutil.GetErrorCode(t, overlap); code != "CONFLICT" {
		t.Errorf("code = %s, want CONFLICT", code)
	}
	if details := testutil.GetErrorDetails(t, overlap); details["conflicting_booking_id"] == nil || details["bike_id"] != bikeID {
		t.Errorf("conflict should name the blocking booking, got %v", details)
	}

	adjacent := client.POST(t, "/api/v1/bookings", testutil.BookingRequest(bikeID, days(23), days(24)))
	testutil.AssertStatusCode(t, adjacent, http.StatusCreated)
}

func TestCreateBooking_Rejections(t *testing.T) {
	_, store, client := setup(t)
	bikeID := testutil.NewBikeBuilder().Insert(t, store)
	retiredID := testutil.NewBikeBuilder().Unavailable().Insert(t, store)

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantCode   string
	}{
		{name: "start in past", body: testutil.BookingRequest(bikeID, days(-2), days(1)), wantStatus: http.StatusUnprocessableEntity, wantCode: "VALIDATION_ERROR"},
		{name: "end before start", body: testutil.BookingRequest(bikeID, days(5), days(3)), wantStatus: http.StatusUnprocessableEntity, wantCode: "VALIDATION_ERROR"},
		{name: "unknown bike", body: testutil.BookingRequest("000000000000000000000000", days(5), days(6)), wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "unavailable bike", body: testutil.BookingRequest(retiredID, days(5), days(6)), wantStatus: http.StatusConflict, wantCode: "BIKE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := client.POST(t, "/api/v1/bookings", tt.body)
			testutil.AssertStatusCode(t, resp, tt.wantStatus)
			if code := testutil.GetErrorCode(t, resp); code != tt.wantCode {
				t.Errorf("code = %s, want %s", code, tt.wantCode)
			}
		})
	}
}

func TestConcurrentBookingCreation(t *testing.T) {
	_, store, client := setup(t)
	bikeID := testutil.NewBikeBuilder().Insert(t, store)

	const workers = 10
	var wg sync.WaitGroup
	statuses := make(chan int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := client.POSTWithHeaders(t, "/api/v1/bookings", testutil.BookingRequest(bikeID, days(30), days(31)),
				map[string]string{"X-Forwarded-For": fmt.Sprintf("198.51.100.%d", i+1)})
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	created := 0
	for status := range statuses {
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			t.Errorf("unexpected status %d", status)
		}
	}
	if created != 1 {
		t.Errorf("expected exactly one booking to win, got %d", created)
	}
	if held := store.HeldLocks(t); held != 0 {
		t.Errorf("expected every bike lock to be released, %d still held", held)
	}
}

func TestAdminLifecycle(t *testing.T) {
	env, store, client := setup(t)
	admin := client.WithAdmin(env.AdminToken(t))
	bikeID := testutil.NewBikeBuilder().Insert(t, store)

	resp := client.POST(t, "/api/v1/bookings", testutil.BookingRequest(bikeID, days(40), days(41)))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var created bookingResponse
	if err := resp.DecodeJSON(&created); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	path := "/api/v1/admin/bookings/id/" + created.Data.ID

	testutil.AssertStatusCode(t, client.GET(t, path), http.StatusUnauthorized)
	testutil.AssertStatusCode(t, admin.GET(t, path), http.StatusOK)

	confirm := admin.PATCH(t, path+"/status", map[string]string{"status": "confirmed"})
	testutil.AssertStatusCode(t, confirm, http.StatusOK)
	testutil.AssertContains(t, confirm, `"status":"confirmed"`)

	bad := admin.PATCH(t, path+"/status", map[string]string{"status": "archived"})
	testutil.AssertStatusCode(t, bad, http.StatusUnprocessableEntity)

	booked := client.GET(t, "/api/v1/bookings/booked-dates?bike_id="+bikeID)
	testutil.AssertStatusCode(t, booked, http.StatusOK)
	testutil.AssertContains(t, booked, days(40).Format("2006-01-02"))

	cancel := admin.DELETE(t, path)
	testutil.AssertStatusCode(t, cancel, http.StatusOK)
	testutil.AssertContains(t, cancel, `"status":"cancelled"`)

	rebook := client.POST(t, "/api/v1/bookings", testutil.BookingRequest(bikeID, days(40), days(41)))
	testutil.AssertStatusCode(t, rebook, http.StatusCreated)

	list := admin.GET(t, "/api/v1/admin/bookings?limit=10&offset=0")
	testutil.AssertStatusCode(t, list, http.StatusOK)
	testutil.AssertContains(t, list, `"total_count":2`)
}
