package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lackwerk/rental-service/internal/model"
)

func TestCheckBlockDates(t *testing.T) {
	d1 := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2025, time.December, 3, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		block string
		start time.Time
		end   time.Time
		ok    bool
	}{
		{model.BlockFullDay, d1, d3, true},
		{model.BlockFullDay, d1, d1, true},
		{model.BlockMorning, d1, d1, true},
		{model.BlockAfternoon, d1, d1, true},
		{model.BlockMorning, d1, d3, false},
		{model.BlockAfternoon, d1, d3, false},
	}
	for _, tc := range cases {
		msg := checkBlockDates(tc.block, tc.start, tc.end)
		if (msg == "") != tc.ok {
			t.Errorf("checkBlockDates(%s, %s..%s) = %q, want ok=%v",
				tc.block, tc.start.Format("2006-01-02"), tc.end.Format("2006-01-02"), msg, tc.ok)
		}
	}
}

// A half-day booking spanning several days is rejected before any
// repository access; the administrative override only skips the
// availability check, never the data model.
func TestAdminCreateRejectsMultiDayHalfDay(t *testing.T) {
	h := NewAdminBookingHandler(nil, nil, nil, nil)
	e := echo.New()
	e.POST("/v1/admin/bookings", h.Create)

	rec, body := doJSON(t, e, http.MethodPost, "/v1/admin/bookings",
		`{"vehicle_id":1,"customer_id":1,"start_date":"2025-12-01","end_date":"2025-12-03","time_block":"morning","payment_method":"cash"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %v", rec.Code, body)
	}
	if body["error"] != "half-day bookings must start and end on the same day" {
		t.Fatalf("unexpected error: %v", body["error"])
	}
}
