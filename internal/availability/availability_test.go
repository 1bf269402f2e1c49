package availability

import (
	"testing"
	"time"

	"github.com/lackwerk/rental-service/internal/model"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testFleet() []model.Vehicle {
	return []model.Vehicle{
		{ID: 1, Slug: "red", DailyRateCents: 12900, Status: model.VehicleActive},
		{ID: 2, Slug: "white1", DailyRateCents: 12900, Status: model.VehicleActive},
		{ID: 3, Slug: "white2", DailyRateCents: 12900, Status: model.VehicleActive},
	}
}

func testLedger() []model.Booking {
	return []model.Booking{
		{ID: 1, VehicleID: 1, StartDate: date("2025-12-01"), EndDate: date("2025-12-03"), Status: model.BookingConfirmed},
		{ID: 2, VehicleID: 2, StartDate: date("2025-12-05"), EndDate: date("2025-12-07"), Status: model.BookingPending},
		{ID: 3, VehicleID: 1, StartDate: date("2025-12-10"), EndDate: date("2025-12-12"), Status: model.BookingConfirmed},
		{ID: 4, VehicleID: 3, StartDate: date("2025-12-15"), EndDate: date("2025-12-18"), Status: model.BookingConfirmed},
	}
}

func TestRangesOverlap(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{"identical", "2025-12-01", "2025-12-03", "2025-12-01", "2025-12-03", true},
		{"inside", "2025-12-02", "2025-12-02", "2025-12-01", "2025-12-03", true},
		{"shared boundary day", "2025-12-03", "2025-12-05", "2025-12-01", "2025-12-03", true},
		{"adjacent, no shared day", "2025-12-04", "2025-12-05", "2025-12-01", "2025-12-03", false},
		{"disjoint", "2025-12-20", "2025-12-21", "2025-12-01", "2025-12-03", false},
	}
	for _, c := range cases {
		got := RangesOverlap(date(c.s1), date(c.e1), date(c.s2), date(c.e2))
		if got != c.want {
			t.Errorf("%s: RangesOverlap = %v, want %v", c.name, got, c.want)
		}
	}
}

// The availability answer must be false exactly when some blocking
// booking of the same vehicle overlaps the requested range.
func TestVehicleAvailableMatchesOverlap(t *testing.T) {
	ledger := testLedger()
	start, end := date("2025-11-25"), date("2025-12-20")
	for _, v := range testFleet() {
		for s := start; !s.After(end); s = s.AddDate(0, 0, 1) {
			for e := s; !e.After(end); e = e.AddDate(0, 0, 1) {
				conflict := false
				for _, b := range ledger {
					if b.VehicleID == v.ID && RangesOverlap(b.StartDate, b.EndDate, s, e) {
						conflict = true
					}
				}
				if got := VehicleAvailable(v.ID, s, e, ledger); got == conflict {
					t.Fatalf("vehicle %d [%s..%s]: available=%v with conflict=%v",
						v.ID, s.Format("2006-01-02"), e.Format("2006-01-02"), got, conflict)
				}
			}
		}
	}
}

func TestVehicleAvailablePermissiveDefaults(t *testing.T) {
	ledger := testLedger()
	if !VehicleAvailable(0, date("2025-12-02"), date("2025-12-02"), ledger) {
		t.Errorf("missing vehicle must not block")
	}
	if !VehicleAvailable(1, time.Time{}, date("2025-12-02"), ledger) {
		t.Errorf("missing start date must not block")
	}
	if !VehicleAvailable(1, date("2025-12-02"), time.Time{}, ledger) {
		t.Errorf("missing end date must not block")
	}
}

func TestCancelledBookingDoesNotBlock(t *testing.T) {
	ledger := []model.Booking{
		{ID: 1, VehicleID: 1, StartDate: date("2025-12-01"), EndDate: date("2025-12-03"), Status: model.BookingCancelled},
	}
	if !VehicleAvailable(1, date("2025-12-02"), date("2025-12-02"), ledger) {
		t.Fatalf("cancelled booking should release its dates")
	}
}

func TestNextAvailableDate(t *testing.T) {
	ledger := testLedger()

	// from lies inside booking 1; the hint is the day after it ends.
	next := NextAvailableDate(1, date("2025-12-02"), ledger)
	if next == nil || !next.Equal(date("2025-12-04")) {
		t.Fatalf("NextAvailableDate(red, 2025-12-02) = %v, want 2025-12-04", next)
	}

	next = NextAvailableDate(1, date("2025-12-01"), ledger)
	if next == nil || !next.Equal(date("2025-12-04")) {
		t.Fatalf("NextAvailableDate(red, 2025-12-01) = %v, want 2025-12-04", next)
	}

	next = NextAvailableDate(1, date("2025-12-09"), ledger)
	if next == nil || !next.Equal(date("2025-12-13")) {
		t.Fatalf("NextAvailableDate(red, 2025-12-09) = %v, want 2025-12-13", next)
	}

	if next := NextAvailableDate(1, date("2025-12-20"), ledger); next != nil {
		t.Fatalf("no booking starts after 2025-12-20, want nil, got %v", next)
	}

	// If defined, the hinted day itself must be free.
	if next := NextAvailableDate(1, date("2025-12-01"), ledger); next != nil {
		if !VehicleAvailable(1, *next, *next, ledger) {
			t.Fatalf("hinted date %v is not actually free", next)
		}
	}
}

func TestNextAvailableDateSkipsContiguousBookings(t *testing.T) {
	ledger := []model.Booking{
		{ID: 1, VehicleID: 1, StartDate: date("2025-12-01"), EndDate: date("2025-12-03"), Status: model.BookingConfirmed},
		{ID: 2, VehicleID: 1, StartDate: date("2025-12-04"), EndDate: date("2025-12-06"), Status: model.BookingConfirmed},
	}
	next := NextAvailableDate(1, date("2025-12-02"), ledger)
	if next == nil || !next.Equal(date("2025-12-07")) {
		t.Fatalf("hint should step past the back-to-back booking, got %v", next)
	}
	if !VehicleAvailable(1, *next, *next, ledger) {
		t.Fatalf("hinted date %v is not free", next)
	}
}

func TestFleetAvailabilityScenario(t *testing.T) {
	// Fleet {red, white1, white2}; red is booked 2025-12-01..2025-12-03.
	fleet := testFleet()
	ledger := []model.Booking{
		{ID: 1, VehicleID: 1, StartDate: date("2025-12-01"), EndDate: date("2025-12-03"), Status: model.BookingConfirmed},
	}
	got := FleetAvailability(fleet, date("2025-12-02"), date("2025-12-02"), ledger)

	red := got[1]
	if red.Available {
		t.Fatalf("red should be unavailable on 2025-12-02")
	}
	if red.NextAvailableDate == nil || !red.NextAvailableDate.Equal(date("2025-12-04")) {
		t.Fatalf("red next available = %v, want 2025-12-04", red.NextAvailableDate)
	}
	if !got[2].Available || !got[3].Available {
		t.Fatalf("white1/white2 should be available, got %+v", got)
	}
}

func TestFleetAvailabilityIdempotent(t *testing.T) {
	fleet := testFleet()
	ledger := testLedger()
	a := FleetAvailability(fleet, date("2025-12-05"), date("2025-12-06"), ledger)
	b := FleetAvailability(fleet, date("2025-12-05"), date("2025-12-06"), ledger)
	if len(a) != len(b) {
		t.Fatalf("result sizes differ: %d vs %d", len(a), len(b))
	}
	for id, sa := range a {
		sb := b[id]
		if sa.Available != sb.Available {
			t.Fatalf("vehicle %d availability differs between identical calls", id)
		}
		if (sa.NextAvailableDate == nil) != (sb.NextAvailableDate == nil) {
			t.Fatalf("vehicle %d hint presence differs between identical calls", id)
		}
		if sa.NextAvailableDate != nil && !sa.NextAvailableDate.Equal(*sb.NextAvailableDate) {
			t.Fatalf("vehicle %d hint differs between identical calls", id)
		}
	}
}

func TestBookingsForVehicleSorted(t *testing.T) {
	ledger := []model.Booking{
		{ID: 3, VehicleID: 1, StartDate: date("2025-12-10"), EndDate: date("2025-12-12"), Status: model.BookingConfirmed},
		{ID: 1, VehicleID: 1, StartDate: date("2025-12-01"), EndDate: date("2025-12-03"), Status: model.BookingConfirmed},
		{ID: 2, VehicleID: 2, StartDate: date("2025-12-05"), EndDate: date("2025-12-07"), Status: model.BookingConfirmed},
	}
	got := BookingsForVehicle(1, ledger)
	if len(got) != 2 {
		t.Fatalf("expected 2 bookings for vehicle 1, got %d", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("bookings not sorted ascending by start date: %v, %v", got[0].ID, got[1].ID)
	}
}

func TestBlockedDates(t *testing.T) {
	ledger := []model.Booking{
		{ID: 1, VehicleID: 1, StartDate: date("2025-12-01"), EndDate: date("2025-12-03"), Status: model.BookingConfirmed},
	}
	days := BlockedDates(1, ledger)
	if len(days) != 3 {
		t.Fatalf("expected 3 blocked days, got %d", len(days))
	}
	if !days[0].Equal(date("2025-12-01")) || !days[2].Equal(date("2025-12-03")) {
		t.Fatalf("unexpected blocked days: %v", days)
	}
}
