// Package availability answers whether fleet vehicles are free for a
// date range.  Every function is a pure query over a ledger snapshot
// ([]model.Booking): given the same snapshot and arguments the result
// is always the same, which keeps the functions safe to call from the
// wizard for advisory checks and cheap enough to run on every date
// change.  The authoritative check at finalize time runs the same
// functions over a row-locked snapshot inside a transaction.
package availability

import (
	"sort"
	"time"

	"github.com/lackwerk/rental-service/internal/model"
)

// VehicleStatus is the per-vehicle result of a fleet-wide availability
// query.  NextAvailableDate is only set when the vehicle is not
// available and a later booking bounds the conflict.
type VehicleStatus struct {
	Available         bool       `json:"available"`
	NextAvailableDate *time.Time `json:"next_available_date,omitempty"`
}

// RangesOverlap reports whether two inclusive date ranges intersect:
// s1 <= e2 && e1 >= s2.  Sharing a single boundary day counts as an
// overlap because rental days are whole calendar days.
func RangesOverlap(s1, e1, s2, e2 time.Time) bool {
	return !s1.After(e2) && !e1.Before(s2)
}

// blocks reports whether a booking counts against availability for the
// given vehicle.  Bookings with missing dates never block; partially
// filled records exist while a draft is being promoted and unknown
// dates are treated as non-blocking.
func blocks(b model.Booking, vehicleID uint64) bool {
	return b.VehicleID == vehicleID && b.Blocks() && !b.StartDate.IsZero() && !b.EndDate.IsZero()
}

// VehicleAvailable reports whether the vehicle is free for the whole
// inclusive range [start, end].  A zero vehicle ID or a missing date
// yields true: during progressive form filling an unknown value must
// not block the wizard.  The permissive default is closed off at
// finalize, where all fields are required.
//
// The check ignores time blocks on purpose: any date overlap blocks
// the vehicle for the entire day regardless of morning/afternoon/
// fullday declarations.
func VehicleAvailable(vehicleID uint64, start, end time.Time, ledger []model.Booking) bool {
	if vehicleID == 0 || start.IsZero() || end.IsZero() {
		return true
	}
	for _, b := range ledger {
		if !blocks(b, vehicleID) {
			continue
		}
		if RangesOverlap(start, end, b.StartDate, b.EndDate) {
			return false
		}
	}
	return true
}

// BookingsForVehicle returns the vehicle's blocking bookings in stable
// ascending start-date order.  The admin calendar and
// NextAvailableDate both build on this ordering.
func BookingsForVehicle(vehicleID uint64, ledger []model.Booking) []model.Booking {
	out := make([]model.Booking, 0)
	for _, b := range ledger {
		if blocks(b, vehicleID) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out
}

// NextAvailableDate finds the first day on or after from on which the
// vehicle is free again, looking only forward: it takes the first
// booking still relevant at from (ending on or after it), steps past
// its end, and keeps stepping while follow-on bookings cover the
// candidate day.  It returns nil when every booking for the vehicle
// lies entirely before from; gaps before from are never searched.  The
// returned day is guaranteed free, which is what makes it usable as a
// conflict hint.
func NextAvailableDate(vehicleID uint64, from time.Time, ledger []model.Booking) *time.Time {
	if from.IsZero() {
		return nil
	}
	bookings := BookingsForVehicle(vehicleID, ledger)
	var next *time.Time
	for _, b := range bookings {
		if b.EndDate.Before(from) {
			continue
		}
		if next == nil {
			d := b.EndDate.AddDate(0, 0, 1)
			next = &d
			continue
		}
		// A follow-on booking covering the candidate day pushes the
		// candidate past its own end.
		if !b.StartDate.After(*next) && !b.EndDate.Before(*next) {
			d := b.EndDate.AddDate(0, 0, 1)
			next = &d
		}
	}
	return next
}

// FleetAvailability evaluates every vehicle in the catalog against the
// range [start, end] and returns a map keyed by vehicle ID.  When a
// vehicle is unavailable the entry carries the next-free-date hint.
func FleetAvailability(fleet []model.Vehicle, start, end time.Time, ledger []model.Booking) map[uint64]VehicleStatus {
	result := make(map[uint64]VehicleStatus, len(fleet))
	for _, v := range fleet {
		avail := VehicleAvailable(v.ID, start, end, ledger)
		st := VehicleStatus{Available: avail}
		if !avail && !start.IsZero() {
			st.NextAvailableDate = NextAvailableDate(v.ID, start, ledger)
		}
		result[v.ID] = st
	}
	return result
}

// BlockedDates expands the vehicle's blocking bookings into the flat
// list of occupied calendar days, for calendar rendering.
func BlockedDates(vehicleID uint64, ledger []model.Booking) []time.Time {
	var days []time.Time
	for _, b := range BookingsForVehicle(vehicleID, ledger) {
		for d := b.StartDate; !d.After(b.EndDate); d = d.AddDate(0, 0, 1) {
			days = append(days, d)
		}
	}
	return days
}
