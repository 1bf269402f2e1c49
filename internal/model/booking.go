package model

import "time"

// Booking status values.  A booking is created as "pending" when the
// wizard finalizes, regardless of payment method, and afterwards only
// moves through explicit admin transitions:
// confirmed <- pending, completed <- pending|confirmed,
// cancelled <- pending|confirmed.  Cancelled bookings stay in the table
// for auditing but no longer block the vehicle's dates.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Time blocks applied to a rental day.  Half-day blocks are restricted
// to a single calendar date; fullday rentals may span several days.
// The conflict check does not distinguish blocks: any date overlap
// blocks the vehicle for the whole day.
const (
	BlockMorning   = "morning"
	BlockAfternoon = "afternoon"
	BlockFullDay   = "fullday"
)

// Payment methods accepted at the end of the wizard.  Card details are
// format-checked only; no charge is performed by this service.
const (
	PayCard = "card"
	PayCash = "cash"
)

// Booking records a committed vehicle rental.  Start and end dates are
// inclusive calendar dates stored as DATE columns in UTC.  Invariants
// enforced at creation: EndDate >= StartDate, and half-day time blocks
// imply StartDate == EndDate.  This struct corresponds to a row in the
// `bookings` table.
//
// Fields:
//  ID            – primary key identifier.
//  VehicleID     – vehicle being rented.
//  StartDate     – first rental day (inclusive).
//  EndDate       – last rental day (inclusive).
//  TimeBlock     – "morning", "afternoon" or "fullday".
//  CustomerID    – customer who booked.
//  Status        – see the status constants above.
//  PaymentMethod – "card" or "cash".
//  AddOnCodes    – selected add-on codes (stored comma-joined).
//  Notes         – free-text customer notes.
//  TotalCents    – total price in rappen computed at finalize time.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Booking struct {
	ID            uint64    // bookings.id
	VehicleID     uint64    // bookings.vehicle_id
	StartDate     time.Time // bookings.start_date (DATE, inclusive)
	EndDate       time.Time // bookings.end_date (DATE, inclusive)
	TimeBlock     string    // bookings.time_block
	CustomerID    uint64    // bookings.customer_id
	Status        string    // bookings.status
	PaymentMethod string    // bookings.payment_method
	AddOnCodes    []string  // bookings.add_on_codes (comma-joined)
	Notes         string    // bookings.notes
	TotalCents    int64     // bookings.total_cents
	CreatedAt     time.Time // bookings.created_at
	UpdatedAt     time.Time // bookings.updated_at
}

// Blocks reports whether the booking counts against the vehicle's
// availability.  Completed bookings are in the past by definition and
// cancelled ones have released their dates.
func (b Booking) Blocks() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}
