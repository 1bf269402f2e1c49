package wizard

import (
	"fmt"
	"sync"
	"time"
)

// Step names one screen of the booking wizard.  Steps are strictly
// linear; Submitted is terminal.
type Step string

const (
	StepRentalSelection Step = "rental_selection"
	StepCustomerDetails Step = "customer_details"
	StepAddOns          Step = "add_ons"
	StepReview          Step = "review"
	StepPayment         Step = "payment"
	StepSubmitted       Step = "submitted"
)

// stepOrder fixes the forward sequence.  Submitted is not listed
// because it is reachable only through Finalize, never through Next.
var stepOrder = []Step{
	StepRentalSelection,
	StepCustomerDetails,
	StepAddOns,
	StepReview,
	StepPayment,
}

func stepIndex(s Step) int {
	for i, st := range stepOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// RentalSelection is the first wizard screen: which vehicle, which
// dates, which part of the day.
type RentalSelection struct {
	VehicleID uint64    `json:"vehicle_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	TimeBlock string    `json:"time_block"` // morning | afternoon | fullday
}

// CustomerDetails holds contact data collected on the second screen.
type CustomerDetails struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	DriverLicense string `json:"driver_license"`
}

// AddOnSelection holds the optional extras and free-text notes.
type AddOnSelection struct {
	Codes []string `json:"codes"`
	Notes string   `json:"notes"`
}

// PaymentChoice records how the customer wants to pay.  Card fields
// are format-checked only; no charge is ever attempted here.
type PaymentChoice struct {
	Method     string `json:"method"` // card | cash
	CardNumber string `json:"card_number,omitempty"`
	CardExpiry string `json:"card_expiry,omitempty"` // MM/YY
	CardCVV    string `json:"card_cvv,omitempty"`
}

// Draft is a wizard session in progress.  It lives only in the draft
// store until Finalize writes a Booking; abandoning it has no side
// effect.  The store hands out shared pointers, so concurrent
// requests on the same session ID must hold the draft's lock for the
// whole read or mutation.
type Draft struct {
	mu sync.Mutex

	ID       string          `json:"id"`
	Step     Step            `json:"step"`
	Rental   RentalSelection `json:"rental"`
	Customer CustomerDetails `json:"customer"`
	AddOns   AddOnSelection  `json:"add_ons"`
	Payment  PaymentChoice   `json:"payment"`

	BookingID uint64    `json:"booking_id,omitempty"` // set once submitted
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Lock serializes access to the draft.  The browser fires quote
// requests on every form change, so a PUT can land while a GET on
// the same draft is still rendering.
func (d *Draft) Lock() { d.mu.Lock() }

// Unlock releases the draft.
func (d *Draft) Unlock() { d.mu.Unlock() }

// Submitted reports whether the draft already produced a booking.
func (d *Draft) Submitted() bool { return d.Step == StepSubmitted }

// ValidationError reports a single field failure on the current step.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates the failures of one step check.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Error()
}

// ConflictError is returned by Finalize when the authoritative
// availability re-check fails.  It carries the next free date for
// the vehicle, when one exists, so the UI can offer it.
type ConflictError struct {
	VehicleID         uint64     `json:"vehicle_id"`
	NextAvailableDate *time.Time `json:"next_available_date,omitempty"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("vehicle %d is no longer available for the selected dates", e.VehicleID)
}
