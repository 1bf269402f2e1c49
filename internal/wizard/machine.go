package wizard

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/lackwerk/rental-service/internal/availability"
	"github.com/lackwerk/rental-service/internal/model"
	"github.com/lackwerk/rental-service/internal/pricing"
	"github.com/lackwerk/rental-service/internal/repository"
)

var (
	// ErrDraftSubmitted is returned for any navigation attempt on a
	// finished draft.
	ErrDraftSubmitted = errors.New("draft already submitted")
	// ErrFinalizeRequired is returned by Next on the payment step:
	// the only way forward from there is Finalize.
	ErrFinalizeRequired = errors.New("payment is the last step; call finalize")
	// ErrAtFirstStep is returned by Back on the initial step.
	ErrAtFirstStep = errors.New("already at the first step")
)

// Ledger is the slice of the booking store the wizard needs: the
// blocking rows for advisory checks and the guarded insert for the
// authoritative one.
type Ledger interface {
	ListBlocking(ctx context.Context, vehicleID uint64) ([]model.Booking, error)
	CreateChecked(ctx context.Context, b *model.Booking) error
}

// Fleet resolves vehicles for selection checks and pricing.
type Fleet interface {
	GetByID(ctx context.Context, id uint64) (model.Vehicle, error)
}

// Directory creates or reuses customer records at finalize.
type Directory interface {
	CreateOrReuse(ctx context.Context, c model.Customer) (model.Customer, error)
}

// Catalog resolves add-on codes to priced records.
type Catalog interface {
	GetByCodes(ctx context.Context, codes []string) ([]model.AddOn, error)
}

// Machine drives a Draft through the wizard steps.  It owns no
// state of its own; all mutation happens on the Draft passed in,
// except the single ledger write in Finalize.
type Machine struct {
	ledger    Ledger
	fleet     Fleet
	customers Directory
	addOns    Catalog
}

// NewMachine wires the wizard to its collaborators.
func NewMachine(ledger Ledger, fleet Fleet, customers Directory, addOns Catalog) *Machine {
	return &Machine{ledger: ledger, fleet: fleet, customers: customers, addOns: addOns}
}

// Next validates the current step and advances the draft by one.
// Payment never advances through Next; Finalize is the only way to
// reach Submitted.
func (m *Machine) Next(ctx context.Context, d *Draft) error {
	if d.Submitted() {
		return ErrDraftSubmitted
	}
	if d.Step == StepPayment {
		return ErrFinalizeRequired
	}
	if errs := m.ValidateStep(ctx, d); len(errs) > 0 {
		return errs
	}
	d.Step = stepOrder[stepIndex(d.Step)+1]
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// Back moves the draft one step backward.  Allowed from any
// non-initial, non-terminal state without validation.
func (m *Machine) Back(d *Draft) error {
	if d.Submitted() {
		return ErrDraftSubmitted
	}
	i := stepIndex(d.Step)
	if i <= 0 {
		return ErrAtFirstStep
	}
	d.Step = stepOrder[i-1]
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// ValidateStep runs the field checks for the draft's current step.
// An empty result means the forward transition is open.
func (m *Machine) ValidateStep(ctx context.Context, d *Draft) ValidationErrors {
	switch d.Step {
	case StepRentalSelection:
		return m.validateRental(ctx, d)
	case StepCustomerDetails:
		return validateCustomer(d.Customer)
	case StepAddOns:
		return nil // all optional
	case StepReview:
		return nil // read-only recomputation, no new input
	case StepPayment:
		return validatePayment(d.Payment)
	}
	return nil
}

func (m *Machine) validateRental(ctx context.Context, d *Draft) ValidationErrors {
	if errs := m.validateRentalFields(ctx, d); len(errs) > 0 {
		return errs
	}
	// Advisory only; Finalize repeats this against the live ledger.
	r := d.Rental
	blocking, err := m.ledger.ListBlocking(ctx, r.VehicleID)
	if err != nil {
		return ValidationErrors{{Field: "vehicle_id", Message: "availability check failed"}}
	}
	if !availability.VehicleAvailable(r.VehicleID, r.StartDate, r.EndDate, blocking) {
		return ValidationErrors{{Field: "start_date", Message: "vehicle is booked for the selected dates"}}
	}
	return nil
}

func (m *Machine) validateRentalFields(ctx context.Context, d *Draft) ValidationErrors {
	var errs ValidationErrors
	r := &d.Rental
	if r.VehicleID == 0 {
		errs = append(errs, ValidationError{Field: "vehicle_id", Message: "choose a vehicle"})
	}
	if r.StartDate.IsZero() {
		errs = append(errs, ValidationError{Field: "start_date", Message: "choose a start date"})
	}
	switch r.TimeBlock {
	case model.BlockMorning, model.BlockAfternoon:
		// half-day rentals are single-day by definition
		r.EndDate = r.StartDate
	case model.BlockFullDay:
		if r.EndDate.IsZero() {
			errs = append(errs, ValidationError{Field: "end_date", Message: "choose an end date"})
		} else if r.EndDate.Before(r.StartDate) {
			errs = append(errs, ValidationError{Field: "end_date", Message: "end date must not be before start date"})
		}
	default:
		errs = append(errs, ValidationError{Field: "time_block", Message: "choose morning, afternoon or fullday"})
	}
	if len(errs) > 0 {
		return errs
	}

	v, err := m.fleet.GetByID(ctx, r.VehicleID)
	if errors.Is(err, repository.ErrVehicleNotFound) {
		return ValidationErrors{{Field: "vehicle_id", Message: "unknown vehicle"}}
	}
	if err != nil {
		return ValidationErrors{{Field: "vehicle_id", Message: "vehicle lookup failed"}}
	}
	if !v.IsActive() {
		return ValidationErrors{{Field: "vehicle_id", Message: "vehicle is not available for rental"}}
	}
	return nil
}

func validateCustomer(c CustomerDetails) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "name is required"})
	}
	if strings.TrimSpace(c.Address) == "" {
		errs = append(errs, ValidationError{Field: "address", Message: "address is required"})
	}
	if !validPhone(c.Phone) {
		errs = append(errs, ValidationError{Field: "phone", Message: "enter a Swiss phone number (+41... or 0...)"})
	}
	if !validEmail(c.Email) {
		errs = append(errs, ValidationError{Field: "email", Message: "enter a valid email address"})
	}
	if len(strings.TrimSpace(c.DriverLicense)) < 5 {
		errs = append(errs, ValidationError{Field: "driver_license", Message: "driver licence number is required"})
	}
	return errs
}

func validatePayment(p PaymentChoice) ValidationErrors {
	switch p.Method {
	case model.PayCash:
		return nil
	case model.PayCard:
		var errs ValidationErrors
		if !validCardNumber(p.CardNumber) {
			errs = append(errs, ValidationError{Field: "card_number", Message: "enter a 16-digit card number"})
		}
		if !validExpiry(p.CardExpiry) {
			errs = append(errs, ValidationError{Field: "card_expiry", Message: "enter expiry as MM/YY"})
		}
		if !validCVV(p.CardCVV) {
			errs = append(errs, ValidationError{Field: "card_cvv", Message: "enter the 3 or 4 digit security code"})
		}
		return errs
	default:
		return ValidationErrors{{Field: "method", Message: "choose card or cash"}}
	}
}

// Quote recomputes the price for the draft's current selection.
// Used by the review step and by the live price display.
func (m *Machine) Quote(ctx context.Context, d *Draft) (pricing.Quote, error) {
	v, err := m.fleet.GetByID(ctx, d.Rental.VehicleID)
	if err != nil {
		return pricing.Quote{}, err
	}
	addOns, err := m.addOns.GetByCodes(ctx, d.AddOns.Codes)
	if err != nil {
		return pricing.Quote{}, err
	}
	return pricing.BuildQuote(v, d.Rental.StartDate, d.Rental.EndDate, d.Rental.TimeBlock, addOns), nil
}

// Finalize is the single write path of the wizard.  It re-validates
// every step, resolves the customer and add-ons, and hands the
// booking to the ledger, which re-checks availability atomically
// with the insert.  On a conflict the draft rewinds to the rental
// selection step and the returned ConflictError carries the next
// free date.
func (m *Machine) Finalize(ctx context.Context, d *Draft) (model.Booking, error) {
	if d.Submitted() {
		return model.Booking{}, ErrDraftSubmitted
	}
	if d.Step != StepPayment {
		return model.Booking{}, ValidationErrors{{Field: "step", Message: "complete all steps before finalizing"}}
	}
	// Field checks only; availability is decided inside the guarded
	// insert, never by the advisory check.
	if errs := m.validateRentalFields(ctx, d); len(errs) > 0 {
		return model.Booking{}, errs
	}
	if errs := validateCustomer(d.Customer); len(errs) > 0 {
		return model.Booking{}, errs
	}
	if errs := validatePayment(d.Payment); len(errs) > 0 {
		return model.Booking{}, errs
	}

	v, err := m.fleet.GetByID(ctx, d.Rental.VehicleID)
	if err != nil {
		return model.Booking{}, err
	}
	addOns, err := m.addOns.GetByCodes(ctx, d.AddOns.Codes)
	if err != nil {
		return model.Booking{}, err
	}
	cust, err := m.customers.CreateOrReuse(ctx, model.Customer{
		Name:          strings.TrimSpace(d.Customer.Name),
		Address:       strings.TrimSpace(d.Customer.Address),
		Phone:         strings.TrimSpace(d.Customer.Phone),
		Email:         strings.TrimSpace(d.Customer.Email),
		DriverLicense: strings.TrimSpace(d.Customer.DriverLicense),
	})
	if err != nil {
		return model.Booking{}, err
	}

	days := pricing.RentalDays(d.Rental.StartDate, d.Rental.EndDate)
	b := model.Booking{
		VehicleID:     v.ID,
		StartDate:     d.Rental.StartDate,
		EndDate:       d.Rental.EndDate,
		TimeBlock:     d.Rental.TimeBlock,
		CustomerID:    cust.ID,
		Status:        model.BookingPending,
		PaymentMethod: d.Payment.Method,
		AddOnCodes:    d.AddOns.Codes,
		Notes:         d.AddOns.Notes,
		TotalCents:    pricing.Total(v.DailyRateCents, days, d.Rental.TimeBlock, addOns),
	}
	err = m.ledger.CreateChecked(ctx, &b)
	if errors.Is(err, repository.ErrBookingConflict) {
		d.Step = StepRentalSelection
		d.UpdatedAt = time.Now().UTC()
		conflict := &ConflictError{VehicleID: v.ID}
		if blocking, lerr := m.ledger.ListBlocking(ctx, v.ID); lerr == nil {
			conflict.NextAvailableDate = availability.NextAvailableDate(v.ID, d.Rental.StartDate, blocking)
		}
		return model.Booking{}, conflict
	}
	if err != nil {
		return model.Booking{}, err
	}
	d.Step = StepSubmitted
	d.BookingID = b.ID
	d.UpdatedAt = time.Now().UTC()
	return b, nil
}

func validPhone(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "+41") && !strings.HasPrefix(s, "0") {
		return false
	}
	return digitCount(s) >= 9
}

func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && strings.Contains(s[at:], ".")
}

func validCardNumber(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == ' ' || r == '-':
			// grouping separators are fine
		default:
			return false
		}
	}
	return digits == 16
}

func validExpiry(s string) bool {
	if len(s) != 5 || s[2] != '/' {
		return false
	}
	mm := s[:2]
	yy := s[3:]
	if digitCount(mm) != 2 || digitCount(yy) != 2 {
		return false
	}
	month := int(mm[0]-'0')*10 + int(mm[1]-'0')
	return month >= 1 && month <= 12
}

func validCVV(s string) bool {
	n := len(s)
	return (n == 3 || n == 4) && digitCount(s) == n
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
