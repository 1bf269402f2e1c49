package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lackwerk/rental-service/internal/availability"
	"github.com/lackwerk/rental-service/internal/model"
	"github.com/lackwerk/rental-service/internal/pricing"
	"github.com/lackwerk/rental-service/internal/repository"
)

func day(d int) time.Time {
	return time.Date(2025, time.December, d, 0, 0, 0, 0, time.UTC)
}

// fakeLedger mirrors the repository contract: CreateChecked refuses
// overlapping blocking rows and otherwise appends.
type fakeLedger struct {
	bookings []model.Booking
	nextID   uint64
}

func (l *fakeLedger) ListBlocking(_ context.Context, vehicleID uint64) ([]model.Booking, error) {
	out := []model.Booking{}
	for _, b := range l.bookings {
		if b.VehicleID == vehicleID && b.Blocks() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (l *fakeLedger) CreateChecked(_ context.Context, b *model.Booking) error {
	blocking, _ := l.ListBlocking(context.Background(), b.VehicleID)
	if !availability.VehicleAvailable(b.VehicleID, b.StartDate, b.EndDate, blocking) {
		return repository.ErrBookingConflict
	}
	l.nextID++
	b.ID = l.nextID
	l.bookings = append(l.bookings, *b)
	return nil
}

type fakeFleet map[uint64]model.Vehicle

func (f fakeFleet) GetByID(_ context.Context, id uint64) (model.Vehicle, error) {
	v, ok := f[id]
	if !ok {
		return model.Vehicle{}, repository.ErrVehicleNotFound
	}
	return v, nil
}

type fakeDirectory struct{ created []model.Customer }

func (d *fakeDirectory) CreateOrReuse(_ context.Context, c model.Customer) (model.Customer, error) {
	c.ID = uint64(len(d.created) + 1)
	d.created = append(d.created, c)
	return c, nil
}

type fakeCatalog map[string]model.AddOn

func (c fakeCatalog) GetByCodes(_ context.Context, codes []string) ([]model.AddOn, error) {
	out := []model.AddOn{}
	for _, code := range codes {
		a, ok := c[code]
		if !ok {
			return nil, repository.ErrUnknownAddOn
		}
		out = append(out, a)
	}
	return out, nil
}

func newTestMachine() (*Machine, *fakeLedger) {
	ledger := &fakeLedger{}
	fleet := fakeFleet{
		1: {ID: 1, Slug: "red", DisplayName: "Red Van", DailyRateCents: 12900, Status: model.VehicleActive},
		2: {ID: 2, Slug: "white-1", DisplayName: "White Van 1", DailyRateCents: 12900, Status: model.VehicleActive},
		9: {ID: 9, Slug: "parked", DisplayName: "Parked Van", DailyRateCents: 12900, Status: model.VehicleInactive},
	}
	catalog := fakeCatalog{
		"insurance": {ID: 1, Code: "insurance", PricingMode: model.PricePerDay, AmountCents: 2500, Active: true},
		"blankets":  {ID: 2, Code: "blankets", PricingMode: model.PriceFlat, AmountCents: 1500, Active: true},
	}
	return NewMachine(ledger, fleet, &fakeDirectory{}, catalog), ledger
}

func validDraft() *Draft {
	return &Draft{
		ID:   "t1",
		Step: StepRentalSelection,
		Rental: RentalSelection{
			VehicleID: 1,
			StartDate: day(10),
			EndDate:   day(12),
			TimeBlock: model.BlockFullDay,
		},
		Customer: CustomerDetails{
			Name:          "Hans Muster",
			Address:       "Werkstrasse 1, 8000 Zürich",
			Phone:         "+41791234567",
			Email:         "hans@example.ch",
			DriverLicense: "CH-12345",
		},
		AddOns:  AddOnSelection{Codes: []string{"insurance", "blankets"}},
		Payment: PaymentChoice{Method: model.PayCash},
	}
}

func TestWizardHappyPath(t *testing.T) {
	m, ledger := newTestMachine()
	ctx := context.Background()
	d := validDraft()

	want := []Step{StepCustomerDetails, StepAddOns, StepReview, StepPayment}
	for _, s := range want {
		if err := m.Next(ctx, d); err != nil {
			t.Fatalf("Next from %s: %v", d.Step, err)
		}
		if d.Step != s {
			t.Fatalf("expected step %s, got %s", s, d.Step)
		}
	}

	b, err := m.Finalize(ctx, d)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !d.Submitted() {
		t.Fatalf("expected submitted draft, got step %s", d.Step)
	}
	if d.BookingID != b.ID {
		t.Fatalf("draft booking id %d != committed %d", d.BookingID, b.ID)
	}
	if len(ledger.bookings) != 1 {
		t.Fatalf("expected one committed booking, got %d", len(ledger.bookings))
	}
	// 3 days van + 3 days insurance + flat blankets
	wantTotal := int64(3*12900 + 3*2500 + 1500)
	if b.TotalCents != wantTotal {
		t.Fatalf("total = %d, want %d", b.TotalCents, wantTotal)
	}
	if b.Status != model.BookingPending {
		t.Fatalf("expected pending booking, got %s", b.Status)
	}
}

func TestNextBlockedByValidation(t *testing.T) {
	m, _ := newTestMachine()
	d := &Draft{ID: "t2", Step: StepRentalSelection}

	err := m.Next(context.Background(), d)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if d.Step != StepRentalSelection {
		t.Fatalf("invalid step must not advance, got %s", d.Step)
	}
}

func TestInactiveVehicleRejected(t *testing.T) {
	m, _ := newTestMachine()
	d := validDraft()
	d.Rental.VehicleID = 9

	err := m.Next(context.Background(), d)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
}

func TestHalfDayForcesSingleDay(t *testing.T) {
	m, _ := newTestMachine()
	d := validDraft()
	d.Rental.TimeBlock = model.BlockMorning
	d.Rental.EndDate = time.Time{}

	if err := m.Next(context.Background(), d); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !d.Rental.EndDate.Equal(d.Rental.StartDate) {
		t.Fatalf("half-day end date = %v, want %v", d.Rental.EndDate, d.Rental.StartDate)
	}
}

func TestBackNavigation(t *testing.T) {
	m, _ := newTestMachine()
	ctx := context.Background()
	d := validDraft()

	if err := m.Back(d); !errors.Is(err, ErrAtFirstStep) {
		t.Fatalf("Back at first step: got %v", err)
	}
	if err := m.Next(ctx, d); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := m.Back(d); err != nil {
		t.Fatalf("Back: %v", err)
	}
	if d.Step != StepRentalSelection {
		t.Fatalf("expected rental selection after Back, got %s", d.Step)
	}
}

func TestNextFromPaymentRequiresFinalize(t *testing.T) {
	m, _ := newTestMachine()
	d := validDraft()
	d.Step = StepPayment

	if err := m.Next(context.Background(), d); !errors.Is(err, ErrFinalizeRequired) {
		t.Fatalf("expected ErrFinalizeRequired, got %v", err)
	}
}

func TestFinalizeRequiresPaymentStep(t *testing.T) {
	m, ledger := newTestMachine()
	d := validDraft()
	d.Step = StepReview

	_, err := m.Finalize(context.Background(), d)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if len(ledger.bookings) != 0 {
		t.Fatalf("early finalize must not write, ledger has %d", len(ledger.bookings))
	}
}

func TestFinalizeConflictLeavesLedgerUnchanged(t *testing.T) {
	m, ledger := newTestMachine()
	ctx := context.Background()
	// Red van is taken 2025-12-01..03; draft wants 12-02.
	ledger.bookings = append(ledger.bookings, model.Booking{
		ID: 99, VehicleID: 1, StartDate: day(1), EndDate: day(3), Status: model.BookingConfirmed,
	})
	d := validDraft()
	d.Rental.StartDate = day(2)
	d.Rental.EndDate = day(2)
	d.Step = StepPayment

	before := len(ledger.bookings)
	_, err := m.Finalize(ctx, d)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(ledger.bookings) != before {
		t.Fatalf("conflict must not change the ledger: %d -> %d", before, len(ledger.bookings))
	}
	if d.Step != StepRentalSelection {
		t.Fatalf("conflict must rewind to rental selection, got %s", d.Step)
	}
	if conflict.NextAvailableDate == nil || !conflict.NextAvailableDate.Equal(day(4)) {
		t.Fatalf("next available = %v, want %v", conflict.NextAvailableDate, day(4))
	}
}

func TestSubmittedIsTerminal(t *testing.T) {
	m, _ := newTestMachine()
	ctx := context.Background()
	d := validDraft()
	d.Step = StepSubmitted

	if err := m.Next(ctx, d); !errors.Is(err, ErrDraftSubmitted) {
		t.Fatalf("Next on submitted: got %v", err)
	}
	if err := m.Back(d); !errors.Is(err, ErrDraftSubmitted) {
		t.Fatalf("Back on submitted: got %v", err)
	}
	if _, err := m.Finalize(ctx, d); !errors.Is(err, ErrDraftSubmitted) {
		t.Fatalf("Finalize on submitted: got %v", err)
	}
}

func TestCardValidation(t *testing.T) {
	cases := []struct {
		name string
		pay  PaymentChoice
		ok   bool
	}{
		{"cash", PaymentChoice{Method: model.PayCash}, true},
		{"card grouped", PaymentChoice{Method: model.PayCard, CardNumber: "4242 4242 4242 4242", CardExpiry: "08/27", CardCVV: "123"}, true},
		{"card dashed", PaymentChoice{Method: model.PayCard, CardNumber: "4242-4242-4242-4242", CardExpiry: "12/26", CardCVV: "1234"}, true},
		{"short number", PaymentChoice{Method: model.PayCard, CardNumber: "4242 4242", CardExpiry: "08/27", CardCVV: "123"}, false},
		{"letters in number", PaymentChoice{Method: model.PayCard, CardNumber: "4242 4242 4242 424x", CardExpiry: "08/27", CardCVV: "123"}, false},
		{"bad month", PaymentChoice{Method: model.PayCard, CardNumber: "4242 4242 4242 4242", CardExpiry: "13/27", CardCVV: "123"}, false},
		{"bad expiry shape", PaymentChoice{Method: model.PayCard, CardNumber: "4242 4242 4242 4242", CardExpiry: "8/27", CardCVV: "123"}, false},
		{"bad cvv", PaymentChoice{Method: model.PayCard, CardNumber: "4242 4242 4242 4242", CardExpiry: "08/27", CardCVV: "12"}, false},
		{"no method", PaymentChoice{}, false},
	}
	for _, tc := range cases {
		errs := validatePayment(tc.pay)
		if tc.ok && len(errs) > 0 {
			t.Errorf("%s: unexpected errors %v", tc.name, errs)
		}
		if !tc.ok && len(errs) == 0 {
			t.Errorf("%s: expected validation errors", tc.name)
		}
	}
}

func TestPhoneValidation(t *testing.T) {
	cases := []struct {
		phone string
		ok    bool
	}{
		{"+41791234567", true},
		{"079 123 45 67", true},
		{"0791234567", true},
		{"+4179123", false}, // too few digits
		{"41791234567", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := validPhone(tc.phone); got != tc.ok {
			t.Errorf("validPhone(%q) = %v, want %v", tc.phone, got, tc.ok)
		}
	}
}

func TestStoreExpiry(t *testing.T) {
	s := NewStore(30 * time.Minute)
	d := s.Create()
	if _, err := s.Get(d.ID); err != nil {
		t.Fatalf("Get fresh draft: %v", err)
	}

	d.Lock()
	d.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	d.Unlock()
	if _, err := s.Get(d.ID); !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("expected expired draft to be gone, got %v", err)
	}
	if _, err := s.Get("nope"); !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("expected unknown id to miss, got %v", err)
	}
}

// The store hands the same *Draft to every request on a session, so
// a rental update and a quote on the same draft must serialize on
// the draft lock.  Run with -race.
func TestConcurrentQuoteAndRentalUpdate(t *testing.T) {
	m, _ := newTestMachine()
	s := NewStore(time.Minute)
	d := s.Create()

	d.Lock()
	d.Rental = RentalSelection{
		VehicleID: 1,
		StartDate: day(10),
		EndDate:   day(12),
		TimeBlock: model.BlockFullDay,
	}
	d.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			got, err := s.Get(d.ID)
			if err != nil {
				t.Errorf("Get during updates: %v", err)
				return
			}
			got.Lock()
			got.Rental.EndDate = day(10 + i%5)
			got.UpdatedAt = time.Now().UTC()
			got.Unlock()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			got, err := s.Get(d.ID)
			if err != nil {
				t.Errorf("Get during quotes: %v", err)
				return
			}
			got.Lock()
			_, qerr := m.Quote(context.Background(), got)
			got.Unlock()
			if qerr != nil {
				t.Errorf("Quote: %v", qerr)
				return
			}
		}
	}()
	wg.Wait()

	d.Lock()
	days := pricing.RentalDays(d.Rental.StartDate, d.Rental.EndDate)
	d.Unlock()
	q, err := m.Quote(context.Background(), d)
	if err != nil {
		t.Fatalf("final quote: %v", err)
	}
	if q.TotalCents != int64(days)*12900 {
		t.Fatalf("final quote %d does not match %d rental days", q.TotalCents, days)
	}
}
