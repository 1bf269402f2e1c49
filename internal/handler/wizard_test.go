package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lackwerk/rental-service/internal/availability"
	"github.com/lackwerk/rental-service/internal/model"
	"github.com/lackwerk/rental-service/internal/repository"
	"github.com/lackwerk/rental-service/internal/wizard"
)

type memLedger struct {
	bookings []model.Booking
	nextID   uint64
}

func (l *memLedger) ListBlocking(_ context.Context, vehicleID uint64) ([]model.Booking, error) {
	out := []model.Booking{}
	for _, b := range l.bookings {
		if b.VehicleID == vehicleID && b.Blocks() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (l *memLedger) CreateChecked(_ context.Context, b *model.Booking) error {
	blocking, _ := l.ListBlocking(context.Background(), b.VehicleID)
	if !availability.VehicleAvailable(b.VehicleID, b.StartDate, b.EndDate, blocking) {
		return repository.ErrBookingConflict
	}
	l.nextID++
	b.ID = l.nextID
	l.bookings = append(l.bookings, *b)
	return nil
}

type memFleet map[uint64]model.Vehicle

func (f memFleet) GetByID(_ context.Context, id uint64) (model.Vehicle, error) {
	v, ok := f[id]
	if !ok {
		return model.Vehicle{}, repository.ErrVehicleNotFound
	}
	return v, nil
}

type memDirectory struct{ n uint64 }

func (d *memDirectory) CreateOrReuse(_ context.Context, c model.Customer) (model.Customer, error) {
	d.n++
	c.ID = d.n
	return c, nil
}

type memCatalog map[string]model.AddOn

func (c memCatalog) GetByCodes(_ context.Context, codes []string) ([]model.AddOn, error) {
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

func newWizardServer(ledger *memLedger) (*echo.Echo, *WizardHandler) {
	fleet := memFleet{
		1: {ID: 1, Slug: "red", DisplayName: "Red Van", DailyRateCents: 12900, Status: model.VehicleActive},
	}
	catalog := memCatalog{
		"insurance": {Code: "insurance", PricingMode: model.PricePerDay, AmountCents: 2500, Active: true},
	}
	machine := wizard.NewMachine(ledger, fleet, &memDirectory{}, catalog)
	h := NewWizardHandler(wizard.NewStore(30*time.Minute), machine)

	e := echo.New()
	g := e.Group("/v1/wizard/drafts")
	g.POST("", h.CreateDraft)
	g.GET("/:id", h.GetDraft)
	g.PUT("/:id/rental", h.UpdateRental)
	g.PUT("/:id/customer", h.UpdateCustomer)
	g.PUT("/:id/add-ons", h.UpdateAddOns)
	g.PUT("/:id/payment", h.UpdatePayment)
	g.POST("/:id/next", h.Next)
	g.POST("/:id/finalize", h.Finalize)
	return e, h
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: bad JSON response: %v", method, path, err)
		}
	}
	return rec, out
}

func TestWizardHTTPFlow(t *testing.T) {
	ledger := &memLedger{}
	e, _ := newWizardServer(ledger)

	rec, created := doJSON(t, e, http.MethodPost, "/v1/wizard/drafts", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create draft: status %d", rec.Code)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("create draft: missing id in %v", created)
	}
	base := "/v1/wizard/drafts/" + id

	rec, _ = doJSON(t, e, http.MethodPut, base+"/rental",
		`{"vehicle_id":1,"start_date":"2025-12-10","end_date":"2025-12-12","time_block":"fullday"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update rental: status %d", rec.Code)
	}
	rec, _ = doJSON(t, e, http.MethodPost, base+"/next", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("next after rental: status %d", rec.Code)
	}

	rec, _ = doJSON(t, e, http.MethodPut, base+"/customer",
		`{"name":"Hans Muster","address":"Werkstrasse 1","phone":"+41791234567","email":"hans@example.ch","driver_license":"CH-12345"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update customer: status %d", rec.Code)
	}
	for i := 0; i < 3; i++ { // customer -> add-ons -> review -> payment
		rec, _ = doJSON(t, e, http.MethodPost, base+"/next", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("next %d: status %d", i, rec.Code)
		}
	}

	rec, _ = doJSON(t, e, http.MethodPut, base+"/payment", `{"method":"cash"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update payment: status %d", rec.Code)
	}

	rec, body := doJSON(t, e, http.MethodPost, base+"/finalize", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("finalize: status %d body %v", rec.Code, body)
	}
	if len(ledger.bookings) != 1 {
		t.Fatalf("expected one committed booking, got %d", len(ledger.bookings))
	}
	draft, _ := body["draft"].(map[string]any)
	if draft["step"] != string(wizard.StepSubmitted) {
		t.Fatalf("expected submitted draft, got %v", draft["step"])
	}
}

func TestWizardHTTPValidationBlocksNext(t *testing.T) {
	e, _ := newWizardServer(&memLedger{})

	_, created := doJSON(t, e, http.MethodPost, "/v1/wizard/drafts", "")
	id, _ := created["id"].(string)

	rec, body := doJSON(t, e, http.MethodPost, "/v1/wizard/drafts/"+id+"/next", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty rental step, got %d (%v)", rec.Code, body)
	}
}

func TestWizardHTTPFinalizeConflict(t *testing.T) {
	ledger := &memLedger{bookings: []model.Booking{{
		ID: 7, VehicleID: 1,
		StartDate: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC),
		Status:    model.BookingConfirmed,
	}}}
	e, h := newWizardServer(ledger)

	// Build a complete draft directly and race it past the advisory
	// check by pointing it at the taken range.
	d := h.Store.Create()
	d.Rental = wizard.RentalSelection{
		VehicleID: 1,
		StartDate: time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC),
		TimeBlock: model.BlockFullDay,
	}
	d.Customer = wizard.CustomerDetails{
		Name: "Hans Muster", Address: "Werkstrasse 1",
		Phone: "+41791234567", Email: "hans@example.ch", DriverLicense: "CH-12345",
	}
	d.Payment = wizard.PaymentChoice{Method: model.PayCash}
	d.Step = wizard.StepPayment

	rec, body := doJSON(t, e, http.MethodPost, fmt.Sprintf("/v1/wizard/drafts/%s/finalize", d.ID), "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d (%v)", rec.Code, body)
	}
	if body["next_available_date"] != "2025-12-04" {
		t.Fatalf("next_available_date = %v, want 2025-12-04", body["next_available_date"])
	}
	if len(ledger.bookings) != 1 {
		t.Fatalf("conflict must not write; ledger has %d rows", len(ledger.bookings))
	}
}
