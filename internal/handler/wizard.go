package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lackwerk/rental-service/internal/utils"
	"github.com/lackwerk/rental-service/internal/wizard"
)

// WizardHandler exposes the booking wizard over HTTP.  Each draft is
// a server-side session; the UI posts step data, asks to move
// forward or back, and finally calls finalize, which is the only
// call that writes a booking.
type WizardHandler struct {
	Store   *wizard.Store
	Machine *wizard.Machine
}

func NewWizardHandler(store *wizard.Store, machine *wizard.Machine) *WizardHandler {
	return &WizardHandler{Store: store, Machine: machine}
}

type draftResp struct {
	ID        string                 `json:"id"`
	Step      wizard.Step            `json:"step"`
	Rental    rentalPart             `json:"rental"`
	Customer  wizard.CustomerDetails `json:"customer"`
	AddOns    wizard.AddOnSelection  `json:"add_ons"`
	Payment   paymentPart            `json:"payment"`
	BookingID uint64                 `json:"booking_id,omitempty"`
}

type rentalPart struct {
	VehicleID uint64 `json:"vehicle_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	TimeBlock string `json:"time_block"`
}

// paymentPart echoes the method only; card data is never sent back.
type paymentPart struct {
	Method string `json:"method"`
}

func toDraftResp(d *wizard.Draft) draftResp {
	return draftResp{
		ID:   d.ID,
		Step: d.Step,
		Rental: rentalPart{
			VehicleID: d.Rental.VehicleID,
			StartDate: utils.FormatDate(d.Rental.StartDate),
			EndDate:   utils.FormatDate(d.Rental.EndDate),
			TimeBlock: d.Rental.TimeBlock,
		},
		Customer:  d.Customer,
		AddOns:    d.AddOns,
		Payment:   paymentPart{Method: d.Payment.Method},
		BookingID: d.BookingID,
	}
}

// CreateDraft opens a new wizard session.
func (h *WizardHandler) CreateDraft(c echo.Context) error {
	d := h.Store.Create()
	return c.JSON(http.StatusCreated, toDraftResp(d))
}

// GetDraft returns the current state of a session.
func (h *WizardHandler) GetDraft(c echo.Context) error {
	d, err := h.Store.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "draft not found"})
	}
	d.Lock()
	defer d.Unlock()
	return c.JSON(http.StatusOK, toDraftResp(d))
}

// DeleteDraft abandons a session.  No ledger effect.
func (h *WizardHandler) DeleteDraft(c echo.Context) error {
	h.Store.Delete(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

type rentalUpdateReq struct {
	VehicleID uint64 `json:"vehicle_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	TimeBlock string `json:"time_block"`
}

// UpdateRental stores the rental selection on the draft.  Dates are
// rejected here if unparseable so bad input never reaches pricing.
func (h *WizardHandler) UpdateRental(c echo.Context) error {
	d, err := h.Store.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "draft not found"})
	}
	d.Lock()
	defer d.Unlock()
	if d.Submitted() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "draft already submitted"})
	}
	var req rentalUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start date"})
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end date"})
	}
	d.Rental = wizard.RentalSelection{
		VehicleID: req.VehicleID,
		StartDate: start,
		EndDate:   end,
		TimeBlock: req.TimeBlock,
	}
	d.UpdatedAt = time.Now().UTC()
	return c.JSON(http.StatusOK, toDraftResp(d))
}

// UpdateCustomer stores the contact details step.
func (h *WizardHandler) UpdateCustomer(c echo.Context) error {
	d, err := h.Store.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "draft not found"})
	}
	d.Lock()
	defer d.Unlock()
	if d.Submitted() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "draft already submitted"})
	}
	var req wizard.CustomerDetails
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	d.Customer = req
	d.UpdatedAt = time.Now().UTC()
	return c.JSON(http.StatusOK, toDraftResp(d))
}

// UpdateAddOns stores the extras step.
func (h *WizardHandler) UpdateAddOns(c echo.Context) error {
	d, err := h.Store.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "draft not found"})
	}
	d.Lock()
	defer d.Unlock()
	if d.Submitted() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "draft already submitted"})
	}
	var req wizard.AddOnSelection
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	d.AddOns = req
	d.UpdatedAt = time.Now().UTC()
	return c.JSON(http.StatusOK, toDraftResp(d))
}

// UpdatePayment stores the payment choice.
func (h *WizardHandler) UpdatePayment(c echo.Context) error {
	d, err := h.Store.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "draft not found"})
	}
	d.Lock()
	defer d.Unlock()
	if d.Submitted() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "draft already submitted"})
	}
	var req wizard.PaymentChoice
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	d.Payment = req
	d.UpdatedAt = time.Now().UTC()
	return c.JSON(http.StatusOK, toDraftResp(d))
}

// Next advances the wizard one step after validating the current one.
func (h *WizardHandler) Next(c echo.Context) error {
	d, err := h.Store.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "draft not found"})
	}
	d.Lock()
	defer d.Unlock()

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	if err := h.Machine.Next(ctx, d); err != nil {
		return wizardError(c, err, d)
	}
	return c.JSON(http.StatusOK, toDraftResp(d))
}

// Back moves the wizard one step backward.
func (h *WizardHandler) Back(c echo.Context) error {
	d, err := h.Store.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "draft not found"})
	}
	d.Lock()
	defer d.Unlock()
	if err := h.Machine.Back(d); err != nil {
		return wizardError(c, err, d)
	}
	return c.JSON(http.StatusOK, toDraftResp(d))
}

// Quote recomputes the price for the draft's current selection.
func (h *WizardHandler) Quote(c echo.Context) error {
	d, err := h.Store.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "draft not found"})
	}
	d.Lock()
	defer d.Unlock()

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	q, err := h.Machine.Quote(ctx, d)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quote failed"})
	}
	return c.JSON(http.StatusOK, q)
}

// Finalize commits the draft into the booking ledger.  On an
// availability conflict the response is 409 with the next free date
// and the draft is rewound to the rental selection step.
func (h *WizardHandler) Finalize(c echo.Context) error {
	d, err := h.Store.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "draft not found"})
	}
	d.Lock()
	defer d.Unlock()

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	b, err := h.Machine.Finalize(ctx, d)
	if err != nil {
		return wizardError(c, err, d)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"draft": toDraftResp(d),
		"booking": bookingPart{
			ID:            b.ID,
			VehicleID:     b.VehicleID,
			StartDate:     utils.FormatDate(b.StartDate),
			EndDate:       utils.FormatDate(b.EndDate),
			TimeBlock:     b.TimeBlock,
			Status:        b.Status,
			PaymentMethod: b.PaymentMethod,
			TotalCents:    b.TotalCents,
		},
	})
}

// bookingPart is the public shape of a committed booking.
type bookingPart struct {
	ID            uint64 `json:"id"`
	VehicleID     uint64 `json:"vehicle_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	TimeBlock     string `json:"time_block"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
	TotalCents    int64  `json:"total_cents"`
}

// wizardError maps machine errors onto HTTP responses.
func wizardError(c echo.Context, err error, d *wizard.Draft) error {
	var verrs wizard.ValidationErrors
	if errors.As(err, &verrs) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":  "validation failed",
			"step":   d.Step,
			"fields": verrs,
		})
	}
	var conflict *wizard.ConflictError
	if errors.As(err, &conflict) {
		resp := echo.Map{
			"error": "vehicle no longer available",
			"step":  d.Step,
		}
		if conflict.NextAvailableDate != nil {
			resp["next_available_date"] = utils.FormatDate(*conflict.NextAvailableDate)
		}
		return c.JSON(http.StatusConflict, resp)
	}
	switch {
	case errors.Is(err, wizard.ErrDraftSubmitted):
		return c.JSON(http.StatusConflict, echo.Map{"error": "draft already submitted"})
	case errors.Is(err, wizard.ErrFinalizeRequired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment is the last step; call finalize"})
	case errors.Is(err, wizard.ErrAtFirstStep):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "already at the first step"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "wizard operation failed"})
}
