package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lackwerk/rental-service/internal/model"
	"github.com/lackwerk/rental-service/internal/pricing"
	"github.com/lackwerk/rental-service/internal/queue"
	"github.com/lackwerk/rental-service/internal/repository"
	queue_publisher "github.com/lackwerk/rental-service/internal/service"
	"github.com/lackwerk/rental-service/internal/utils"
)

// AdminBookingHandler serves the back-office booking calendar and
// the manual ledger mutations.  Admin writes bypass availability on
// purpose: the workshop sometimes double-books a van and sorts it
// out by phone.
type AdminBookingHandler struct {
	Bookings  *repository.BookingRepo
	Vehicles  *repository.VehicleRepo
	Customers *repository.CustomerRepo
	AddOns    *repository.AddOnRepo
}

func NewAdminBookingHandler(b *repository.BookingRepo, v *repository.VehicleRepo, c *repository.CustomerRepo, a *repository.AddOnRepo) *AdminBookingHandler {
	return &AdminBookingHandler{Bookings: b, Vehicles: v, Customers: c, AddOns: a}
}

type adminBookingPart struct {
	ID            uint64   `json:"id"`
	VehicleID     uint64   `json:"vehicle_id"`
	CustomerID    uint64   `json:"customer_id"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	TimeBlock     string   `json:"time_block"`
	Status        string   `json:"status"`
	PaymentMethod string   `json:"payment_method"`
	AddOnCodes    []string `json:"add_on_codes"`
	Notes         string   `json:"notes,omitempty"`
	TotalCents    int64    `json:"total_cents"`
	Total         string   `json:"total"`
}

func toAdminBookingPart(b model.Booking) adminBookingPart {
	return adminBookingPart{
		ID:            b.ID,
		VehicleID:     b.VehicleID,
		CustomerID:    b.CustomerID,
		StartDate:     utils.FormatDate(b.StartDate),
		EndDate:       utils.FormatDate(b.EndDate),
		TimeBlock:     b.TimeBlock,
		Status:        b.Status,
		PaymentMethod: b.PaymentMethod,
		AddOnCodes:    b.AddOnCodes,
		Notes:         b.Notes,
		TotalCents:    b.TotalCents,
		Total:         pricing.FormatCHF(b.TotalCents),
	}
}

// List returns bookings in a date window for the calendar view.
// Without from/to the whole ledger is returned.
func (h *AdminBookingHandler) List(c echo.Context) error {
	from, err := utils.ParseDate(c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from date"})
	}
	to, err := utils.ParseDate(c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	bookings, err := h.Bookings.List(ctx, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]adminBookingPart, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toAdminBookingPart(b))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one booking.
func (h *AdminBookingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toAdminBookingPart(b))
}

type adminCreateReq struct {
	VehicleID     uint64   `json:"vehicle_id"`
	CustomerID    uint64   `json:"customer_id"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	TimeBlock     string   `json:"time_block"`
	PaymentMethod string   `json:"payment_method"`
	AddOnCodes    []string `json:"add_on_codes"`
	Notes         string   `json:"notes"`
}

// checkBlockDates enforces that half-day blocks stay on a single
// calendar date.  The administrative override skips the availability
// check, not the data model.
func checkBlockDates(timeBlock string, start, end time.Time) string {
	if timeBlock != model.BlockFullDay && !end.Equal(start) {
		return "half-day bookings must start and end on the same day"
	}
	return ""
}

// Create inserts a booking without an availability check.  This is
// the administrative override path; the wizard path is guarded.
func (h *AdminBookingHandler) Create(c echo.Context) error {
	var req adminCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, err := utils.ParseDate(req.StartDate)
	if err != nil || start.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start date"})
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end date"})
	}
	if end.IsZero() {
		end = start
	}
	if end.Before(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end date before start date"})
	}
	timeBlock := req.TimeBlock
	if timeBlock == "" {
		timeBlock = model.BlockFullDay
	}
	if msg := checkBlockDates(timeBlock, start, end); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetByID(ctx, req.VehicleID)
	if errors.Is(err, repository.ErrVehicleNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if _, err := h.Customers.GetByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	addOns, err := h.AddOns.GetByCodes(ctx, req.AddOnCodes)
	if errors.Is(err, repository.ErrUnknownAddOn) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	days := pricing.RentalDays(start, end)
	b := model.Booking{
		VehicleID:     v.ID,
		CustomerID:    req.CustomerID,
		StartDate:     start,
		EndDate:       end,
		TimeBlock:     timeBlock,
		Status:        model.BookingPending,
		PaymentMethod: req.PaymentMethod,
		AddOnCodes:    req.AddOnCodes,
		Notes:         req.Notes,
		TotalCents:    pricing.Total(v.DailyRateCents, days, timeBlock, addOns),
	}
	if err := h.Bookings.Create(ctx, &b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}
	return c.JSON(http.StatusCreated, toAdminBookingPart(b))
}

type statusReq struct {
	Status string `json:"status"`
}

// UpdateStatus applies a booking status transition.  Confirmations
// are announced on the message queue; a publish failure never fails
// the request.
func (h *AdminBookingHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	b, err := h.Bookings.UpdateStatus(ctx, id, req.Status)
	switch {
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrBadTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "status transition not allowed"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	if b.Status == model.BookingConfirmed {
		go h.publishConfirmed(b)
	}
	return c.JSON(http.StatusOK, toAdminBookingPart(b))
}

// Delete soft-cancels a booking so its history stays queryable.
func (h *AdminBookingHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	b, err := h.Bookings.Cancel(ctx, id)
	switch {
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrBadTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already finished"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.JSON(http.StatusOK, toAdminBookingPart(b))
}

func (h *AdminBookingHandler) publishConfirmed(b model.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ev := queue.BookingConfirmedEvent{
		BookingID:     b.ID,
		VehicleID:     b.VehicleID,
		CustomerID:    b.CustomerID,
		StartDate:     utils.FormatDate(b.StartDate),
		EndDate:       utils.FormatDate(b.EndDate),
		TimeBlock:     b.TimeBlock,
		AddOnCodes:    b.AddOnCodes,
		PaymentMethod: b.PaymentMethod,
		TotalCents:    b.TotalCents,
		ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if v, err := h.Vehicles.GetByID(ctx, b.VehicleID); err == nil {
		ev.VehicleName = v.DisplayName
	}
	if cust, err := h.Customers.GetByID(ctx, b.CustomerID); err == nil {
		ev.CustomerName = cust.Name
	}
	if err := queue_publisher.PublishBookingConfirmed(ctx, ev); err != nil {
		log.Printf("booking %d: publish confirmed event failed: %v", b.ID, err)
	}
}
