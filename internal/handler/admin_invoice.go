package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lackwerk/rental-service/internal/model"
	"github.com/lackwerk/rental-service/internal/pricing"
	"github.com/lackwerk/rental-service/internal/repository"
)

// AdminInvoiceHandler issues and tracks invoices for committed
// bookings.  Document rendering (PDF and friends) happens outside
// this service; here an invoice is a numbered financial record.
type AdminInvoiceHandler struct {
	Invoices *repository.InvoiceRepo
	Bookings *repository.BookingRepo
}

func NewAdminInvoiceHandler(i *repository.InvoiceRepo, b *repository.BookingRepo) *AdminInvoiceHandler {
	return &AdminInvoiceHandler{Invoices: i, Bookings: b}
}

type invoicePart struct {
	ID          uint64 `json:"id"`
	Number      string `json:"number"`
	BookingID   uint64 `json:"booking_id"`
	CustomerID  uint64 `json:"customer_id"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	IssuedAt    string `json:"issued_at"`
}

func toInvoicePart(i model.Invoice) invoicePart {
	return invoicePart{
		ID:          i.ID,
		Number:      i.Number,
		BookingID:   i.BookingID,
		CustomerID:  i.CustomerID,
		AmountCents: i.AmountCents,
		Amount:      pricing.FormatCHF(i.AmountCents),
		Status:      i.Status,
		IssuedAt:    i.IssuedAt.Format(time.RFC3339),
	}
}

type invoiceCreateReq struct {
	BookingID uint64 `json:"booking_id"`
}

// Create issues an invoice for a booking.  The amount is taken from
// the booking's committed total; one invoice per booking.
func (h *AdminInvoiceHandler) Create(c echo.Context) error {
	var req invoiceCreateReq
	if err := c.Bind(&req); err != nil || req.BookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, req.BookingID)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	inv, err := h.Invoices.CreateForBooking(ctx, b)
	switch {
	case errors.Is(err, repository.ErrInvoiceExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already invoiced"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create invoice failed"})
	}
	return c.JSON(http.StatusCreated, toInvoicePart(inv))
}

// List returns all invoices, newest first.
func (h *AdminInvoiceHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	invoices, err := h.Invoices.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]invoicePart, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoicePart(inv))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateStatus moves an invoice between open, paid and void.
func (h *AdminInvoiceHandler) UpdateStatus(c echo.Context) error {
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

	inv, err := h.Invoices.UpdateStatus(ctx, id, req.Status)
	switch {
	case errors.Is(err, repository.ErrInvoiceNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
	case errors.Is(err, repository.ErrBadTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "status transition not allowed"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toInvoicePart(inv))
}
