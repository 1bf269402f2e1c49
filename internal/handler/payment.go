package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"github.com/lackwerk/rental-service/internal/model"
	"github.com/lackwerk/rental-service/internal/repository"
)

// PaymentHandler creates Stripe payment intents for card bookings.
// The wizard only format-checks card input; the actual charge runs
// through Stripe on the client with the secret returned here.  With
// no Stripe key configured the endpoint reports 503.
type PaymentHandler struct {
	Bookings *repository.BookingRepo
	Enabled  bool
}

func NewPaymentHandler(b *repository.BookingRepo, stripeKey string) *PaymentHandler {
	return &PaymentHandler{Bookings: b, Enabled: stripeKey != ""}
}

type intentReq struct {
	BookingID uint64 `json:"booking_id"`
}

// CreateIntent opens a payment intent over the booking's total.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	if !h.Enabled {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "card payments not configured"})
	}
	var req intentReq
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
	if b.PaymentMethod != model.PayCard {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not paid by card"})
	}
	if b.Status == model.BookingCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is cancelled"})
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(b.TotalCents),
		Currency: stripe.String(string(stripe.CurrencyCHF)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("booking_id", fmt.Sprintf("%d", b.ID))

	pi, err := paymentintent.New(params)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment provider error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"client_secret": pi.ClientSecret,
		"amount_cents":  b.TotalCents,
		"currency":      "chf",
	})
}
