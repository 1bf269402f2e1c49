package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lackwerk/rental-service/internal/availability"
	"github.com/lackwerk/rental-service/internal/model"
	"github.com/lackwerk/rental-service/internal/pricing"
	"github.com/lackwerk/rental-service/internal/repository"
	"github.com/lackwerk/rental-service/internal/utils"
)

// PublicHandler serves the unauthenticated browse API backing the
// rental pages: the fleet, per-vehicle calendars, availability and
// live price quotes.
type PublicHandler struct {
	Vehicles *repository.VehicleRepo
	Bookings *repository.BookingRepo
	AddOns   *repository.AddOnRepo
}

func NewPublicHandler(v *repository.VehicleRepo, b *repository.BookingRepo, a *repository.AddOnRepo) *PublicHandler {
	return &PublicHandler{Vehicles: v, Bookings: b, AddOns: a}
}

type vehiclePart struct {
	ID             uint64 `json:"id"`
	Slug           string `json:"slug"`
	DisplayName    string `json:"display_name"`
	Color          string `json:"color"`
	DailyRateCents int64  `json:"daily_rate_cents"`
	DailyRate      string `json:"daily_rate"`
}

func toVehiclePart(v model.Vehicle) vehiclePart {
	return vehiclePart{
		ID:             v.ID,
		Slug:           v.Slug,
		DisplayName:    v.DisplayName,
		Color:          v.Color,
		DailyRateCents: v.DailyRateCents,
		DailyRate:      pricing.FormatCHF(v.DailyRateCents),
	}
}

// ListVehicles returns the rentable fleet.
func (h *PublicHandler) ListVehicles(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	vehicles, err := h.Vehicles.List(ctx, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]vehiclePart, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, toVehiclePart(v))
	}
	return c.JSON(http.StatusOK, out)
}

// GetVehicle returns one vehicle by slug.
func (h *PublicHandler) GetVehicle(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetBySlug(ctx, c.Param("slug"))
	if errors.Is(err, repository.ErrVehicleNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toVehiclePart(v))
}

// VehicleCalendar returns the blocked dates for one vehicle so the
// date picker can grey them out.
func (h *PublicHandler) VehicleCalendar(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetBySlug(ctx, c.Param("slug"))
	if errors.Is(err, repository.ErrVehicleNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	blocking, err := h.Bookings.ListBlocking(ctx, v.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	dates := availability.BlockedDates(v.ID, blocking)
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, utils.FormatDate(d))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"vehicle_id":    v.ID,
		"blocked_dates": out,
	})
}

type fleetEntry struct {
	Vehicle           vehiclePart `json:"vehicle"`
	Available         bool        `json:"available"`
	NextAvailableDate string      `json:"next_available_date,omitempty"`
}

// FleetAvailability answers "which vans are free for this range".
// Called on every date change in the wizard UI.
func (h *PublicHandler) FleetAvailability(c echo.Context) error {
	start, err := utils.ParseDate(c.QueryParam("start"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start date"})
	}
	end, err := utils.ParseDate(c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	fleet, err := h.Vehicles.List(ctx, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	ledger, err := h.Bookings.ListAllBlocking(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	statuses := availability.FleetAvailability(fleet, start, end, ledger)
	out := make([]fleetEntry, 0, len(fleet))
	for _, v := range fleet {
		st := statuses[v.ID]
		entry := fleetEntry{Vehicle: toVehiclePart(v), Available: st.Available}
		if st.NextAvailableDate != nil {
			entry.NextAvailableDate = utils.FormatDate(*st.NextAvailableDate)
		}
		out = append(out, entry)
	}
	return c.JSON(http.StatusOK, out)
}

// Quote computes the price for a prospective rental without touching
// the ledger.  Query params: vehicle_id, start, end, time_block,
// add_ons (comma separated codes).
func (h *PublicHandler) Quote(c echo.Context) error {
	vehicleID, err := pathOrQueryID(c, "vehicle_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle_id"})
	}
	start, err := utils.ParseDate(c.QueryParam("start"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start date"})
	}
	end, err := utils.ParseDate(c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end date"})
	}
	timeBlock := c.QueryParam("time_block")
	if timeBlock == "" {
		timeBlock = model.BlockFullDay
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetByID(ctx, vehicleID)
	if errors.Is(err, repository.ErrVehicleNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var codes []string
	if raw := strings.TrimSpace(c.QueryParam("add_ons")); raw != "" {
		for _, code := range strings.Split(raw, ",") {
			if code = strings.TrimSpace(code); code != "" {
				codes = append(codes, code)
			}
		}
	}
	addOns, err := h.AddOns.GetByCodes(ctx, codes)
	if errors.Is(err, repository.ErrUnknownAddOn) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, pricing.BuildQuote(v, start, end, timeBlock, addOns))
}

// ListAddOns returns the bookable extras.
func (h *PublicHandler) ListAddOns(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	addOns, err := h.AddOns.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	type addOnPart struct {
		Code        string `json:"code"`
		Label       string `json:"label"`
		PricingMode string `json:"pricing_mode"`
		AmountCents int64  `json:"amount_cents"`
		Amount      string `json:"amount"`
	}
	out := make([]addOnPart, 0, len(addOns))
	for _, a := range addOns {
		out = append(out, addOnPart{
			Code:        a.Code,
			Label:       a.Label,
			PricingMode: a.PricingMode,
			AmountCents: a.AmountCents,
			Amount:      pricing.FormatCHF(a.AmountCents),
		})
	}
	return c.JSON(http.StatusOK, out)
}
