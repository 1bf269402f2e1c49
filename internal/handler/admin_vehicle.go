package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lackwerk/rental-service/internal/model"
	"github.com/lackwerk/rental-service/internal/repository"
)

// AdminVehicleHandler manages the fleet from the back office.
type AdminVehicleHandler struct {
	Vehicles *repository.VehicleRepo
}

func NewAdminVehicleHandler(v *repository.VehicleRepo) *AdminVehicleHandler {
	return &AdminVehicleHandler{Vehicles: v}
}

type adminVehiclePart struct {
	ID             uint64 `json:"id"`
	Slug           string `json:"slug"`
	DisplayName    string `json:"display_name"`
	LicensePlate   string `json:"license_plate"`
	Color          string `json:"color"`
	DailyRateCents int64  `json:"daily_rate_cents"`
	Status         string `json:"status"`
}

func toAdminVehiclePart(v model.Vehicle) adminVehiclePart {
	return adminVehiclePart{
		ID:             v.ID,
		Slug:           v.Slug,
		DisplayName:    v.DisplayName,
		LicensePlate:   v.LicensePlate,
		Color:          v.Color,
		DailyRateCents: v.DailyRateCents,
		Status:         v.Status,
	}
}

type vehicleReq struct {
	Slug           string `json:"slug"`
	DisplayName    string `json:"display_name"`
	LicensePlate   string `json:"license_plate"`
	Color          string `json:"color"`
	DailyRateCents int64  `json:"daily_rate_cents"`
	Status         string `json:"status"`
}

func (r vehicleReq) validate() string {
	if strings.TrimSpace(r.Slug) == "" {
		return "slug required"
	}
	if strings.TrimSpace(r.DisplayName) == "" {
		return "display_name required"
	}
	if r.DailyRateCents <= 0 {
		return "daily_rate_cents must be positive"
	}
	return ""
}

// List returns the full fleet, parked vans included.
func (h *AdminVehicleHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	vehicles, err := h.Vehicles.List(ctx, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]adminVehiclePart, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, toAdminVehiclePart(v))
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds a vehicle to the fleet.
func (h *AdminVehicleHandler) Create(c echo.Context) error {
	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	status := req.Status
	if status == "" {
		status = model.VehicleActive
	}
	v := model.Vehicle{
		Slug:           strings.TrimSpace(req.Slug),
		DisplayName:    strings.TrimSpace(req.DisplayName),
		LicensePlate:   strings.TrimSpace(req.LicensePlate),
		Color:          strings.TrimSpace(req.Color),
		DailyRateCents: req.DailyRateCents,
		Status:         status,
	}
	if err := h.Vehicles.Create(ctx, &v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create vehicle failed"})
	}
	return c.JSON(http.StatusCreated, toAdminVehiclePart(v))
}

// Update replaces a vehicle's editable fields.
func (h *AdminVehicleHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetByID(ctx, id)
	if errors.Is(err, repository.ErrVehicleNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	v.Slug = strings.TrimSpace(req.Slug)
	v.DisplayName = strings.TrimSpace(req.DisplayName)
	v.LicensePlate = strings.TrimSpace(req.LicensePlate)
	v.Color = strings.TrimSpace(req.Color)
	v.DailyRateCents = req.DailyRateCents
	if req.Status != "" {
		v.Status = req.Status
	}
	if err := h.Vehicles.Update(ctx, v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update vehicle failed"})
	}
	return c.JSON(http.StatusOK, toAdminVehiclePart(v))
}

// Deactivate parks a vehicle.  Existing bookings stay in the ledger;
// the vehicle just stops being offered.
func (h *AdminVehicleHandler) Deactivate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	if err := h.Vehicles.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
