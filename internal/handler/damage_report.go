package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lackwerk/rental-service/internal/model"
	"github.com/lackwerk/rental-service/internal/repository"
)

// DamageReportHandler covers both sides of the repair intake form:
// the public submission and the back-office work queue.
type DamageReportHandler struct {
	Reports *repository.DamageReportRepo
}

func NewDamageReportHandler(r *repository.DamageReportRepo) *DamageReportHandler {
	return &DamageReportHandler{Reports: r}
}

type reportPart struct {
	ID            uint64   `json:"id"`
	Reference     string   `json:"reference"`
	CustomerName  string   `json:"customer_name"`
	CustomerPhone string   `json:"customer_phone"`
	CustomerEmail string   `json:"customer_email"`
	VehicleMake   string   `json:"vehicle_make"`
	VehicleModel  string   `json:"vehicle_model"`
	LicensePlate  string   `json:"license_plate"`
	DamagedParts  []string `json:"damaged_parts"`
	Description   string   `json:"description"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"created_at"`
}

func toReportPart(r model.DamageReport) reportPart {
	return reportPart{
		ID:            r.ID,
		Reference:     r.Reference,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		CustomerEmail: r.CustomerEmail,
		VehicleMake:   r.VehicleMake,
		VehicleModel:  r.VehicleModel,
		LicensePlate:  r.LicensePlate,
		DamagedParts:  r.DamagedParts,
		Description:   r.Description,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
}

type reportCreateReq struct {
	CustomerName  string   `json:"customer_name"`
	CustomerPhone string   `json:"customer_phone"`
	CustomerEmail string   `json:"customer_email"`
	VehicleMake   string   `json:"vehicle_make"`
	VehicleModel  string   `json:"vehicle_model"`
	LicensePlate  string   `json:"license_plate"`
	DamagedParts  []string `json:"damaged_parts"`
	Description   string   `json:"description"`
}

func (r reportCreateReq) validate() string {
	if strings.TrimSpace(r.CustomerName) == "" {
		return "customer_name required"
	}
	if strings.TrimSpace(r.CustomerPhone) == "" && strings.TrimSpace(r.CustomerEmail) == "" {
		return "phone or email required"
	}
	if strings.TrimSpace(r.LicensePlate) == "" {
		return "license_plate required"
	}
	if len(r.DamagedParts) == 0 && strings.TrimSpace(r.Description) == "" {
		return "damaged_parts or description required"
	}
	return ""
}

// Create accepts a public damage report submission.  The caller gets
// back a reference code to quote on the phone.
func (h *DamageReportHandler) Create(c echo.Context) error {
	var req reportCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	rep := model.DamageReport{
		Reference:     uuid.NewString(),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		CustomerEmail: strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		VehicleMake:   strings.TrimSpace(req.VehicleMake),
		VehicleModel:  strings.TrimSpace(req.VehicleModel),
		LicensePlate:  strings.TrimSpace(req.LicensePlate),
		DamagedParts:  req.DamagedParts,
		Description:   strings.TrimSpace(req.Description),
		Status:        model.ReportPending,
	}
	if err := h.Reports.Create(ctx, &rep); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create report failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"reference": rep.Reference,
		"status":    rep.Status,
	})
}

// List returns reports for the back office, optionally by status.
func (h *DamageReportHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	reports, err := h.Reports.List(ctx, c.QueryParam("status"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]reportPart, 0, len(reports))
	for _, rep := range reports {
		out = append(out, toReportPart(rep))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateStatus moves a report through its work states.
func (h *DamageReportHandler) UpdateStatus(c echo.Context) error {
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

	rep, err := h.Reports.UpdateStatus(ctx, id, req.Status)
	switch {
	case errors.Is(err, repository.ErrReportNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
	case errors.Is(err, repository.ErrBadTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "status transition not allowed"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toReportPart(rep))
}
