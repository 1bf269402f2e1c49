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

// AdminCustomerHandler manages the customer directory.
type AdminCustomerHandler struct {
	Customers *repository.CustomerRepo
}

func NewAdminCustomerHandler(c *repository.CustomerRepo) *AdminCustomerHandler {
	return &AdminCustomerHandler{Customers: c}
}

type customerPart struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	DriverLicense string `json:"driver_license"`
}

func toCustomerPart(c model.Customer) customerPart {
	return customerPart{
		ID:            c.ID,
		Name:          c.Name,
		Address:       c.Address,
		Phone:         c.Phone,
		Email:         c.Email,
		DriverLicense: c.DriverLicense,
	}
}

type customerReq struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	DriverLicense string `json:"driver_license"`
}

func (r customerReq) validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "name required"
	}
	if strings.TrimSpace(r.Email) == "" {
		return "email required"
	}
	return ""
}

// List returns customers, filtered by the q search term when given.
func (h *AdminCustomerHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	customers, err := h.Customers.Search(ctx, c.QueryParam("q"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]customerPart, 0, len(customers))
	for _, cust := range customers {
		out = append(out, toCustomerPart(cust))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one customer.
func (h *AdminCustomerHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	cust, err := h.Customers.GetByID(ctx, id)
	if errors.Is(err, repository.ErrCustomerNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toCustomerPart(cust))
}

// Create adds a customer record.
func (h *AdminCustomerHandler) Create(c echo.Context) error {
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	cust := model.Customer{
		Name:          strings.TrimSpace(req.Name),
		Address:       strings.TrimSpace(req.Address),
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		DriverLicense: strings.TrimSpace(req.DriverLicense),
	}
	if err := h.Customers.Create(ctx, &cust); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create customer failed"})
	}
	return c.JSON(http.StatusCreated, toCustomerPart(cust))
}

// Update replaces a customer's fields.
func (h *AdminCustomerHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	cust, err := h.Customers.GetByID(ctx, id)
	if errors.Is(err, repository.ErrCustomerNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	cust.Name = strings.TrimSpace(req.Name)
	cust.Address = strings.TrimSpace(req.Address)
	cust.Phone = strings.TrimSpace(req.Phone)
	cust.Email = strings.ToLower(strings.TrimSpace(req.Email))
	cust.DriverLicense = strings.TrimSpace(req.DriverLicense)
	if err := h.Customers.Update(ctx, cust); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update customer failed"})
	}
	return c.JSON(http.StatusOK, toCustomerPart(cust))
}

// Delete removes a customer record.
func (h *AdminCustomerHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	if err := h.Customers.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
