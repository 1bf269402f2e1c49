// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/lackwerk/rental-service/internal/handler"
	"github.com/lackwerk/rental-service/internal/middleware"
	"github.com/lackwerk/rental-service/internal/model"
)

// RegisterRoutes registers baseline routes that need no handler
// state.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the back-office auth endpoints.  Login and
// refresh are open; logout and /me require a valid access token so
// the revoke-all branch of Logout can read the user claim.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.POST("/auth/logout", a.Logout)
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated rental site API: the
// fleet, availability, quotes, add-ons and the damage intake form.
// The cache middleware, when enabled, sits on the read endpoints
// that the wizard UI polls on every date change.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, d *handler.DamageReportHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("/vehicles", p.ListVehicles)
	g.GET("/vehicles/:slug", p.GetVehicle)
	g.GET("/vehicles/:slug/calendar", p.VehicleCalendar)
	g.GET("/availability", p.FleetAvailability)
	g.GET("/quote", p.Quote)
	g.GET("/add-ons", p.ListAddOns)

	// POST must bypass the response cache
	e.POST("/v1/damage-reports", d.Create)
}

// RegisterWizard registers the booking wizard session API.  The
// wizard is anonymous; drafts are addressed by their random ID.
func RegisterWizard(e *echo.Echo, w *handler.WizardHandler, pay *handler.PaymentHandler) {
	g := e.Group("/v1/wizard/drafts")
	g.POST("", w.CreateDraft)
	g.GET("/:id", w.GetDraft)
	g.DELETE("/:id", w.DeleteDraft)
	g.PUT("/:id/rental", w.UpdateRental)
	g.PUT("/:id/customer", w.UpdateCustomer)
	g.PUT("/:id/add-ons", w.UpdateAddOns)
	g.PUT("/:id/payment", w.UpdatePayment)
	g.POST("/:id/next", w.Next)
	g.POST("/:id/back", w.Back)
	g.GET("/:id/quote", w.Quote)
	g.POST("/:id/finalize", w.Finalize)

	e.POST("/v1/payments/intent", pay.CreateIntent)
}

// AdminHandlers bundles everything mounted under /v1/admin.
type AdminHandlers struct {
	Bookings  *handler.AdminBookingHandler
	Vehicles  *handler.AdminVehicleHandler
	Customers *handler.AdminCustomerHandler
	Invoices  *handler.AdminInvoiceHandler
	Reports   *handler.DamageReportHandler
}

// RegisterAdmin registers the back-office API.  Staff can work the
// calendar, customers and reports; fleet and invoice management is
// admin only.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleStaff),
	)

	g.GET("/bookings", h.Bookings.List)
	g.GET("/bookings/:id", h.Bookings.Get)
	g.POST("/bookings", h.Bookings.Create)
	g.PATCH("/bookings/:id/status", h.Bookings.UpdateStatus)
	g.DELETE("/bookings/:id", h.Bookings.Delete)

	g.GET("/customers", h.Customers.List)
	g.GET("/customers/:id", h.Customers.Get)
	g.POST("/customers", h.Customers.Create)
	g.PUT("/customers/:id", h.Customers.Update)

	g.GET("/damage-reports", h.Reports.List)
	g.PATCH("/damage-reports/:id/status", h.Reports.UpdateStatus)

	admin := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	admin.GET("/vehicles", h.Vehicles.List)
	admin.POST("/vehicles", h.Vehicles.Create)
	admin.PUT("/vehicles/:id", h.Vehicles.Update)
	admin.DELETE("/vehicles/:id", h.Vehicles.Deactivate)

	admin.GET("/invoices", h.Invoices.List)
	admin.POST("/invoices", h.Invoices.Create)
	admin.PATCH("/invoices/:id/status", h.Invoices.UpdateStatus)

	admin.DELETE("/customers/:id", h.Customers.Delete)
}
