// Package repository defines the data access layer and the sentinel
// error values shared across repositories.  Handlers use these
// sentinels to pick HTTP status codes without inspecting SQL errors.
package repository

import "errors"

// ErrVehicleNotFound is returned when a vehicle ID or slug does not
// exist in the catalog.  Handlers translate this into 404.
var ErrVehicleNotFound = errors.New("vehicle not found")

// ErrBookingNotFound is returned when a booking ID does not exist.
// Handlers translate this into 404.
var ErrBookingNotFound = errors.New("booking not found")

// ErrBookingConflict is returned by the conflict-checked create when
// the requested dates overlap an existing blocking booking for the
// same vehicle.  Handlers translate this into 409 together with the
// next-available-date hint.
var ErrBookingConflict = errors.New("booking dates conflict with an existing booking")

// ErrBadTransition is returned when a status change is not in the
// allowed transition relation.  Handlers translate this into 400.
var ErrBadTransition = errors.New("status transition not allowed")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they may not touch.  Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")
