package model

import "time"

// VehicleStatus enumerates the catalog states of a rental vehicle.
// Only active vehicles are offered in the booking wizard; inactive
// vehicles remain visible to the back office for historical bookings.
const (
	VehicleActive   = "active"   // vehicles.status value for rentable vehicles
	VehicleInactive = "inactive" // vehicles.status value for parked catalog entries
)

// Vehicle represents one rentable transporter in the fleet.  The fleet
// is small and fixed; entries are created and edited through the admin
// back office and never deleted while bookings reference them.  This
// struct corresponds to a row in the `vehicles` table.
//
// Fields:
//  ID             – primary key identifier.
//  Slug           – short stable code used by the booking UI (e.g. "red").
//  DisplayName    – human readable name shown to customers.
//  LicensePlate   – unique registration plate.
//  Color          – body color, free text.
//  DailyRateCents – rental price per calendar day in rappen (CHF cents).
//  Status         – "active" or "inactive".
//  AvailableFrom  – first date the vehicle can be rented at all.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Vehicle struct {
	ID             uint64    // vehicles.id
	Slug           string    // vehicles.slug
	DisplayName    string    // vehicles.display_name
	LicensePlate   string    // vehicles.license_plate
	Color          string    // vehicles.color
	DailyRateCents int64     // vehicles.daily_rate_cents
	Status         string    // vehicles.status
	AvailableFrom  time.Time // vehicles.available_from (DATE)
	CreatedAt      time.Time // vehicles.created_at
	UpdatedAt      time.Time // vehicles.updated_at
}

// IsActive reports whether the vehicle can be offered for new bookings.
func (v Vehicle) IsActive() bool { return v.Status == VehicleActive }
