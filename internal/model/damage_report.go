package model

import "time"

// Damage report status values.  Reports start as "pending" and move
// through in_progress <- pending, completed|cancelled <- pending|in_progress.
const (
	ReportPending    = "pending"
	ReportInProgress = "in_progress"
	ReportCompleted  = "completed"
	ReportCancelled  = "cancelled"
)

// DamageReport is a customer-submitted repair intake.  It carries no
// scheduling or conflict logic; the back office works through reports
// via status transitions.  This struct corresponds to a row in the
// `damage_reports` table.
//
// Fields:
//  ID            – primary key identifier.
//  Reference     – unique reference handed to the customer (UUID).
//  CustomerName  – reporter's full name.
//  CustomerPhone – reporter's phone number.
//  CustomerEmail – reporter's email address.
//  VehicleMake   – make of the damaged car.
//  VehicleModel  – model of the damaged car.
//  LicensePlate  – plate of the damaged car.
//  DamagedParts  – affected part codes (stored comma-joined).
//  Description   – free-text damage description.
//  Status        – see the status constants above.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type DamageReport struct {
	ID            uint64    // damage_reports.id
	Reference     string    // damage_reports.reference
	CustomerName  string    // damage_reports.customer_name
	CustomerPhone string    // damage_reports.customer_phone
	CustomerEmail string    // damage_reports.customer_email
	VehicleMake   string    // damage_reports.vehicle_make
	VehicleModel  string    // damage_reports.vehicle_model
	LicensePlate  string    // damage_reports.license_plate
	DamagedParts  []string  // damage_reports.damaged_parts (comma-joined)
	Description   string    // damage_reports.description
	Status        string    // damage_reports.status
	CreatedAt     time.Time // damage_reports.created_at
	UpdatedAt     time.Time // damage_reports.updated_at
}
