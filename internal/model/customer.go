package model

import "time"

// Customer is a contact record in the shop's customer database.  The
// wizard creates or reuses a customer at finalize time keyed by the
// normalized email address; the back office manages the records
// directly.  This struct corresponds to a row in the `customers` table.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – full name.
//  Address       – postal address, single line.
//  Phone         – phone number (+41 or 0 prefixed).
//  Email         – unique, stored lower-cased.
//  DriverLicense – driver licence number, required for rentals.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Customer struct {
	ID            uint64    // customers.id
	Name          string    // customers.name
	Address       string    // customers.address
	Phone         string    // customers.phone
	Email         string    // customers.email
	DriverLicense string    // customers.driver_license
	CreatedAt     time.Time // customers.created_at
	UpdatedAt     time.Time // customers.updated_at
}
