// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a rental booking is
// confirmed by the back office.  It carries enough context for
// downstream consumers to log or notify without hitting the primary
// database.
type BookingConfirmedEvent struct {
	BookingID     uint64   `json:"booking_id"`
	VehicleID     uint64   `json:"vehicle_id"`
	VehicleName   string   `json:"vehicle_name"`
	CustomerID    uint64   `json:"customer_id"`
	CustomerName  string   `json:"customer_name"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	TimeBlock     string   `json:"time_block"`
	AddOnCodes    []string `json:"add_ons"`
	PaymentMethod string   `json:"payment_method"`
	TotalCents    int64    `json:"total_cents"`
	ConfirmedAt   string   `json:"confirmed_at"`
}
