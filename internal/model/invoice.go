package model

import "time"

// Invoice status values.
const (
	InvoiceOpen = "open"
	InvoicePaid = "paid"
	InvoiceVoid = "void"
)

// Invoice is a billing record generated from a committed booking.  The
// amount is taken from the booking's total at generation time; document
// rendering (PDF/DOCX) is out of scope and handled elsewhere.  This
// struct corresponds to a row in the `invoices` table.
//
// Fields:
//  ID          – primary key identifier.
//  Number      – unique human readable number (LW-<year>-<seq>).
//  BookingID   – booking the invoice bills.
//  CustomerID  – customer billed.
//  AmountCents – invoiced amount in rappen.
//  Status      – "open", "paid" or "void".
//  IssuedAt    – issue timestamp.
type Invoice struct {
	ID          uint64    // invoices.id
	Number      string    // invoices.number
	BookingID   uint64    // invoices.booking_id
	CustomerID  uint64    // invoices.customer_id
	AmountCents int64     // invoices.amount_cents
	Status      string    // invoices.status
	IssuedAt    time.Time // invoices.issued_at
}
