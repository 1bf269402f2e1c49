package model

import "time"

// Add-on pricing modes.  Per-day add-ons are multiplied by the rental
// day count; flat add-ons are charged once per booking.
const (
	PricePerDay = "per_day"
	PriceFlat   = "flat"
)

// AddOn is an optional extra offered during booking, such as transport
// insurance or moving blankets.  Add-ons replace the original boolean
// option flags with a tagged catalog so new extras need no schema
// change.  This struct corresponds to a row in the `add_ons` table.
//
// Fields:
//  ID          – primary key identifier.
//  Code        – stable machine code (e.g. "insurance", "blankets").
//  Label       – human readable label shown in the wizard.
//  PricingMode – "per_day" or "flat".
//  AmountCents – price in rappen (per day or once, per PricingMode).
//  Active      – whether the add-on is currently offered.
//  CreatedAt   – creation timestamp.
type AddOn struct {
	ID          uint64    // add_ons.id
	Code        string    // add_ons.code
	Label       string    // add_ons.label
	PricingMode string    // add_ons.pricing_mode
	AmountCents int64     // add_ons.amount_cents
	Active      bool      // add_ons.active
	CreatedAt   time.Time // add_ons.created_at
}
