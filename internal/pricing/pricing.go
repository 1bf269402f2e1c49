// Package pricing computes rental prices.  All arithmetic is done in
// integer rappen (CHF cents) so that repeated per-day multiplications
// cannot drift; amounts are rendered to two decimals only at the
// presentation edge via FormatCHF.
package pricing

import (
	"fmt"
	"time"

	"github.com/lackwerk/rental-service/internal/model"
)

// RentalDays counts the inclusive calendar days between start and end.
// A single-day rental yields 1; a missing date yields 0 so that the
// wizard can show an empty quote while the form is incomplete.  The
// result never drops below 1 once both dates are set, even when end
// precedes start (that ordering is rejected by validation before a
// booking can be committed).
func RentalDays(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// Line is one priced row of a quote, shown on the review step.
type Line struct {
	Code        string `json:"code"`
	Label       string `json:"label"`
	AmountCents int64  `json:"amount_cents"`
}

// Quote decomposes a rental price.  TotalCents is always the sum of
// BaseCents and all add-on lines.
type Quote struct {
	Days       int    `json:"days"`
	TimeBlock  string `json:"time_block"`
	BaseCents  int64  `json:"base_cents"`
	Lines      []Line `json:"lines"`
	TotalCents int64  `json:"total_cents"`
}

// Total computes the rental price in rappen:
//
//	dailyRate*days + Σ(per-day add-on * days) + Σ(flat add-on)
//
// The time block is accepted for signature parity with the wizard but
// does not change the price: half-day rentals pay the full daily rate.
// That is a known product gap carried over deliberately, not a bug.
func Total(dailyRateCents int64, days int, timeBlock string, addOns []model.AddOn) int64 {
	_ = timeBlock
	total := dailyRateCents * int64(days)
	for _, a := range addOns {
		total += addOnCost(a, days)
	}
	return total
}

func addOnCost(a model.AddOn, days int) int64 {
	if a.PricingMode == model.PricePerDay {
		return a.AmountCents * int64(days)
	}
	return a.AmountCents
}

// BuildQuote prices a vehicle and add-on selection for the inclusive
// range [start, end] and returns the decomposed quote used by the
// review step and the admin invoice screen.
func BuildQuote(v model.Vehicle, start, end time.Time, timeBlock string, addOns []model.AddOn) Quote {
	days := RentalDays(start, end)
	q := Quote{
		Days:      days,
		TimeBlock: timeBlock,
		BaseCents: v.DailyRateCents * int64(days),
	}
	q.TotalCents = q.BaseCents
	for _, a := range addOns {
		cost := addOnCost(a, days)
		q.Lines = append(q.Lines, Line{Code: a.Code, Label: a.Label, AmountCents: cost})
		q.TotalCents += cost
	}
	return q
}

// FormatCHF renders rappen as a CHF amount with two decimals.
func FormatCHF(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%sCHF %d.%02d", sign, cents/100, cents%100)
}
