package pricing

import (
	"testing"
	"time"

	"github.com/lackwerk/rental-service/internal/model"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

var (
	insurance = model.AddOn{Code: "insurance", Label: "Transport insurance", PricingMode: model.PricePerDay, AmountCents: 2500}
	blankets  = model.AddOn{Code: "blankets", Label: "Moving blankets", PricingMode: model.PriceFlat, AmountCents: 1500}
	dolly     = model.AddOn{Code: "dolly", Label: "Hand truck", PricingMode: model.PriceFlat, AmountCents: 1000}
)

func TestRentalDaysSingleDay(t *testing.T) {
	for _, s := range []string{"2025-01-01", "2025-06-15", "2025-12-31"} {
		if got := RentalDays(date(s), date(s)); got != 1 {
			t.Errorf("RentalDays(%s, %s) = %d, want 1", s, s, got)
		}
	}
}

func TestRentalDaysInclusive(t *testing.T) {
	if got := RentalDays(date("2025-12-01"), date("2025-12-03")); got != 3 {
		t.Fatalf("RentalDays over three calendar days = %d, want 3", got)
	}
}

func TestRentalDaysMonotonic(t *testing.T) {
	start := date("2025-12-01")
	prev := 0
	for end := start; !end.After(date("2025-12-31")); end = end.AddDate(0, 0, 1) {
		got := RentalDays(start, end)
		if got < prev {
			t.Fatalf("RentalDays decreased from %d to %d at %s", prev, got, end.Format("2006-01-02"))
		}
		prev = got
	}
}

func TestRentalDaysMissingDates(t *testing.T) {
	if got := RentalDays(time.Time{}, date("2025-12-01")); got != 0 {
		t.Errorf("missing start should yield 0, got %d", got)
	}
	if got := RentalDays(date("2025-12-01"), time.Time{}); got != 0 {
		t.Errorf("missing end should yield 0, got %d", got)
	}
}

func TestTotalScenario(t *testing.T) {
	// Fullday rental, 3 days at CHF 129/day, insurance CHF 25/day,
	// blankets flat CHF 15: 129*3 + 25*3 + 15 = 477.
	total := Total(12900, 3, model.BlockFullDay, []model.AddOn{insurance, blankets})
	if total != 47700 {
		t.Fatalf("Total = %d rappen, want 47700", total)
	}
}

func TestTotalAdditiveOverAddOnSets(t *testing.T) {
	days := 4
	base := Total(12900, days, model.BlockFullDay, nil)
	withA := Total(12900, days, model.BlockFullDay, []model.AddOn{insurance})
	withB := Total(12900, days, model.BlockFullDay, []model.AddOn{blankets, dolly})
	withBoth := Total(12900, days, model.BlockFullDay, []model.AddOn{insurance, blankets, dolly})
	if withBoth != withA+withB-base {
		t.Fatalf("add-on pricing is not additive: %d != %d + %d - %d", withBoth, withA, withB, base)
	}
}

func TestTotalIgnoresTimeBlock(t *testing.T) {
	// Half-day rentals pay the full daily rate; carried over as-is.
	full := Total(12900, 1, model.BlockFullDay, nil)
	morning := Total(12900, 1, model.BlockMorning, nil)
	if full != morning {
		t.Fatalf("time block must not change the price: %d vs %d", full, morning)
	}
}

func TestBuildQuote(t *testing.T) {
	v := model.Vehicle{ID: 1, Slug: "red", DailyRateCents: 12900}
	q := BuildQuote(v, date("2025-12-01"), date("2025-12-03"), model.BlockFullDay, []model.AddOn{insurance, blankets})
	if q.Days != 3 {
		t.Fatalf("quote days = %d, want 3", q.Days)
	}
	if q.BaseCents != 38700 {
		t.Fatalf("base = %d, want 38700", q.BaseCents)
	}
	if len(q.Lines) != 2 {
		t.Fatalf("expected 2 add-on lines, got %d", len(q.Lines))
	}
	if q.Lines[0].AmountCents != 7500 || q.Lines[1].AmountCents != 1500 {
		t.Fatalf("unexpected line amounts: %+v", q.Lines)
	}
	sum := q.BaseCents
	for _, l := range q.Lines {
		sum += l.AmountCents
	}
	if q.TotalCents != sum || q.TotalCents != 47700 {
		t.Fatalf("total = %d, want 47700 (= base + lines)", q.TotalCents)
	}
}

func TestFormatCHF(t *testing.T) {
	cases := map[int64]string{
		47700: "CHF 477.00",
		12905: "CHF 129.05",
		5:     "CHF 0.05",
		-150:  "-CHF 1.50",
	}
	for cents, want := range cases {
		if got := FormatCHF(cents); got != want {
			t.Errorf("FormatCHF(%d) = %q, want %q", cents, got, want)
		}
	}
}
