package pricing

import (
	"testing"

	"github.com/sunshinecoast4wd/booking-engine/pkg/enums"
	"github.com/sunshinecoast4wd/booking-engine/pkg/types"
)

func addon(id string, unit enums.PricingUnit, base int64) types.AddOn {
	return types.AddOn{ID: id, Title: id, PricingUnit: unit, BasePriceMinor: base}
}

func TestLineTotalUnits(t *testing.T) {
	t.Parallel()

	ctx := types.BookingContext{DurationDays: 2, Participants: 3}

	tests := []struct {
		name string
		a    types.AddOn
		qty  int
		want int64
	}{
		{"per booking ignores context", addon("picnic", enums.PricingUnitPerBooking, 8500), 2, 17000},
		{"per day scales with duration", addon("bbq", enums.PricingUnitPerDay, 18000), 1, 36000},
		{"per person scales with participants", addon("internet", enums.PricingUnitPerPerson, 5000), 1, 15000},
		{"per day with quantity", addon("bbq", enums.PricingUnitPerDay, 18000), 2, 72000},
		{"unknown unit falls back to per booking", addon("mystery", enums.PricingUnit("per_gram"), 1000), 3, 3000},
		{"empty unit falls back to per booking", addon("blank", enums.PricingUnit(""), 1000), 1, 1000},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := LineTotal(tt.a, tt.qty, ctx); got != tt.want {
				t.Fatalf("LineTotal(%s, %d) = %d, want %d", tt.a.ID, tt.qty, got, tt.want)
			}
		})
	}
}

func TestLineTotalDeterministicAndLinearInDays(t *testing.T) {
	t.Parallel()

	bbq := addon("bbq", enums.PricingUnitPerDay, 18000)
	ctx := types.BookingContext{DurationDays: 4, Participants: 2}

	first := LineTotal(bbq, 3, ctx)
	second := LineTotal(bbq, 3, ctx)
	if first != second {
		t.Fatalf("LineTotal is not deterministic: %d != %d", first, second)
	}

	oneDay := LineTotal(bbq, 3, types.BookingContext{DurationDays: 1, Participants: 2})
	if first != 4*oneDay {
		t.Fatalf("per_day should be linear in duration: %d != 4 × %d", first, oneDay)
	}
}

func TestTourTotal(t *testing.T) {
	t.Parallel()

	tour := types.Tour{Handle: "2d-fraser-rainbow", BasePriceMinor: 400000, DurationDays: 2}
	if got := TourTotal(tour, 3); got != 1200000 {
		t.Fatalf("TourTotal = %d, want 1200000", got)
	}
}

func TestCartTotalsScenario(t *testing.T) {
	t.Parallel()

	tour := types.Tour{Handle: "2d-fraser-rainbow", BasePriceMinor: 400000, DurationDays: 2}
	selected := []types.SelectedAddOn{
		{AddOn: addon("bbq", enums.PricingUnitPerDay, 18000), Quantity: 1},
		{AddOn: addon("picnic", enums.PricingUnitPerBooking, 8500), Quantity: 2},
	}

	totals := CartTotals(&tour, 3, selected)
	if totals.TourTotalMinor != 1200000 {
		t.Fatalf("tour total = %d, want 1200000", totals.TourTotalMinor)
	}
	addonsPart := totals.SubtotalMinor - totals.TourTotalMinor
	if addonsPart != 53000 {
		t.Fatalf("add-ons subtotal = %d, want 53000", addonsPart)
	}
	if totals.TotalMinor != totals.SubtotalMinor {
		t.Fatalf("total %d should equal subtotal %d", totals.TotalMinor, totals.SubtotalMinor)
	}
}

func TestCartTotalsWithoutTour(t *testing.T) {
	t.Parallel()

	selected := []types.SelectedAddOn{
		{AddOn: addon("picnic", enums.PricingUnitPerBooking, 8500), Quantity: 1},
	}
	totals := CartTotals(nil, 2, selected)
	if totals.TourTotalMinor != 0 {
		t.Fatalf("tour total should be zero without a tour, got %d", totals.TourTotalMinor)
	}
	if totals.SubtotalMinor != 8500 {
		t.Fatalf("subtotal = %d, want 8500", totals.SubtotalMinor)
	}
}

func TestAddOnsSubtotalMatchesCartTotals(t *testing.T) {
	t.Parallel()

	tour := types.Tour{Handle: "3d-fraser-rainbow", BasePriceMinor: 600000, DurationDays: 3}
	selected := []types.SelectedAddOn{
		{AddOn: addon("bbq", enums.PricingUnitPerDay, 18000), Quantity: 2},
		{AddOn: addon("internet", enums.PricingUnitPerPerson, 5000), Quantity: 1},
	}
	ctx := types.BookingContext{DurationDays: 3, Participants: 4}

	totals := CartTotals(&tour, 4, selected)
	if got := AddOnsSubtotal(selected, ctx); got != totals.SubtotalMinor-totals.TourTotalMinor {
		t.Fatalf("AddOnsSubtotal %d does not match CartTotals breakdown %d", got, totals.SubtotalMinor-totals.TourTotalMinor)
	}
}

func TestPriceImpact(t *testing.T) {
	t.Parallel()

	ctx := types.BookingContext{DurationDays: 3, Participants: 2}
	bbq := addon("bbq", enums.PricingUnitPerDay, 18000)

	if got := PriceImpact(bbq, 1, ctx, true); got != 54000 {
		t.Fatalf("adding impact = %d, want 54000", got)
	}
	if got := PriceImpact(bbq, 1, ctx, false); got != -54000 {
		t.Fatalf("removing impact = %d, want -54000", got)
	}
	if got := PriceImpact(bbq, 2, ctx, false); got != -108000 {
		t.Fatalf("removing two = %d, want -108000", got)
	}
}
