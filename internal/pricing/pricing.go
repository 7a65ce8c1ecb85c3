// Package pricing turns base prices, pricing units and booking context into
// line and cart totals. Everything is computed in integer minor currency
// units; display formatting lives in pkg/money.
package pricing

import (
	"github.com/sunshinecoast4wd/booking-engine/pkg/enums"
	"github.com/sunshinecoast4wd/booking-engine/pkg/types"
)

// LineTotal computes the minor-unit total for one selected add-on line.
// Quantity must already be clamped to [1, 99] by the caller. Unknown pricing
// units charge flat per booking so a new catalog unit never zeroes a price.
func LineTotal(addon types.AddOn, quantity int, ctx types.BookingContext) int64 {
	unit := addon.BasePriceMinor
	switch addon.PricingUnit.Normalize() {
	case enums.PricingUnitPerDay:
		unit = addon.BasePriceMinor * int64(ctx.DurationDays)
	case enums.PricingUnitPerPerson:
		unit = addon.BasePriceMinor * int64(ctx.Participants)
	}
	return unit * int64(quantity)
}

// TourTotal computes the tour line in minor units.
func TourTotal(tour types.Tour, participants int) int64 {
	return tour.BasePriceMinor * int64(participants)
}

// Totals holds the cart aggregate amounts. Total equals Subtotal until an
// explicit additive step (tax) is layered on outside this package.
type Totals struct {
	TourTotalMinor int64
	SubtotalMinor  int64
	TotalMinor     int64
}

// CartTotals recomputes every aggregate from scratch. Each line total is
// recomputed too, so stored line totals can be refreshed from the result.
func CartTotals(tour *types.Tour, participants int, selected []types.SelectedAddOn) Totals {
	var totals Totals
	ctx := types.BookingContext{Participants: participants}
	if tour != nil {
		ctx.DurationDays = tour.DurationDays
		totals.TourTotalMinor = TourTotal(*tour, participants)
	}
	sum := totals.TourTotalMinor
	for _, item := range selected {
		sum += LineTotal(item.AddOn, item.Quantity, ctx)
	}
	totals.SubtotalMinor = sum
	totals.TotalMinor = sum
	return totals
}

// AddOnsSubtotal sums the add-on lines alone, excluding the tour.
func AddOnsSubtotal(selected []types.SelectedAddOn, ctx types.BookingContext) int64 {
	var sum int64
	for _, item := range selected {
		sum += LineTotal(item.AddOn, item.Quantity, ctx)
	}
	return sum
}

// PriceImpact is the signed minor-unit cart delta of toggling an add-on:
// the line total when adding, its negation when removing.
func PriceImpact(addon types.AddOn, quantity int, ctx types.BookingContext, adding bool) int64 {
	total := LineTotal(addon, quantity, ctx)
	if adding {
		return total
	}
	return -total
}
