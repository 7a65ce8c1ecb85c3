// Package money formats integer minor-unit amounts for display. All engine
// arithmetic stays in minor units; conversion to major units happens here and
// nowhere else.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sunshinecoast4wd/booking-engine/pkg/enums"
)

const defaultCurrency = "AUD"

var symbols = map[string]string{
	"AUD": "$",
	"USD": "$",
	"NZD": "$",
	"EUR": "€",
	"GBP": "£",
}

// Format renders a minor-unit amount as a currency string, e.g. 36000 ->
// "$360.00".
func Format(minor int64, currencyCode string) string {
	if currencyCode == "" {
		currencyCode = defaultCurrency
	}
	amount := decimal.NewFromInt(minor).Div(decimal.NewFromInt(100))
	symbol, ok := symbols[currencyCode]
	if !ok {
		return fmt.Sprintf("%s %s", currencyCode, amount.StringFixed(2))
	}
	return symbol + amount.StringFixed(2)
}

// FormatUnit renders a base price with its pricing-unit suffix, e.g.
// "$180.00/day" or "$85.00 per booking".
func FormatUnit(minor int64, unit enums.PricingUnit, currencyCode string) string {
	price := Format(minor, currencyCode)
	switch unit.Normalize() {
	case enums.PricingUnitPerDay:
		return price + "/day"
	case enums.PricingUnitPerPerson:
		return price + "/person"
	default:
		return price + " per booking"
	}
}

// PerPerson splits a total evenly across participants for display. Returns
// the total unchanged when participants is not positive.
func PerPerson(totalMinor int64, participants int) string {
	if participants <= 0 {
		return Format(totalMinor, defaultCurrency)
	}
	amount := decimal.NewFromInt(totalMinor).
		Div(decimal.NewFromInt(int64(participants))).
		Div(decimal.NewFromInt(100))
	return symbols[defaultCurrency] + amount.StringFixed(2)
}
