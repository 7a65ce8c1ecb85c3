package enums

import "fmt"

// PricingUnit describes how an add-on base price scales into a line total.
type PricingUnit string

const (
	PricingUnitPerBooking PricingUnit = "per_booking"
	PricingUnitPerDay     PricingUnit = "per_day"
	PricingUnitPerPerson  PricingUnit = "per_person"
)

var validPricingUnits = []PricingUnit{
	PricingUnitPerBooking,
	PricingUnitPerDay,
	PricingUnitPerPerson,
}

// String implements fmt.Stringer.
func (p PricingUnit) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PricingUnit.
func (p PricingUnit) IsValid() bool {
	for _, candidate := range validPricingUnits {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePricingUnit converts raw input into a PricingUnit.
func ParsePricingUnit(value string) (PricingUnit, error) {
	for _, candidate := range validPricingUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pricing unit %q", value)
}

// Normalize maps unknown units onto per_booking so an unrecognized catalog
// value never zeroes a price.
func (p PricingUnit) Normalize() PricingUnit {
	if p.IsValid() {
		return p
	}
	return PricingUnitPerBooking
}
