package enums

import "fmt"

// Lodging classifies where guests sleep on a multi-day tour.
type Lodging string

const (
	LodgingGlamping Lodging = "glamping"
	LodgingCamping  Lodging = "camping"
	LodgingHotel    Lodging = "hotel"
	LodgingNone     Lodging = "none"
)

var validLodgings = []Lodging{
	LodgingGlamping,
	LodgingCamping,
	LodgingHotel,
	LodgingNone,
}

// String implements fmt.Stringer.
func (l Lodging) String() string {
	return string(l)
}

// IsValid reports whether the value is a known Lodging.
func (l Lodging) IsValid() bool {
	for _, candidate := range validLodgings {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLodging converts raw input into a Lodging.
func ParseLodging(value string) (Lodging, error) {
	for _, candidate := range validLodgings {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lodging %q", value)
}
