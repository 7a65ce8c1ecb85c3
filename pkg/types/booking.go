package types

import (
	"time"

	"github.com/sunshinecoast4wd/booking-engine/pkg/enums"
)

// Tour is an immutable catalog tour held for the duration of a booking
// session. Handle is the stable slug used as the compatibility key.
type Tour struct {
	ID              string          `json:"id"`
	Handle          string          `json:"handle"`
	VariantID       string          `json:"variant_id,omitempty"`
	Title           string          `json:"title"`
	BasePriceMinor  int64           `json:"base_price_minor"`
	CurrencyCode    string          `json:"currency_code"`
	DurationDays    int             `json:"duration_days"`
	MaxParticipants int             `json:"max_participants"`
	Lodging         enums.Lodging   `json:"lodging,omitempty"`
	DriveMode       enums.DriveMode `json:"drive_mode,omitempty"`
}

// AddOnMetadata is the metadata bag carried on catalog add-ons.
// ApplicableTours holds tour handles, or the "*" wildcard, or nothing at all
// (in which case the add-on is never shown).
type AddOnMetadata struct {
	ApplicableTours []string `json:"applicable_tours,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	RecommendedFor  []string `json:"recommended_for,omitempty"`
	QuantityAllowed bool     `json:"quantity_allowed,omitempty"`
}

// AddOn is a read-only catalog record.
type AddOn struct {
	ID             string            `json:"id"`
	Handle         string            `json:"handle,omitempty"`
	VariantID      string            `json:"variant_id,omitempty"`
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`
	Category       string            `json:"category"`
	PricingUnit    enums.PricingUnit `json:"pricing_unit"`
	BasePriceMinor int64             `json:"base_price_minor"`
	CurrencyCode   string            `json:"currency_code,omitempty"`
	Available      bool              `json:"available"`
	Metadata       *AddOnMetadata    `json:"metadata,omitempty"`
}

// SelectedAddOn is an AddOn chosen into the cart with a quantity in [1, 99]
// and a derived line total in minor units.
type SelectedAddOn struct {
	AddOn          AddOn `json:"addon"`
	Quantity       int   `json:"quantity"`
	LineTotalMinor int64 `json:"line_total_minor"`
}

// BookingContext carries the calculator inputs derived from the selected
// tour. It is never stored.
type BookingContext struct {
	DurationDays int             `json:"duration_days"`
	Participants int             `json:"participants"`
	Lodging      enums.Lodging   `json:"lodging,omitempty"`
	DriveMode    enums.DriveMode `json:"drive_mode,omitempty"`
}

// CartState is the aggregate root for one booking session.
type CartState struct {
	Tour           *Tour           `json:"tour,omitempty"`
	TourStartDate  *time.Time      `json:"tour_start_date,omitempty"`
	Participants   int             `json:"participants"`
	SelectedAddOns []SelectedAddOn `json:"selected_addons"`
	TourTotalMinor int64           `json:"tour_total_minor"`
	SubtotalMinor  int64           `json:"subtotal_minor"`
	TotalMinor     int64           `json:"total_minor"`
	RemoteCartID   string          `json:"remote_cart_id,omitempty"`
}

// Context derives the pricing/recommendation input from the cart's tour and
// participant count. Zero-valued when no tour is set.
func (c CartState) Context() BookingContext {
	ctx := BookingContext{Participants: c.Participants}
	if c.Tour != nil {
		ctx.DurationDays = c.Tour.DurationDays
		ctx.Lodging = c.Tour.Lodging
		ctx.DriveMode = c.Tour.DriveMode
	}
	return ctx
}

// CategoryStep is one screen of the add-on wizard, derived from the tour and
// catalog on demand and never persisted.
type CategoryStep struct {
	CategoryName string  `json:"category_name"`
	StepNumber   int     `json:"step_number"`
	TotalSteps   int     `json:"total_steps"`
	AddOns       []AddOn `json:"addons"`
}

// RecommendedAddOn pairs an add-on with its ranking score and display reason.
type RecommendedAddOn struct {
	AddOn  AddOn  `json:"addon"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}
