// Package flow builds the category step sequence for a tour and drives the
// selection wizard as an explicit state machine.
package flow

import (
	"sort"

	"github.com/sunshinecoast4wd/booking-engine/internal/compat"
	"github.com/sunshinecoast4wd/booking-engine/pkg/types"
)

// CategoryOrder is the fixed walk order for the wizard: high-value categories
// first, essentials last. Categories the catalog introduces beyond this list
// are appended after it rather than dropped.
var CategoryOrder = []string{
	"Food & Beverage",
	"Photography",
	"Accommodation",
	"Activities",
	"Connectivity",
}

const fallbackCategory = "Other"

// GroupByCategory buckets add-ons under their category label, preserving
// catalog order inside each bucket. Uncategorized add-ons land in "Other".
func GroupByCategory(addons []types.AddOn) map[string][]types.AddOn {
	grouped := make(map[string][]types.AddOn)
	for _, addon := range addons {
		category := addon.Category
		if category == "" {
			category = fallbackCategory
		}
		grouped[category] = append(grouped[category], addon)
	}
	return grouped
}

// BuildSteps filters the catalog for the tour and materializes the ordered,
// densely numbered step sequence. Empty categories are never materialized, so
// TotalSteps is tour-dependent and must be rebuilt whenever the tour changes.
func BuildSteps(addons []types.AddOn, tourHandle string) []types.CategoryStep {
	applicable := compat.FilterForTour(addons, tourHandle)
	grouped := GroupByCategory(applicable)

	steps := make([]types.CategoryStep, 0, len(grouped))
	appendStep := func(category string) {
		bucket := grouped[category]
		if len(bucket) == 0 {
			return
		}
		delete(grouped, category)
		steps = append(steps, types.CategoryStep{
			CategoryName: category,
			StepNumber:   len(steps) + 1,
			AddOns:       bucket,
		})
	}

	for _, category := range CategoryOrder {
		appendStep(category)
	}

	// Unknown categories follow the fixed ordering, alphabetical among
	// themselves for deterministic output.
	extras := make([]string, 0, len(grouped))
	for category := range grouped {
		extras = append(extras, category)
	}
	sort.Strings(extras)
	for _, category := range extras {
		appendStep(category)
	}

	for i := range steps {
		steps[i].TotalSteps = len(steps)
	}
	return steps
}
