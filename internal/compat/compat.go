// Package compat decides whether catalog add-ons may be offered for a tour.
// The rules fail safe: an add-on that states no compatibility is never shown,
// so catalog mistakes hide extras instead of wrongly exposing them.
package compat

import (
	"sort"
	"strings"

	"github.com/sunshinecoast4wd/booking-engine/pkg/types"
)

// Wildcard inside applicable_tours marks an add-on as valid for every tour.
// It carries no meaning as a tour handle.
const Wildcard = "*"

// IsApplicable reports whether the add-on may be offered for the tour with
// the given handle. Blank handles, missing metadata and empty compatibility
// lists all report false.
func IsApplicable(addon types.AddOn, tourHandle string) bool {
	if strings.TrimSpace(tourHandle) == "" {
		return false
	}
	if addon.Metadata == nil {
		return false
	}
	tours := addon.Metadata.ApplicableTours
	if len(tours) == 0 {
		return false
	}
	for _, handle := range tours {
		if handle == Wildcard {
			return true
		}
	}
	for _, handle := range tours {
		if handle == tourHandle {
			return true
		}
	}
	return false
}

// FilterForTour returns the add-ons applicable to the tour, preserving input
// order. An empty handle means "no tour context yet" and returns the input
// unfiltered; this deliberately differs from the single-item check.
func FilterForTour(addons []types.AddOn, tourHandle string) []types.AddOn {
	if tourHandle == "" {
		return addons
	}
	filtered := make([]types.AddOn, 0, len(addons))
	for _, addon := range addons {
		if IsApplicable(addon, tourHandle) {
			filtered = append(filtered, addon)
		}
	}
	return filtered
}

// DetectIncompatible returns the selected add-ons that fail the
// compatibility check against the new tour handle. Drives the forced
// removal on tour change.
func DetectIncompatible(selected []types.SelectedAddOn, newTourHandle string) []types.SelectedAddOn {
	incompatible := make([]types.SelectedAddOn, 0)
	for _, item := range selected {
		if !IsApplicable(item.AddOn, newTourHandle) {
			incompatible = append(incompatible, item)
		}
	}
	return incompatible
}

// HasApplicableTours reports whether the add-on declares compatibility
// metadata at all. Add-ons without it are hidden everywhere, so this
// distinguishes "restricted" from "misconfigured" in admin tooling.
func HasApplicableTours(addon types.AddOn) bool {
	return addon.Metadata != nil && len(addon.Metadata.ApplicableTours) > 0
}

// TourHandles collects the unique non-wildcard tour handles referenced
// across the add-ons, sorted for stable output.
func TourHandles(addons []types.AddOn) []string {
	seen := make(map[string]bool)
	handles := make([]string, 0)
	for _, addon := range addons {
		if addon.Metadata == nil {
			continue
		}
		for _, handle := range addon.Metadata.ApplicableTours {
			if handle == Wildcard || seen[handle] {
				continue
			}
			seen[handle] = true
			handles = append(handles, handle)
		}
	}
	sort.Strings(handles)
	return handles
}
