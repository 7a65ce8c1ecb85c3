// Package recommend ranks add-ons for a booking context. Scoring is an
// additive sum over independent signals; scores are relative ranks, not
// probabilities, and never hide an add-on from the catalog.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sunshinecoast4wd/booking-engine/pkg/enums"
	"github.com/sunshinecoast4wd/booking-engine/pkg/types"
)

const (
	categoryEssential = "Essential"
	categoryPopular   = "Popular"

	multiDayThreshold = 2
)

// Score computes the additive recommendation score for one add-on.
func Score(addon types.AddOn, ctx types.BookingContext) int {
	score := 0
	title := strings.ToLower(addon.Title)
	tags := addonTags(addon)

	// Connectivity is always worth surfacing.
	if strings.Contains(title, "internet") || tags["essential"] {
		score += 100
	}

	switch ctx.Lodging {
	case enums.LodgingGlamping:
		if strings.Contains(title, "glamping") || tags["glamping"] {
			score += 80
		}
		if strings.Contains(title, "setup") || strings.Contains(title, "premium") {
			score += 60
		}
	case enums.LodgingCamping:
		if strings.Contains(title, "camping") || tags["camping"] {
			score += 75
		}
		if strings.Contains(title, "gear") || strings.Contains(title, "equipment") {
			score += 50
		}
	}

	if ctx.DurationDays >= multiDayThreshold {
		if strings.Contains(title, "bbq") || strings.Contains(title, "beach") {
			score += 70
		}
		if strings.Contains(title, "meal") || strings.Contains(title, "food") {
			score += 60
		}
	}

	switch ctx.DriveMode {
	case enums.DriveModeSelfDrive:
		if strings.Contains(title, "gps") || strings.Contains(title, "navigation") {
			score += 65
		}
		if strings.Contains(title, "insurance") || strings.Contains(title, "protection") {
			score += 55
		}
	case enums.DriveModeGuided:
		if strings.Contains(title, "photography") || tags["experience"] {
			score += 60
		}
	}

	switch addon.Category {
	case categoryEssential:
		score += 40
	case categoryPopular:
		score += 30
	}

	return score
}

// Reason returns the display copy explaining why an add-on ranked.
func Reason(addon types.AddOn, ctx types.BookingContext) string {
	title := strings.ToLower(addon.Title)
	tags := addonTags(addon)

	if strings.Contains(title, "internet") || tags["essential"] {
		return "Essential for all tours"
	}
	if ctx.Lodging == enums.LodgingGlamping && (strings.Contains(title, "glamping") || tags["glamping"]) {
		return "Perfect for your glamping experience"
	}
	if ctx.Lodging == enums.LodgingCamping && (strings.Contains(title, "camping") || tags["camping"]) {
		return "Great for camping adventures"
	}
	if ctx.DurationDays >= multiDayThreshold && strings.Contains(title, "bbq") {
		return fmt.Sprintf("Ideal for %d-day trip", ctx.DurationDays)
	}
	if ctx.DriveMode == enums.DriveModeSelfDrive && (strings.Contains(title, "gps") || strings.Contains(title, "navigation")) {
		return "Helpful for self-drive tours"
	}
	if addon.Category == categoryEssential {
		return "Highly recommended"
	}
	if addon.Category == categoryPopular {
		return "Popular choice"
	}
	return "Recommended for you"
}

// Recommend scores every add-on and returns the positive scorers in stable
// descending order, so ties keep catalog order and identical inputs always
// produce the same ranking.
func Recommend(addons []types.AddOn, ctx types.BookingContext) []types.RecommendedAddOn {
	recommended := make([]types.RecommendedAddOn, 0, len(addons))
	for _, addon := range addons {
		score := Score(addon, ctx)
		if score <= 0 {
			continue
		}
		recommended = append(recommended, types.RecommendedAddOn{
			AddOn:  addon,
			Score:  score,
			Reason: Reason(addon, ctx),
		})
	}
	sort.SliceStable(recommended, func(i, j int) bool {
		return recommended[i].Score > recommended[j].Score
	})
	return recommended
}

// SortWithRecommendedFirst orders a catalog page: recommended add-ons first,
// then the rest alphabetically by title.
func SortWithRecommendedFirst(addons []types.AddOn, recommendedIDs map[string]bool) []types.AddOn {
	sorted := make([]types.AddOn, len(addons))
	copy(sorted, addons)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := recommendedIDs[sorted[i].ID], recommendedIDs[sorted[j].ID]
		if ri != rj {
			return ri
		}
		return sorted[i].Title < sorted[j].Title
	})
	return sorted
}

func addonTags(addon types.AddOn) map[string]bool {
	tags := make(map[string]bool)
	if addon.Metadata == nil {
		return tags
	}
	for _, tag := range addon.Metadata.Tags {
		tags[tag] = true
	}
	return tags
}
