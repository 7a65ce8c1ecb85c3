package flow

import (
	"testing"

	"github.com/sunshinecoast4wd/booking-engine/pkg/types"
)

func catalogAddOn(id, category string, tours ...string) types.AddOn {
	return types.AddOn{
		ID:       id,
		Title:    id,
		Category: category,
		Metadata: &types.AddOnMetadata{ApplicableTours: tours},
	}
}

func TestBuildStepsFixedOrderAndDenseNumbering(t *testing.T) {
	t.Parallel()

	addons := []types.AddOn{
		catalogAddOn("starlink", "Connectivity", "*"),
		catalogAddOn("bbq-pack", "Food & Beverage", "*"),
		catalogAddOn("gopro", "Photography", "*"),
		catalogAddOn("glamping-tent", "Accommodation", "*"),
	}

	steps := BuildSteps(addons, "fraser-3day")
	if len(steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(steps))
	}

	wantOrder := []string{"Food & Beverage", "Photography", "Accommodation", "Connectivity"}
	for i, step := range steps {
		if step.CategoryName != wantOrder[i] {
			t.Fatalf("step %d: expected category %q, got %q", i, wantOrder[i], step.CategoryName)
		}
		if step.StepNumber != i+1 {
			t.Fatalf("step %q: expected step number %d, got %d", step.CategoryName, i+1, step.StepNumber)
		}
		if step.TotalSteps != 4 {
			t.Fatalf("step %q: expected total steps 4, got %d", step.CategoryName, step.TotalSteps)
		}
	}
}

func TestBuildStepsOmitsEmptiedCategories(t *testing.T) {
	t.Parallel()

	// Photography only applies to another tour, so its category must not
	// materialize and the remaining steps renumber densely.
	addons := []types.AddOn{
		catalogAddOn("bbq-pack", "Food & Beverage", "*"),
		catalogAddOn("gopro", "Photography", "moreton-1day"),
		catalogAddOn("starlink", "Connectivity", "fraser-3day"),
	}

	steps := BuildSteps(addons, "fraser-3day")
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].CategoryName != "Food & Beverage" || steps[1].CategoryName != "Connectivity" {
		t.Fatalf("unexpected step categories: %q, %q", steps[0].CategoryName, steps[1].CategoryName)
	}
	if steps[1].StepNumber != 2 || steps[1].TotalSteps != 2 {
		t.Fatalf("expected dense renumbering 2/2, got %d/%d", steps[1].StepNumber, steps[1].TotalSteps)
	}
}

func TestBuildStepsAppendsUnknownCategoriesAlphabetically(t *testing.T) {
	t.Parallel()

	addons := []types.AddOn{
		catalogAddOn("bbq-pack", "Food & Beverage", "*"),
		catalogAddOn("fishing-rod", "Fishing", "*"),
		catalogAddOn("esky", "Camping Extras", "*"),
		catalogAddOn("mystery", "", "*"),
	}

	steps := BuildSteps(addons, "fraser-3day")
	want := []string{"Food & Beverage", "Camping Extras", "Fishing", "Other"}
	if len(steps) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(steps))
	}
	for i, step := range steps {
		if step.CategoryName != want[i] {
			t.Fatalf("step %d: expected %q, got %q", i, want[i], step.CategoryName)
		}
	}
}

func TestBuildStepsPreservesCatalogOrderInsideCategory(t *testing.T) {
	t.Parallel()

	addons := []types.AddOn{
		catalogAddOn("bbq-pack", "Food & Beverage", "*"),
		catalogAddOn("picnic-basket", "Food & Beverage", "*"),
		catalogAddOn("breakfast-box", "Food & Beverage", "*"),
	}

	steps := BuildSteps(addons, "fraser-3day")
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	want := []string{"bbq-pack", "picnic-basket", "breakfast-box"}
	for i, addon := range steps[0].AddOns {
		if addon.ID != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], addon.ID)
		}
	}
}

func TestBuildStepsNoAddOns(t *testing.T) {
	t.Parallel()

	if steps := BuildSteps(nil, "fraser-3day"); len(steps) != 0 {
		t.Fatalf("expected no steps, got %d", len(steps))
	}
}
