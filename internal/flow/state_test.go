package flow

import (
	"testing"

	pkgerrors "github.com/sunshinecoast4wd/booking-engine/pkg/errors"
)

func TestStateWalkToSummary(t *testing.T) {
	t.Parallel()

	state := NewState(3)
	if !state.IsFirstStep() {
		t.Fatal("expected wizard to start on the first step")
	}

	for i := 0; i < 3; i++ {
		if err := state.Next(); err != nil {
			t.Fatalf("next from step %d: %v", i, err)
		}
	}
	if !state.Position().IsSummary() {
		t.Fatalf("expected summary after walking all steps, got %s", state.Position())
	}
	for i := 0; i < 3; i++ {
		if !state.Completed(i) {
			t.Fatalf("expected step %d completed", i)
		}
	}

	if err := state.Next(); err == nil {
		t.Fatal("expected error advancing past summary")
	} else if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %s", code)
	}
}

func TestStateZeroStepsStartsOnSummary(t *testing.T) {
	t.Parallel()

	state := NewState(0)
	if !state.Position().IsSummary() {
		t.Fatalf("expected summary, got %s", state.Position())
	}
	if state.Progress() != 100 {
		t.Fatalf("expected 100%% progress, got %d", state.Progress())
	}
}

func TestStateSkipThenRevisitKeepsSkippedMark(t *testing.T) {
	t.Parallel()

	state := NewState(3)
	if err := state.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if !state.Skipped(0) || state.Completed(0) {
		t.Fatal("expected step 0 skipped and not completed")
	}

	// Walking back over a skipped step without choosing anything keeps the
	// skip mark; it does not silently become completed.
	state.Previous()
	if state.Position().Index() != 0 {
		t.Fatalf("expected to be back on step 0, got %s", state.Position())
	}
	if err := state.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if !state.Skipped(0) || state.Completed(0) {
		t.Fatal("expected skip mark preserved after passing through again")
	}
}

func TestStateMarkCompletedClearsSkip(t *testing.T) {
	t.Parallel()

	state := NewState(3)
	if err := state.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	state.MarkCompleted(0)
	if state.Skipped(0) || !state.Completed(0) {
		t.Fatal("expected engagement to flip step 0 from skipped to completed")
	}

	// Out-of-range engagement is ignored.
	state.MarkCompleted(7)
	if state.Completed(7) {
		t.Fatal("expected out-of-range step to stay unmarked")
	}
}

func TestStateSkipDoesNotDowngradeCompleted(t *testing.T) {
	t.Parallel()

	state := NewState(2)
	if err := state.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	state.Previous()
	if err := state.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if state.Skipped(0) || !state.Completed(0) {
		t.Fatal("expected completed mark to win over a later skip")
	}
}

func TestStatePreviousBounds(t *testing.T) {
	t.Parallel()

	state := NewState(2)
	state.Previous()
	if state.Position().Index() != 0 {
		t.Fatalf("expected previous on first step to stay put, got %s", state.Position())
	}

	if err := state.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if err := state.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	state.Previous()
	if state.Position().IsSummary() || state.Position().Index() != 1 {
		t.Fatalf("expected previous from summary to land on last step, got %s", state.Position())
	}
}

func TestStateGoToGuards(t *testing.T) {
	t.Parallel()

	state := NewState(4)
	if err := state.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}

	// Highest reached is step 1; jumping beyond it must fail.
	if err := state.GoTo(3); err == nil {
		t.Fatal("expected jump beyond highest reached step to fail")
	} else if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %s", code)
	}

	if err := state.GoTo(9); err == nil {
		t.Fatal("expected out-of-range jump to fail")
	} else if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %s", code)
	}

	if err := state.GoTo(0); err != nil {
		t.Fatalf("expected jump back to be allowed: %v", err)
	}
	if state.Position().Index() != 0 {
		t.Fatalf("expected step 0, got %s", state.Position())
	}
}

func TestStateResizeClampsPositionAndMarks(t *testing.T) {
	t.Parallel()

	state := NewState(5)
	for i := 0; i < 4; i++ {
		if err := state.Next(); err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	if state.Position().Index() != 4 {
		t.Fatalf("expected step 4, got %s", state.Position())
	}

	state.Resize(2)
	if state.Position().Index() != 1 {
		t.Fatalf("expected position clamped to step 1, got %s", state.Position())
	}
	if state.TotalSteps() != 2 {
		t.Fatalf("expected 2 total steps, got %d", state.TotalSteps())
	}
	if !state.Completed(0) || !state.Completed(1) {
		t.Fatal("expected in-range completion marks to survive resize")
	}
	if state.Completed(3) {
		t.Fatal("expected out-of-range completion marks to be dropped")
	}
	if err := state.GoTo(1); err != nil {
		t.Fatalf("expected highest watermark clamped into range: %v", err)
	}
}

func TestStateResizeToZeroLandsOnSummary(t *testing.T) {
	t.Parallel()

	state := NewState(3)
	state.Resize(0)
	if !state.Position().IsSummary() {
		t.Fatalf("expected summary, got %s", state.Position())
	}
}

func TestStateProgress(t *testing.T) {
	t.Parallel()

	state := NewState(4)
	if state.Progress() != 0 {
		t.Fatalf("expected 0%%, got %d", state.Progress())
	}
	if err := state.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if state.Progress() != 25 {
		t.Fatalf("expected 25%%, got %d", state.Progress())
	}
}
