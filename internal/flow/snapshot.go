package flow

import "sort"

// Snapshot is the serialized wizard position persisted between page loads.
// The summary screen is encoded as current_step == total step count.
type Snapshot struct {
	CurrentStep    int   `json:"current_step"`
	CompletedSteps []int `json:"completed_steps"`
	SkippedSteps   []int `json:"skipped_steps"`
}

// Snapshot captures the state for persistence.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		CompletedSteps: sortedKeys(s.completed),
		SkippedSteps:   sortedKeys(s.skipped),
	}
	if s.pos.summary {
		snap.CurrentStep = s.totalSteps
	} else {
		snap.CurrentStep = s.pos.index
	}
	return snap
}

// RestoreState rebuilds wizard state from a snapshot against a freshly
// computed step count. A current step beyond the new range is clamped onto
// the last category; progress marks outside the range are dropped. The
// highest-reached watermark is rebuilt from the marks so direct navigation
// stays bounded after a reload.
func RestoreState(snap Snapshot, totalSteps int) *State {
	s := NewState(totalSteps)
	if totalSteps <= 0 {
		return s
	}

	for _, step := range snap.CompletedSteps {
		if step >= 0 && step < totalSteps {
			s.completed[step] = true
		}
	}
	for _, step := range snap.SkippedSteps {
		if step >= 0 && step < totalSteps && !s.completed[step] {
			s.skipped[step] = true
		}
	}

	switch {
	case snap.CurrentStep == totalSteps:
		s.pos = Summary()
		s.highest = totalSteps
	case snap.CurrentStep > totalSteps:
		// The step sequence shrank since the save; clamp onto the last
		// category instead of the now-unreachable summary.
		s.pos = Category(totalSteps - 1)
	case snap.CurrentStep < 0:
		s.pos = Category(0)
	default:
		s.pos = Category(snap.CurrentStep)
	}

	if !s.pos.summary && s.pos.index > s.highest {
		s.highest = s.pos.index
	}
	for step := range s.completed {
		if step+1 > s.highest && step+1 <= totalSteps {
			s.highest = step + 1
		}
	}
	for step := range s.skipped {
		if step+1 > s.highest && step+1 <= totalSteps {
			s.highest = step + 1
		}
	}
	if s.highest > totalSteps {
		s.highest = totalSteps
	}
	return s
}

func sortedKeys(marks map[int]bool) []int {
	keys := make([]int, 0, len(marks))
	for step := range marks {
		keys = append(keys, step)
	}
	sort.Ints(keys)
	return keys
}
