package flow

import (
	"fmt"

	pkgerrors "github.com/sunshinecoast4wd/booking-engine/pkg/errors"
)

// Position is the tagged wizard position: one of the category steps or the
// terminal summary screen. The zero value is Category(0).
type Position struct {
	summary bool
	index   int
}

// Category returns the position for the i-th category step.
func Category(i int) Position {
	return Position{index: i}
}

// Summary returns the terminal position.
func Summary() Position {
	return Position{summary: true}
}

// IsSummary reports whether the wizard is on the summary screen.
func (p Position) IsSummary() bool {
	return p.summary
}

// Index returns the category index; valid only when IsSummary is false.
func (p Position) Index() int {
	return p.index
}

func (p Position) String() string {
	if p.summary {
		return "summary"
	}
	return fmt.Sprintf("category(%d)", p.index)
}

// State tracks wizard progress over a step sequence of known length.
// Completed and skipped are disjoint progress marks: completed means the
// step was advanced past with next, skipped means the user chose to pass it.
type State struct {
	pos        Position
	completed  map[int]bool
	skipped    map[int]bool
	highest    int
	totalSteps int
}

// NewState starts the wizard at the first category, or directly on the
// summary when there are no steps at all.
func NewState(totalSteps int) *State {
	s := &State{
		completed:  make(map[int]bool),
		skipped:    make(map[int]bool),
		totalSteps: totalSteps,
	}
	if totalSteps <= 0 {
		s.pos = Summary()
	}
	return s
}

// Position returns the current wizard position.
func (s *State) Position() Position {
	return s.pos
}

// TotalSteps returns the number of category steps in the sequence.
func (s *State) TotalSteps() int {
	return s.totalSteps
}

// IsFirstStep reports whether the wizard is at the first category.
func (s *State) IsFirstStep() bool {
	return !s.pos.summary && s.pos.index == 0
}

// IsLastStep reports whether the wizard is at the final category.
func (s *State) IsLastStep() bool {
	return !s.pos.summary && s.pos.index == s.totalSteps-1
}

// Completed reports whether the given step was advanced past with Next.
func (s *State) Completed(step int) bool {
	return s.completed[step]
}

// Skipped reports whether the given step was passed with Skip.
func (s *State) Skipped(step int) bool {
	return s.skipped[step]
}

// Progress returns wizard completion as a 0-100 percentage.
func (s *State) Progress() int {
	if s.totalSteps == 0 {
		return 100
	}
	if s.pos.summary {
		return 100
	}
	return (s.pos.index * 100) / s.totalSteps
}

// Next advances to the following category, or to the summary from the last
// one, marking the current step completed. A step already marked skipped
// keeps that mark: passing it again without choosing anything is still a
// skip. Next from the summary is illegal.
func (s *State) Next() error {
	if s.pos.summary {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot advance past summary")
	}
	if !s.skipped[s.pos.index] {
		s.completed[s.pos.index] = true
	}
	s.advance()
	return nil
}

// MarkCompleted records that the user actively engaged with a step, for
// example by selecting an add-on in it. Clears any earlier skip mark.
func (s *State) MarkCompleted(step int) {
	if step < 0 || step >= s.totalSteps {
		return
	}
	delete(s.skipped, step)
	s.completed[step] = true
}

// Skip performs the same transition as Next but marks the current step
// skipped instead of completed. Selections already made in the skipped
// category are untouched.
func (s *State) Skip() error {
	if s.pos.summary {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot skip past summary")
	}
	if !s.completed[s.pos.index] {
		s.skipped[s.pos.index] = true
	}
	s.advance()
	return nil
}

// Previous steps back one category. At the first category it is a no-op;
// from the summary it returns to the last category.
func (s *State) Previous() {
	if s.pos.summary {
		if s.totalSteps > 0 {
			s.pos = Category(s.totalSteps - 1)
		}
		return
	}
	if s.pos.index > 0 {
		s.pos = Category(s.pos.index - 1)
	}
}

// GoTo jumps directly to step j. Jumps are only permitted to steps at or
// below the highest index ever reached, so direct navigation cannot leap
// ahead of the guided flow.
func (s *State) GoTo(j int) error {
	if j < 0 || j >= s.totalSteps {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("step %d out of range", j))
	}
	if j > s.highest {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("step %d not yet reached", j))
	}
	s.pos = Category(j)
	return nil
}

// Resize re-applies a freshly computed step count after the tour or catalog
// changed, clamping the position back into range. Progress marks beyond the
// new range are dropped.
func (s *State) Resize(totalSteps int) {
	if totalSteps < 0 {
		totalSteps = 0
	}
	s.totalSteps = totalSteps
	for step := range s.completed {
		if step >= totalSteps {
			delete(s.completed, step)
		}
	}
	for step := range s.skipped {
		if step >= totalSteps {
			delete(s.skipped, step)
		}
	}
	if s.highest > totalSteps {
		s.highest = totalSteps
	}
	if totalSteps == 0 {
		s.pos = Summary()
		return
	}
	if s.pos.summary {
		return
	}
	if s.pos.index >= totalSteps {
		s.pos = Category(totalSteps - 1)
	}
}

func (s *State) advance() {
	nextIndex := s.pos.index + 1
	if nextIndex < s.totalSteps {
		s.pos = Category(nextIndex)
		if nextIndex > s.highest {
			s.highest = nextIndex
		}
		return
	}
	s.pos = Summary()
	if s.totalSteps > s.highest {
		s.highest = s.totalSteps
	}
}
