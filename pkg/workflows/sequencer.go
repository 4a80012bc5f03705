package workflows

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyFlow   = errors.New("flow must contain at least one step")
	ErrDuplicateID = errors.New("duplicate step id")
)

// StepDefinition describes one step of a linear flow.
type StepDefinition struct {
	ID    string `json:"id"`
	Route string `json:"route"`
	Title string `json:"title,omitempty"`
	// Optional is reserved and not read by the sequencer.
	Optional bool `json:"optional,omitempty"`
	// SkipOnBack steps are reachable going forward only and do not count
	// towards the visible step number.
	SkipOnBack bool `json:"skip_on_back,omitempty"`
}

// StepInfo aggregates every navigation query for a single step id.
type StepInfo struct {
	CurrentStepNumber   int             `json:"current_step_number"`
	TotalNavigableSteps int             `json:"total_navigable_steps"`
	NextStep            *StepDefinition `json:"next_step"`
	PreviousStep        *StepDefinition `json:"previous_step"`
	Step                *StepDefinition `json:"step"`
}

// Sequencer answers navigation queries over an immutable ordered flow.
// All methods are safe for concurrent use.
type Sequencer struct {
	steps []StepDefinition
	index map[string]int
	// numbers[i] is the visible step number of steps[i]
	numbers   []int
	navigable int
}

// NewSequencer validates the flow and builds its lookup tables.
func NewSequencer(steps []StepDefinition) (*Sequencer, error) {
	if len(steps) == 0 {
		return nil, ErrEmptyFlow
	}

	s := &Sequencer{
		steps:   make([]StepDefinition, len(steps)),
		index:   make(map[string]int, len(steps)),
		numbers: make([]int, len(steps)),
	}
	copy(s.steps, steps)

	count := 0
	for i, step := range s.steps {
		if _, exists := s.index[step.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, step.ID)
		}
		s.index[step.ID] = i
		if !step.SkipOnBack {
			count++
		}
		// a skip step before any navigable step still reports 1
		s.numbers[i] = max(count, 1)
	}
	s.navigable = count

	return s, nil
}

// MustSequencer is like NewSequencer but panics on an invalid flow.
// Intended for package-level flows fixed at build time.
func MustSequencer(steps []StepDefinition) *Sequencer {
	s, err := NewSequencer(steps)
	if err != nil {
		panic(fmt.Sprintf("workflows: invalid flow: %v", err))
	}
	return s
}

// CurrentStepNumber returns the 1-based visible position of the step.
// Unknown ids report 1.
func (s *Sequencer) CurrentStepNumber(id string) int {
	i, ok := s.index[id]
	if !ok {
		return 1
	}
	return s.numbers[i]
}

// TotalNavigableSteps counts the steps without SkipOnBack.
func (s *Sequencer) TotalNavigableSteps() int {
	return s.navigable
}

// NextStep returns the step that follows id, skip-on-back steps included.
func (s *Sequencer) NextStep(id string) (StepDefinition, bool) {
	i, ok := s.index[id]
	if !ok || i+1 >= len(s.steps) {
		return StepDefinition{}, false
	}
	return s.steps[i+1], true
}

// PreviousStep returns the closest earlier step that is not SkipOnBack.
func (s *Sequencer) PreviousStep(id string) (StepDefinition, bool) {
	i, ok := s.index[id]
	if !ok {
		return StepDefinition{}, false
	}
	for j := i - 1; j >= 0; j-- {
		if !s.steps[j].SkipOnBack {
			return s.steps[j], true
		}
	}
	return StepDefinition{}, false
}

// Step looks up a step definition by id.
func (s *Sequencer) Step(id string) (StepDefinition, bool) {
	i, ok := s.index[id]
	if !ok {
		return StepDefinition{}, false
	}
	return s.steps[i], true
}

// StepInfo combines every query for id into one value.
func (s *Sequencer) StepInfo(id string) StepInfo {
	info := StepInfo{
		CurrentStepNumber:   s.CurrentStepNumber(id),
		TotalNavigableSteps: s.TotalNavigableSteps(),
	}
	if next, ok := s.NextStep(id); ok {
		info.NextStep = &next
	}
	if prev, ok := s.PreviousStep(id); ok {
		info.PreviousStep = &prev
	}
	if step, ok := s.Step(id); ok {
		info.Step = &step
	}
	return info
}

// First returns the entry point of the flow.
func (s *Sequencer) First() StepDefinition {
	return s.steps[0]
}

// Len returns the number of steps, skip-on-back steps included.
func (s *Sequencer) Len() int {
	return len(s.steps)
}

// Steps returns a copy of the ordered flow.
func (s *Sequencer) Steps() []StepDefinition {
	out := make([]StepDefinition, len(s.steps))
	copy(out, s.steps)
	return out
}
