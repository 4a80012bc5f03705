package workflows

import (
	"errors"
	"fmt"
	"slices"
)

// Onboarding statuses tracked on a user profile.
const (
	StatusNotStarted     = "NOT_STARTED"
	StatusInProgress     = "IN_PROGRESS"
	StatusAccountCreated = "ACCOUNT_CREATED"
	StatusCompleted      = "COMPLETED"
)

var ErrInvalidTransition = errors.New("invalid onboarding status transition")

// StateMachine holds the onboarding status graph. It is read-only after
// construction and safe for concurrent use.
type StateMachine struct {
	allowedTransitions map[string][]string
}

func NewStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			StatusNotStarted:     {StatusInProgress, StatusAccountCreated},
			StatusInProgress:     {StatusAccountCreated},
			StatusAccountCreated: {StatusCompleted},
			StatusCompleted:      {},
		},
	}
}

// Normalize maps an unset status to StatusNotStarted.
func Normalize(status string) string {
	if status == "" {
		return StatusNotStarted
	}
	return status
}

func (sm *StateMachine) CanTransition(from, to string) bool {
	return slices.Contains(sm.allowedTransitions[Normalize(from)], to)
}

// Transition returns to when the move is allowed, else ErrInvalidTransition.
func (sm *StateMachine) Transition(from, to string) (string, error) {
	if !sm.CanTransition(from, to) {
		return Normalize(from), fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, Normalize(from), to)
	}
	return to, nil
}

// Advance moves to the first reachable status in targets, in order, and
// reports whether the status changed. A status already at or past every
// target is left alone.
func (sm *StateMachine) Advance(from string, targets ...string) (string, bool) {
	for _, to := range targets {
		if sm.CanTransition(from, to) {
			return to, true
		}
	}
	return Normalize(from), false
}

// GetAllowedTransitions returns a copy of the statuses reachable from from.
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	return slices.Clone(sm.allowedTransitions[Normalize(from)])
}

// IsTerminal reports whether no transition leaves status.
func (sm *StateMachine) IsTerminal(status string) bool {
	allowed, ok := sm.allowedTransitions[Normalize(status)]
	return ok && len(allowed) == 0
}
