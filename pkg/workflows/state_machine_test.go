package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMachineTransitions(t *testing.T) {
	sm := NewStateMachine()

	assert.True(t, sm.CanTransition(StatusNotStarted, StatusAccountCreated))
	assert.True(t, sm.CanTransition("", StatusInProgress))
	assert.True(t, sm.CanTransition(StatusAccountCreated, StatusCompleted))
	assert.False(t, sm.CanTransition(StatusCompleted, StatusInProgress))
	assert.False(t, sm.CanTransition(StatusInProgress, StatusCompleted))
	assert.False(t, sm.CanTransition(StatusNotStarted, StatusCompleted))
	assert.False(t, sm.CanTransition("UNKNOWN", StatusCompleted))

	assert.Empty(t, sm.GetAllowedTransitions(StatusCompleted))
	assert.Empty(t, sm.GetAllowedTransitions("UNKNOWN"))
	assert.Equal(t, []string{StatusCompleted}, sm.GetAllowedTransitions(StatusAccountCreated))
	assert.Equal(t, []string{StatusInProgress, StatusAccountCreated}, sm.GetAllowedTransitions(""))
}

func TestStateMachineTransition(t *testing.T) {
	sm := NewStateMachine()

	to, err := sm.Transition(StatusAccountCreated, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, to)

	to, err = sm.Transition(StatusInProgress, StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusInProgress, to)
	assert.Contains(t, err.Error(), "IN_PROGRESS -> COMPLETED")
}

func TestStateMachineAdvance(t *testing.T) {
	sm := NewStateMachine()

	to, changed := sm.Advance(StatusNotStarted, StatusInProgress)
	assert.True(t, changed)
	assert.Equal(t, StatusInProgress, to)

	to, changed = sm.Advance(StatusAccountCreated, StatusInProgress)
	assert.False(t, changed)
	assert.Equal(t, StatusAccountCreated, to)

	to, changed = sm.Advance(StatusInProgress, StatusAccountCreated)
	assert.True(t, changed)
	assert.Equal(t, StatusAccountCreated, to)

	_, changed = sm.Advance(StatusCompleted, StatusAccountCreated)
	assert.False(t, changed)
}

func TestStateMachineAllowedIsCopy(t *testing.T) {
	sm := NewStateMachine()

	allowed := sm.GetAllowedTransitions(StatusNotStarted)
	allowed[0] = StatusCompleted
	assert.False(t, sm.CanTransition(StatusNotStarted, StatusCompleted))
	assert.True(t, sm.IsTerminal(StatusCompleted))
	assert.False(t, sm.IsTerminal(StatusInProgress))
}
