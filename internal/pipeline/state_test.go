package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobfit-pipeline/internal/types"
)

func TestStateTransitions(t *testing.T) {
	assert.True(t, StateClassifying.CanTransition(StateAssessingRelevance))
	assert.True(t, StateClassifying.CanTransition(StateDone))
	assert.True(t, StateClassifying.CanTransition(StateFailed))
	assert.True(t, StateAssessingRelevance.CanTransition(StateGeneratingContent))
	assert.True(t, StateGeneratingContent.CanTransition(StateDone))

	assert.False(t, StateClassifying.CanTransition(StateGeneratingContent))
	assert.False(t, StateDone.CanTransition(StateClassifying))
	assert.False(t, StateFailed.CanTransition(StateDone))
	assert.False(t, StateGeneratingContent.CanTransition(StateAssessingRelevance))
}

func TestSessionAdvance(t *testing.T) {
	s := NewSession(&types.JobPosting{ID: "p1"})
	assert.NotEmpty(t, s.RunID)
	assert.Equal(t, StateClassifying, s.State)

	require.NoError(t, s.Advance(StateAssessingRelevance))
	require.NoError(t, s.Advance(StateGeneratingContent))
	require.NoError(t, s.Advance(StateDone))
	assert.False(t, s.FinishedAt.IsZero())

	err := s.Advance(StateClassifying)
	require.Error(t, err)

	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, StateDone, stateErr.From)
}

func TestSessionFail(t *testing.T) {
	s := NewSession(&types.JobPosting{ID: "p1"})
	require.NoError(t, s.Advance(StateAssessingRelevance))

	cause := errors.New("model unavailable")
	s.Fail(cause)

	assert.Equal(t, StateFailed, s.State)
	assert.Equal(t, StateAssessingRelevance, s.FailureStage)
	assert.Equal(t, DispositionFailed, s.Disposition)
	assert.ErrorIs(t, s.FailureError, cause)
}
