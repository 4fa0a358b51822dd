package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/jobfit-pipeline/internal/types"
)

// Disposition summarizes how a completed run ended.
type Disposition string

// Dispositions for a finished posting run.
const (
	DispositionContentGenerated   Disposition = "content_generated"
	DispositionClassificationOnly Disposition = "classification_only"
	DispositionSkipped            Disposition = "skipped"
	DispositionFailed             Disposition = "failed"
)

// Session accumulates everything one posting run produces. Whatever stages
// completed before a failure remain populated for inspection.
type Session struct {
	RunID       string
	Posting     *types.JobPosting
	State       State
	Disposition Disposition

	Fit         *types.FitAnalysis
	Assessments []types.RelevanceAssessment
	Strategy    *types.ContentStrategy
	Bundle      *types.GeneratedContentBundle

	StartedAt    time.Time
	FinishedAt   time.Time
	FailureStage State
	FailureError error
}

// NewSession starts a run for one posting in the first stage.
func NewSession(posting *types.JobPosting) *Session {
	return &Session{
		RunID:     uuid.NewString(),
		Posting:   posting,
		State:     StateClassifying,
		StartedAt: time.Now().UTC(),
	}
}

// Advance moves the session to the next state, enforcing legality.
func (s *Session) Advance(next State) error {
	if !s.State.CanTransition(next) {
		return &StateError{From: s.State, To: next}
	}
	s.State = next
	if next.Terminal() {
		s.FinishedAt = time.Now().UTC()
	}
	return nil
}

// Fail marks the session failed, recording the stage it failed in.
// Failing is always legal from a non-terminal state.
func (s *Session) Fail(err error) {
	s.FailureStage = s.State
	s.FailureError = err
	s.Disposition = DispositionFailed
	s.State = StateFailed
	s.FinishedAt = time.Now().UTC()
}
