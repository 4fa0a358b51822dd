// Package pipeline orchestrates the stages for one posting: classification,
// relevance assessment, content generation, and completion. Stage state is
// explicit and transitions are validated; an illegal transition is a
// programming error and fails loudly.
package pipeline

import "fmt"

// State is the pipeline stage for one posting run.
type State string

// Pipeline states in execution order. FAILED is reachable from any
// non-terminal state.
const (
	StateClassifying        State = "CLASSIFYING"
	StateAssessingRelevance State = "ASSESSING_RELEVANCE"
	StateGeneratingContent  State = "GENERATING_CONTENT"
	StateDone               State = "DONE"
	StateFailed             State = "FAILED"
)

var validTransitions = map[State][]State{
	StateClassifying:        {StateAssessingRelevance, StateDone, StateFailed},
	StateAssessingRelevance: {StateGeneratingContent, StateDone, StateFailed},
	StateGeneratingContent:  {StateDone, StateFailed},
	StateDone:               {},
	StateFailed:             {},
}

// StateError reports an attempted illegal state transition.
type StateError struct {
	From State
	To   State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("illegal pipeline transition %s -> %s", e.From, e.To)
}

// CanTransition reports whether moving from s to next is legal.
func (s State) CanTransition(next State) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s is an end state.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
