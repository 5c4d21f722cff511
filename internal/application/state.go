package application

import (
	"fmt"

	"github.com/abdidvp/automigrate/internal/domain"
)

// FixState is the position of one fix in the runner's state machine.
type FixState string

const (
	StatePending           FixState = "pending"
	StateChecked           FixState = "checked"
	StateAwaitingApply     FixState = "awaiting_apply"
	StateSkipped           FixState = "skipped"
	StateUnnecessary       FixState = "unnecessary"
	StateDeclined          FixState = "declined"
	StateSucceeded         FixState = "succeeded"
	StateSucceededManually FixState = "succeeded_manually"
	StateFailed            FixState = "failed"
)

// IsTerminal reports whether the state ends the fix's run.
func IsTerminal(s FixState) bool {
	switch s {
	case StateSkipped, StateUnnecessary, StateDeclined,
		StateSucceeded, StateSucceededManually, StateFailed:
		return true
	default:
		return false
	}
}

// terminalState maps an outcome kind to the terminal state it is recorded in.
func terminalState(kind domain.OutcomeKind) FixState {
	switch kind {
	case domain.OutcomeSkipped:
		return StateSkipped
	case domain.OutcomeUnnecessary:
		return StateUnnecessary
	case domain.OutcomeDeclined:
		return StateDeclined
	case domain.OutcomeSucceeded:
		return StateSucceeded
	case domain.OutcomeSucceededManually:
		return StateSucceededManually
	default:
		return StateFailed
	}
}

func isAllowedTransition(from, to FixState) bool {
	switch from {
	case StatePending:
		// Skipped directly when excluded by configuration, Failed on a check error.
		return to == StateChecked || to == StateSkipped || to == StateFailed
	case StateChecked:
		switch to {
		case StateSkipped, StateUnnecessary, StateDeclined, StateAwaitingApply, StateFailed:
			return true
		}
		return false
	case StateAwaitingApply:
		return to == StateSucceeded || to == StateSucceededManually || to == StateFailed
	default:
		return false
	}
}

// fixRun tracks the state of a single fix while the runner drives it.
type fixRun struct {
	id    string
	state FixState
	trail []FixState
}

func newFixRun(id string) *fixRun {
	return &fixRun{id: id, state: StatePending, trail: []FixState{StatePending}}
}

func (f *fixRun) advance(to FixState) error {
	if IsTerminal(f.state) {
		return fmt.Errorf("fix %s: already terminal in %s, cannot move to %s", f.id, f.state, to)
	}
	if !isAllowedTransition(f.state, to) {
		return fmt.Errorf("fix %s: disallowed transition %s -> %s", f.id, f.state, to)
	}
	f.state = to
	f.trail = append(f.trail, to)
	return nil
}
