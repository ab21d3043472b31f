package orchestrator

import (
	"fmt"
	"slices"
)

type State string

const (
	StatePending     State = "PENDING"
	StateSafetyCheck State = "SAFETY_CHECK"
	StateEnriching   State = "ENRICHING"
	StateAggregating State = "AGGREGATING"
	StateComplete    State = "COMPLETE"
	StateRejected    State = "REJECTED"
)

var transitions = map[State][]State{
	StatePending:     {StateSafetyCheck},
	StateSafetyCheck: {StateEnriching, StateRejected},
	StateEnriching:   {StateAggregating, StateRejected},
	StateAggregating: {StateComplete, StateRejected},
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether the table allows moving from s to next.
func (s State) CanTransition(next State) bool {
	return slices.Contains(transitions[s], next)
}

// InvalidTransitionError is returned when a cycle attempts a move the table does not allow.
type InvalidTransitionError struct {
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// machine tracks the state of one cycle and the states it has passed through.
type machine struct {
	state   State
	visited []State
}

func newMachine() *machine {
	return &machine{state: StatePending, visited: []State{StatePending}}
}

func (m *machine) to(next State) error {
	if !m.state.CanTransition(next) {
		return &InvalidTransitionError{From: m.state, To: next}
	}
	m.state = next
	m.visited = append(m.visited, next)
	return nil
}

func (m *machine) log() []string {
	out := make([]string, len(m.visited))
	for i, s := range m.visited {
		out[i] = string(s)
	}
	return out
}
