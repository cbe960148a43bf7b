package order

import "fmt"

// StateTransition is one edge of the lifecycle graph.
type StateTransition struct {
	From Status
	To   Status
}

// StateMachine validates order lifecycle transitions. The backend is the
// source of truth; the machine exists to reject obviously stale or corrupt
// responses before they reach a cache.
type StateMachine struct {
	transitions map[StateTransition]bool
}

func NewStateMachine() *StateMachine {
	sm := &StateMachine{transitions: make(map[StateTransition]bool)}
	sm.initializeTransitions()
	return sm
}

func (sm *StateMachine) initializeTransitions() {
	// Edges cover observed jumps, not just adjacent states: a client that
	// missed an intermediate update still sees a legal move.
	legal := []StateTransition{
		{StatusPendingSubmit, StatusSubmitted},
		{StatusPendingSubmit, StatusAccepted},
		{StatusPendingSubmit, StatusPartialFilled},
		{StatusPendingSubmit, StatusFilled},
		{StatusPendingSubmit, StatusCanceled},
		{StatusPendingSubmit, StatusRejected},
		{StatusPendingSubmit, StatusExpired},
		{StatusPendingSubmit, StatusError},

		{StatusSubmitted, StatusAccepted},
		{StatusSubmitted, StatusPartialFilled},
		{StatusSubmitted, StatusFilled},
		{StatusSubmitted, StatusCanceled},
		{StatusSubmitted, StatusRejected},
		{StatusSubmitted, StatusExpired},
		{StatusSubmitted, StatusError},

		{StatusAccepted, StatusPartialFilled},
		{StatusAccepted, StatusFilled},
		{StatusAccepted, StatusCanceled},
		{StatusAccepted, StatusExpired},
		{StatusAccepted, StatusError},

		// Repeated partial fills are a self-loop handled by the idempotency
		// check in ValidateTransition.
		{StatusPartialFilled, StatusFilled},
		{StatusPartialFilled, StatusCanceled},
		{StatusPartialFilled, StatusExpired},
		{StatusPartialFilled, StatusError},

		// Terminal states have no outgoing edges.
	}
	for _, t := range legal {
		sm.transitions[t] = true
	}
}

// ValidateTransition returns an error when from -> to is not a legal
// lifecycle move. Same-state transitions are always allowed.
func (sm *StateMachine) ValidateTransition(from, to Status) error {
	if from == to {
		return nil
	}
	if !sm.transitions[StateTransition{From: from, To: to}] {
		return fmt.Errorf("illegal state transition: %s -> %s", from, to)
	}
	return nil
}

// AllowedTransitions returns every legal target status for current.
func (sm *StateMachine) AllowedTransitions(current Status) []Status {
	allowed := make([]Status, 0)
	for t := range sm.transitions {
		if t.From == current {
			allowed = append(allowed, t.To)
		}
	}
	return allowed
}

// CanCancel reports whether the order may still be canceled client-side.
func (sm *StateMachine) CanCancel(status Status) bool {
	switch status {
	case StatusPendingSubmit, StatusSubmitted, StatusAccepted, StatusPartialFilled:
		return true
	default:
		return false
	}
}
