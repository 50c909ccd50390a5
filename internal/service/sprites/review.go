package sprites

import (
	"errors"
	"fmt"
)

// State represents where a sprite sits in the moderation workflow.
//
// State transitions:
//
//	UNKNOWN ──upload──→ PENDING ──approve──→ APPROVED ──approve──→ APPROVED
//	   │                   │
//	   │                   └──reject──→ REJECTED
//	   │
//	   └──approve──→ APPROVED (admin publishes without a pending original)
//
// The object buckets are the source of truth: a sprite is PENDING when its
// object exists in the pending bucket, APPROVED when it exists in the
// approved bucket, REJECTED once deleted from pending. The table below only
// validates moves; it holds no state of its own.
type State int

const (
	// StateUnknown - the sprite is in neither bucket.
	StateUnknown State = iota
	// StatePending - uploaded by the child, waiting for review.
	StatePending
	// StateApproved - published by the administrator; re-approval overwrites.
	StateApproved
	// StateRejected - removed from pending without approval. Terminal.
	StateRejected
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "UNKNOWN"
	case StatePending:
		return "PENDING"
	case StateApproved:
		return "APPROVED"
	case StateRejected:
		return "REJECTED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// IsTerminal returns true if no further transition is allowed from s.
func (s State) IsTerminal() bool {
	return s == StateRejected
}

// ErrInvalidTransition signals a move the workflow does not permit.
var ErrInvalidTransition = errors.New("invalid review transition")

// transitions lists the permitted moves per state.
var transitions = map[State][]State{
	StateUnknown:  {StatePending, StateApproved},
	StatePending:  {StateApproved, StateRejected},
	StateApproved: {StateApproved},
	StateRejected: {},
}

// CanTransition reports whether the workflow permits moving from one state
// to another.
func CanTransition(from, to State) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition validates a move and returns the new state, or
// ErrInvalidTransition describing the rejected move.
func Transition(from, to State) (State, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}
