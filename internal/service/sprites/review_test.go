package sprites

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    State
		to      State
		allowed bool
	}{
		{StateUnknown, StatePending, true},   // child upload
		{StateUnknown, StateApproved, true},  // admin publishes directly
		{StatePending, StateApproved, true},  // review approval
		{StatePending, StateRejected, true},  // review rejection
		{StateApproved, StateApproved, true}, // re-approval overwrites
		{StateUnknown, StateRejected, false},
		{StatePending, StatePending, false},
		{StateApproved, StatePending, false},
		{StateApproved, StateRejected, false},
		{StateRejected, StatePending, false},
		{StateRejected, StateApproved, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.allowed {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestTransition_Valid(t *testing.T) {
	st, err := Transition(StatePending, StateApproved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != StateApproved {
		t.Errorf("expected StateApproved, got %v", st)
	}
}

func TestTransition_Invalid(t *testing.T) {
	st, err := Transition(StateRejected, StateApproved)
	if err == nil {
		t.Fatal("expected error for transition out of terminal state")
	}
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if st != StateRejected {
		t.Errorf("expected state to stay REJECTED, got %v", st)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateUnknown, "UNKNOWN"},
		{StatePending, "PENDING"},
		{StateApproved, "APPROVED"},
		{StateRejected, "REJECTED"},
		{State(99), "UNKNOWN(99)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %v, want %v", int(tt.state), got, tt.expected)
		}
	}
}

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state      State
		isTerminal bool
	}{
		{StateUnknown, false},
		{StatePending, false},
		{StateApproved, false},
		{StateRejected, true},
	}

	for _, tt := range tests {
		if got := tt.state.IsTerminal(); got != tt.isTerminal {
			t.Errorf("State(%s).IsTerminal() = %v, want %v", tt.state, got, tt.isTerminal)
		}
	}
}
