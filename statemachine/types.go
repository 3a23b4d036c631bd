package statemachine

import (
	"fmt"
	"strings"
)

// NextStateFunc calculates the next state from the current state and input.
// A non-nil error marks the transition as failed.
type NextStateFunc[S comparable, I any] func(state S, input I) (S, error)

// ActionFunc calculates the next output from the current state, the current
// input and the previous output. A non-nil error marks the action as failed
// and leaves the previous output in place.
type ActionFunc[S comparable, I any, O any] func(state S, input I, output O) (O, error)

// ErrorHandler decides what happens after a callback failed. Returning true
// swallows the error and continues the run, returning false aborts it.
type ErrorHandler[S comparable, I any, O any] func(err *CallbackError[S, I, O]) bool

// TransitionLogger renders one human-readable log line per step.
type TransitionLogger[S comparable, I any, O any] func(state S, input I, index int, output O) string

// ActionOrder controls when the action runs relative to the transition.
type ActionOrder string

const (
	// ActionOrderBefore runs the action before the transition only. This is the default.
	ActionOrderBefore ActionOrder = "Before"

	// ActionOrderAfter runs the action after the transition only. The action
	// receives the new state and the input that triggered the transition.
	ActionOrderAfter ActionOrder = "After"

	// ActionOrderBoth runs the action before the transition and, if and only
	// if the state changed, once more after it.
	ActionOrderBoth ActionOrder = "Both"
)

// ParseActionOrder parses an action order name, ignoring case.
// The empty string parses to ActionOrderBefore.
func ParseActionOrder(name string) (ActionOrder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "before":
		return ActionOrderBefore, nil
	case "after":
		return ActionOrderAfter, nil
	case "both":
		return ActionOrderBoth, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidActionOrder, name)
	}
}

// Valid reports whether the order is one of the known values.
func (o ActionOrder) Valid() bool {
	switch o {
	case ActionOrderBefore, ActionOrderAfter, ActionOrderBoth:
		return true
	default:
		return false
	}
}

func (o ActionOrder) String() string {
	return string(o)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *ActionOrder) UnmarshalText(text []byte) error {
	parsed, err := ParseActionOrder(string(text))
	if err != nil {
		return err
	}

	*o = parsed

	return nil
}

// runsBefore reports whether the action runs ahead of the transition.
func (o ActionOrder) runsBefore() bool {
	return o == ActionOrderBefore || o == ActionOrderBoth
}

// runsAfter reports whether the action runs after a transition from previous to next.
func runsAfter[S comparable](order ActionOrder, previous, next S) bool {
	return order == ActionOrderAfter || (order == ActionOrderBoth && previous != next)
}
