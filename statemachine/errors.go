package statemachine

import (
	"errors"
	"fmt"
)

// Predefined error types.
var (
	// ErrStateAction is matched by every error raised from the action function.
	ErrStateAction = errors.New("state action failed")
	// ErrCalculateNextState is matched by every error raised from the transition function.
	ErrCalculateNextState = errors.New("calculate next state failed")
	// ErrEmptyInput indicates that the input sequence yielded no elements at all.
	ErrEmptyInput = errors.New(
		"input is empty: input must be a sequence with at least one element, such as a non-empty slice",
	)
	// ErrEndOfInput indicates that the inputs ran out before the end state was reached.
	ErrEndOfInput = errors.New("reached end of input before hitting end state")
	// ErrCallbackPanic indicates that a callback panicked instead of returning an error.
	ErrCallbackPanic = errors.New("callback panicked")

	// ErrInvalidSetup is matched by every setup problem detected at run time.
	ErrInvalidSetup = errors.New("invalid setup")
	// ErrNextStateRequired indicates that no transition function was configured.
	ErrNextStateRequired = errors.New("calculate next state function is required")
	// ErrInvalidActionOrder indicates an unknown action state order.
	ErrInvalidActionOrder = errors.New("invalid action state order")

	// ErrTransitionNotFound indicates that no transition rule matched the state and input.
	ErrTransitionNotFound = errors.New("no valid transition found")

	// ErrConfigNameRequired indicates that a configuration name is required.
	ErrConfigNameRequired = errors.New("config name is required")
	// ErrInitialStateRequired indicates that an initial state is required.
	ErrInitialStateRequired = errors.New("initial state is required")
	// ErrEndStateRequired indicates that an end state is required.
	ErrEndStateRequired = errors.New("end state is required")
	// ErrUnknownState indicates a reference to a state missing from the declared states.
	ErrUnknownState = errors.New("state is not declared")
	// ErrDuplicateStateName indicates that a state was declared twice.
	ErrDuplicateStateName = errors.New("duplicate state name")
	// ErrTransitionFromRequired indicates that a transition from state is required.
	ErrTransitionFromRequired = errors.New("transition from state is required")
	// ErrTransitionToRequired indicates that a transition to state is required.
	ErrTransitionToRequired = errors.New("transition to state is required")
	// ErrTransitionInputRequired indicates a transition with neither inputs nor the any flag.
	ErrTransitionInputRequired = errors.New("transition needs 'on' inputs or 'any: true'")
	// ErrDuplicateTransition indicates two rules for the same state and input.
	ErrDuplicateTransition = errors.New("duplicate transition")
	// ErrNoConfigLoader indicates that no config loader is registered.
	ErrNoConfigLoader = errors.New("no config loader registered; use SetConfigLoader() or provide a file path")
)

// CallbackKind names the callback that raised a CallbackError.
type CallbackKind int

const (
	// KindStateAction marks failures of the action function.
	KindStateAction CallbackKind = iota
	// KindCalculateNextState marks failures of the transition function.
	KindCalculateNextState
)

func (k CallbackKind) String() string {
	switch k {
	case KindStateAction:
		return "StateActionError"
	case KindCalculateNextState:
		return "CalculateNextStateError"
	default:
		return fmt.Sprintf("CallbackKind(%d)", int(k))
	}
}

func (k CallbackKind) sentinel() error {
	if k == KindCalculateNextState {
		return ErrCalculateNextState
	}

	return ErrStateAction
}

// CallbackError wraps a failure of the action or transition function together
// with the state, input and output the callback was invoked with.
type CallbackError[S comparable, I any, O any] struct {
	Kind   CallbackKind
	State  S
	Input  I
	Output O
	Err    error
}

// NewStateActionError wraps a failure of the action function.
func NewStateActionError[S comparable, I any, O any](state S, input I, output O, err error) *CallbackError[S, I, O] {
	return &CallbackError[S, I, O]{
		Kind:   KindStateAction,
		State:  state,
		Input:  input,
		Output: output,
		Err:    err,
	}
}

// NewCalculateNextStateError wraps a failure of the transition function.
func NewCalculateNextStateError[S comparable, I any, O any](
	state S, input I, output O, err error,
) *CallbackError[S, I, O] {
	return &CallbackError[S, I, O]{
		Kind:   KindCalculateNextState,
		State:  state,
		Input:  input,
		Output: output,
		Err:    err,
	}
}

func (e *CallbackError[S, I, O]) Error() string {
	return fmt.Sprintf("%s: state %s, input %s: %v", e.Kind, jsonString(e.State), jsonString(e.Input), e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *CallbackError[S, I, O]) Unwrap() []error {
	return []error{e.Kind.sentinel(), e.Err}
}

// EmptyInputError is recorded when the input sequence yields nothing at all.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return ErrEmptyInput.Error()
}

func (e *EmptyInputError) Unwrap() error {
	return ErrEmptyInput
}

// EndOfInputError is recorded when the inputs ran out after at least one step
// without reaching the end state. It carries the last state and output.
type EndOfInputError[S comparable, O any] struct {
	State  S
	Output O
}

func (e *EndOfInputError[S, O]) Error() string {
	return fmt.Sprintf("%v. Ended on state %s with output %s", ErrEndOfInput, jsonString(e.State), jsonString(e.Output))
}

func (e *EndOfInputError[S, O]) Unwrap() error {
	return ErrEndOfInput
}

// InvalidSetupError is recorded when the resolved setup cannot drive a run.
type InvalidSetupError struct {
	Err error
}

func (e *InvalidSetupError) Error() string {
	return fmt.Sprintf("%v: %v", ErrInvalidSetup, e.Err)
}

func (e *InvalidSetupError) Unwrap() []error {
	return []error{ErrInvalidSetup, e.Err}
}

// ErrorKind names the variant of an error recorded by a run.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStateAction):
		return KindStateAction.String()
	case errors.Is(err, ErrCalculateNextState):
		return KindCalculateNextState.String()
	case errors.Is(err, ErrEmptyInput):
		return "EmptyInputError"
	case errors.Is(err, ErrEndOfInput):
		return "EndOfInputError"
	case errors.Is(err, ErrInvalidSetup):
		return "InvalidSetupError"
	default:
		return "UnknownError"
	}
}
