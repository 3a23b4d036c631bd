// Package statemachine provides a generic finite state machine execution engine.
//
// A Setup describes the machine: initial and end states, an initial output,
// a transition function and an optional action function. New turns a Setup
// into a Machine and Machine.Run drives it over a sequence of inputs,
// returning a Result with the final state, the accumulated output, logs and
// every error encountered.
package statemachine

// IdentityAction returns an action that leaves the output unchanged. It is
// the default action, so a machine without one keeps its initial output for
// the whole run.
func IdentityAction[S comparable, I any, O any]() ActionFunc[S, I, O] {
	return func(_ S, _ I, output O) (O, error) {
		return output, nil
	}
}

// MooreAction adapts an action whose output depends only on the state.
func MooreAction[S comparable, I any, O any](action func(state S, output O) (O, error)) ActionFunc[S, I, O] {
	return func(state S, _ I, output O) (O, error) {
		return action(state, output)
	}
}

// PureAction adapts an action that cannot fail.
func PureAction[S comparable, I any, O any](action func(state S, input I, output O) O) ActionFunc[S, I, O] {
	return func(state S, input I, output O) (O, error) {
		return action(state, input, output), nil
	}
}
