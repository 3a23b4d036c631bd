package statemachine

import "fmt"

// Always transitions to the same state regardless of state and input.
func Always[S comparable, I any](to S) NextStateFunc[S, I] {
	return func(S, I) (S, error) {
		return to, nil
	}
}

// Stay never leaves the current state.
func Stay[S comparable, I any]() NextStateFunc[S, I] {
	return func(state S, _ I) (S, error) {
		return state, nil
	}
}

// ConditionalTransition moves to thenState when the condition holds and to
// elseState otherwise.
func ConditionalTransition[S comparable, I any](
	condition func(state S, input I) bool,
	thenState, elseState S,
) NextStateFunc[S, I] {
	return func(state S, input I) (S, error) {
		if condition(state, input) {
			return thenState, nil
		}

		return elseState, nil
	}
}

// Rule is one candidate transition of FirstMatch. A nil When always matches.
type Rule[S comparable, I any] struct {
	From S
	When func(input I) bool
	To   S
}

// FirstMatch picks the first rule whose From equals the current state and
// whose When accepts the input. If no rule matches, the transition fails
// with ErrTransitionNotFound.
func FirstMatch[S comparable, I any](rules ...Rule[S, I]) NextStateFunc[S, I] {
	return func(state S, input I) (S, error) {
		for _, rule := range rules {
			if rule.From != state {
				continue
			}

			if rule.When == nil || rule.When(input) {
				return rule.To, nil
			}
		}

		return state, fmt.Errorf("%w: from %s on %s", ErrTransitionNotFound, jsonString(state), jsonString(input))
	}
}
