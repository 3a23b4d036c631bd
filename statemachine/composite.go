package statemachine

import "fmt"

// SequenceActions threads the output through each action in order. The first
// failure stops the chain and the output passed to that action is discarded
// by the engine along with the error.
func SequenceActions[S comparable, I any, O any](actions ...ActionFunc[S, I, O]) ActionFunc[S, I, O] {
	return func(state S, input I, output O) (O, error) {
		current := output

		for idx, action := range actions {
			next, err := action(state, input, current)
			if err != nil {
				return output, fmt.Errorf("sequence step %d failed: %w", idx, err)
			}

			current = next
		}

		return current, nil
	}
}

// ConditionalAction runs thenAction when the condition holds and elseAction
// otherwise. A nil branch leaves the output unchanged.
func ConditionalAction[S comparable, I any, O any](
	condition func(state S, input I, output O) bool,
	thenAction, elseAction ActionFunc[S, I, O],
) ActionFunc[S, I, O] {
	return func(state S, input I, output O) (O, error) {
		if condition(state, input, output) {
			if thenAction != nil {
				return thenAction(state, input, output)
			}

			return output, nil
		}

		if elseAction != nil {
			return elseAction(state, input, output)
		}

		return output, nil
	}
}

// RetryAction calls action up to attempts times until it succeeds. There is
// no backoff: the engine performs no I/O, so a retry only helps actions whose
// failures are not deterministic.
func RetryAction[S comparable, I any, O any](action ActionFunc[S, I, O], attempts int) ActionFunc[S, I, O] {
	if attempts < 1 {
		attempts = 1
	}

	return func(state S, input I, output O) (O, error) {
		var lastErr error

		for range attempts {
			next, err := action(state, input, output)
			if err == nil {
				return next, nil
			}

			lastErr = err
		}

		return output, fmt.Errorf("retry exhausted after %d attempts: %w", attempts, lastErr)
	}
}
