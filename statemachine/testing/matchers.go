package testing

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
)

// Matcher errors.
var (
	ErrNotExecuted               = errors.New("machine has not been executed")
	ErrExecutionAborted          = errors.New("execution aborted")
	ErrExecutionCompletedNoError = errors.New("execution completed without error")
	ErrNoMatchersPassed          = errors.New("no matchers passed")
	ErrStateNotVisited           = errors.New("state was not visited")
	ErrTransitionNotTaken        = errors.New("transition was not taken")
	ErrErrorKindsMismatch        = errors.New("error kinds mismatch")
	ErrOutputMismatch            = errors.New("output mismatch")
)

// Matcher defines an assertion matcher interface.
type Matcher[S comparable, I any, O any] interface {
	Match(machine *TestMachine[S, I, O]) (bool, error)
	Description() string
}

// matcherFunc adapts a function and a description to Matcher.
type matcherFunc[S comparable, I any, O any] struct {
	match       func(machine *TestMachine[S, I, O]) error
	description string
}

func (m *matcherFunc[S, I, O]) Match(machine *TestMachine[S, I, O]) (bool, error) {
	if !machine.executed {
		return false, ErrNotExecuted
	}

	if err := m.match(machine); err != nil {
		return false, err
	}

	return true, nil
}

func (m *matcherFunc[S, I, O]) Description() string {
	return m.description
}

// StateWasVisited creates a matcher that checks if a state was visited.
// The initial state counts as visited.
func StateWasVisited[S comparable, I any, O any](state S) Matcher[S, I, O] {
	return &matcherFunc[S, I, O]{
		description: fmt.Sprintf("state '%v' should be visited", state),
		match: func(machine *TestMachine[S, I, O]) error {
			if machine.Setup().InitialState == state {
				return nil
			}

			for _, entry := range machine.trace {
				if entry.Error == nil && entry.To == state {
					return nil
				}
			}

			return fmt.Errorf("%w: '%v'", ErrStateNotVisited, state)
		},
	}
}

// TransitionWasTaken creates a matcher that checks if a transition occurred.
func TransitionWasTaken[S comparable, I any, O any](from, to S) Matcher[S, I, O] {
	return &matcherFunc[S, I, O]{
		description: fmt.Sprintf("transition from '%v' to '%v' should be taken", from, to),
		match: func(machine *TestMachine[S, I, O]) error {
			for _, entry := range machine.trace {
				if entry.Error == nil && entry.From == from && entry.To == to {
					return nil
				}
			}

			return fmt.Errorf("%w: from '%v' to '%v'", ErrTransitionNotTaken, from, to)
		},
	}
}

// ExecutionCompleted creates a matcher that checks if the run reached the end state.
func ExecutionCompleted[S comparable, I any, O any]() Matcher[S, I, O] {
	return &matcherFunc[S, I, O]{
		description: "execution should complete successfully",
		match: func(machine *TestMachine[S, I, O]) error {
			if machine.result.Aborted {
				return fmt.Errorf("%w: %w", ErrExecutionAborted, machine.result.Err())
			}

			return nil
		},
	}
}

// ExecutionAborted creates a matcher that checks if the run aborted.
func ExecutionAborted[S comparable, I any, O any]() Matcher[S, I, O] {
	return &matcherFunc[S, I, O]{
		description: "execution should abort",
		match: func(machine *TestMachine[S, I, O]) error {
			if !machine.result.Aborted {
				return ErrExecutionCompletedNoError
			}

			return nil
		},
	}
}

// ErrorKindsAre creates a matcher that checks the kinds of the recorded errors, in order.
func ErrorKindsAre[S comparable, I any, O any](kinds ...string) Matcher[S, I, O] {
	return &matcherFunc[S, I, O]{
		description: fmt.Sprintf("errors should be %v", kinds),
		match: func(machine *TestMachine[S, I, O]) error {
			actual := errorKinds(machine.result.Errors)
			if !slices.Equal(actual, kinds) {
				return fmt.Errorf("%w: got %v, expected %v", ErrErrorKindsMismatch, actual, kinds)
			}

			return nil
		},
	}
}

// OutputEquals creates a matcher that compares the output with reflect.DeepEqual.
func OutputEquals[S comparable, I any, O any](expected O) Matcher[S, I, O] {
	return &matcherFunc[S, I, O]{
		description: fmt.Sprintf("output should be %v", expected),
		match: func(machine *TestMachine[S, I, O]) error {
			if !reflect.DeepEqual(machine.result.Output, expected) {
				return fmt.Errorf("%w: got %v, expected %v", ErrOutputMismatch, machine.result.Output, expected)
			}

			return nil
		},
	}
}

// StepsTaken creates a matcher that checks the execution count.
func StepsTaken[S comparable, I any, O any](steps int) Matcher[S, I, O] {
	return &matcherFunc[S, I, O]{
		description: fmt.Sprintf("execution count should be %d", steps),
		match: func(machine *TestMachine[S, I, O]) error {
			if machine.result.ExecutionCount != steps {
				return fmt.Errorf("execution count is %d, expected %d", machine.result.ExecutionCount, steps) //nolint:err113
			}

			return nil
		},
	}
}

// All creates a matcher that requires all sub-matchers to pass.
func All[S comparable, I any, O any](matchers ...Matcher[S, I, O]) Matcher[S, I, O] {
	return &allMatcher[S, I, O]{matchers: matchers}
}

type allMatcher[S comparable, I any, O any] struct {
	matchers []Matcher[S, I, O]
}

func (m *allMatcher[S, I, O]) Match(machine *TestMachine[S, I, O]) (bool, error) {
	for _, matcher := range m.matchers {
		matched, err := matcher.Match(machine)
		if !matched || err != nil {
			return false, err
		}
	}

	return true, nil
}

func (m *allMatcher[S, I, O]) Description() string {
	return "all matchers should pass"
}

// Any creates a matcher that requires at least one sub-matcher to pass.
func Any[S comparable, I any, O any](matchers ...Matcher[S, I, O]) Matcher[S, I, O] {
	return &anyMatcher[S, I, O]{matchers: matchers}
}

type anyMatcher[S comparable, I any, O any] struct {
	matchers []Matcher[S, I, O]
}

func (m *anyMatcher[S, I, O]) Match(machine *TestMachine[S, I, O]) (bool, error) {
	for _, matcher := range m.matchers {
		matched, err := matcher.Match(machine)
		if matched && err == nil {
			return true, nil
		}
	}

	return false, ErrNoMatchersPassed
}

func (m *anyMatcher[S, I, O]) Description() string {
	return "at least one matcher should pass"
}
