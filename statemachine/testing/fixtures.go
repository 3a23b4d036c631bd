// Package testing provides testing utilities for state machines.
package testing

import (
	"path/filepath"

	"github.com/amp-labs/mealy/statemachine"
)

// Fixture states shared by the tokenizer fixtures.
const (
	StateStart   = "Start"
	StateDoStuff = "DoStuff"
	StateEnd     = "End"
)

// TokenizerSetup returns the canonical example machine: it moves to End on
// an empty input and to DoStuff otherwise, and after each transition appends
// every non-empty input to the output.
func TokenizerSetup() statemachine.Setup[string, string, []string] {
	return statemachine.Setup[string, string, []string]{
		Name:          "tokenizer",
		InitialState:  StateStart,
		EndState:      StateEnd,
		InitialOutput: []string{},
		CalculateNextState: statemachine.ConditionalTransition(
			func(_ string, input string) bool { return input == "" },
			StateEnd, StateDoStuff,
		),
		PerformStateAction: CollectNonEmpty,
		ActionStateOrder:   statemachine.ActionOrderAfter,
	}
}

// CollectNonEmpty appends every non-empty input to the output.
func CollectNonEmpty(_ string, input string, output []string) ([]string, error) {
	if input == "" {
		return output, nil
	}

	return append(output, input), nil
}

// FailOn returns an action that fails with err for the given input and
// otherwise behaves like CollectNonEmpty.
func FailOn(input string, err error) statemachine.ActionFunc[string, string, []string] {
	return func(state string, in string, output []string) ([]string, error) {
		if in == input {
			return output, err
		}

		return CollectNonEmpty(state, in, output)
	}
}

// LoadTestConfig loads a transition table from the testdata directory.
func LoadTestConfig(name string) (*statemachine.Config, error) {
	return statemachine.LoadConfig(filepath.Join("testdata", name))
}

// CreateTestConfig creates a transition table with no transitions.
func CreateTestConfig(name string, initialState string, endState string) *statemachine.Config {
	return &statemachine.Config{
		Name:         name,
		InitialState: initialState,
		EndState:     endState,
		Transitions:  []statemachine.TransitionConfig{},
	}
}
