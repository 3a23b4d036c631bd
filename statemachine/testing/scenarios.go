package testing

import (
	"testing"

	"github.com/amp-labs/mealy/statemachine"
)

// TestScenario is one run of a machine together with the expectations on it.
type TestScenario[S comparable, I any, O any] struct {
	Name      string
	Inputs    []I
	Overrides []statemachine.Option[S, I, O]
	Expect    []Matcher[S, I, O]
}

// RunScenarios runs every scenario against a fresh machine built from setup,
// each in its own subtest.
func RunScenarios[S comparable, I any, O any](
	t *testing.T, setup statemachine.Setup[S, I, O], scenarios ...TestScenario[S, I, O],
) {
	t.Helper()

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			t.Parallel()

			machine := NewTestMachine(t, setup)
			machine.Execute(t.Context(), scenario.Inputs, scenario.Overrides...)
			machine.Expect(scenario.Expect...)
		})
	}
}

// TokenizerScenarios covers the documented outcomes of TokenizerSetup.
func TokenizerScenarios() []TestScenario[string, string, []string] {
	return []TestScenario[string, string, []string]{
		{
			Name:   "reaches end state",
			Inputs: []string{"a", "b", ""},
			Expect: []Matcher[string, string, []string]{
				ExecutionCompleted[string, string, []string](),
				OutputEquals[string, string]([]string{"a", "b"}),
				StepsTaken[string, string, []string](3),
				TransitionWasTaken[string, string, []string](StateDoStuff, StateEnd),
			},
		},
		{
			Name:   "empty input",
			Inputs: []string{},
			Expect: []Matcher[string, string, []string]{
				ExecutionAborted[string, string, []string](),
				ErrorKindsAre[string, string, []string]("EmptyInputError"),
				OutputEquals[string, string]([]string{}),
			},
		},
		{
			Name:   "end of input",
			Inputs: []string{"a"},
			Expect: []Matcher[string, string, []string]{
				ExecutionAborted[string, string, []string](),
				ErrorKindsAre[string, string, []string]("EndOfInputError"),
				OutputEquals[string, string]([]string{"a"}),
				StateWasVisited[string, string, []string](StateDoStuff),
			},
		},
	}
}
