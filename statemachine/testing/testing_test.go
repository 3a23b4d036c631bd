package testing

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/amp-labs/mealy/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestNewTestMachine(t *testing.T) {
	t.Parallel()

	machine := NewTestMachine(t, TokenizerSetup())

	assert.NotNil(t, machine.Machine)
	assert.Empty(t, machine.GetTrace())
	assert.Empty(t, machine.GetAssertions())
}

func TestTestMachineExecute(t *testing.T) {
	t.Parallel()

	machine := NewTestMachine(t, TokenizerSetup())

	result := machine.Execute(t.Context(), []string{"a", "b", ""})
	require.False(t, result.Aborted)
	assert.Equal(t, result, machine.Result())

	trace := machine.GetTrace()
	require.Len(t, trace, 3)
	assert.Equal(t, TraceEntry[string, string]{Step: 0, From: StateStart, Input: "a", To: StateDoStuff}, trace[0])
	assert.Equal(t, StateEnd, trace[2].To)

	machine.AssertCompleted()
	machine.AssertFinalState(StateEnd)
	machine.AssertOutput([]string{"a", "b"})
	machine.AssertStateVisited(StateStart)
	machine.AssertStateVisited(StateDoStuff)
	machine.AssertTransitionTaken(StateStart, StateDoStuff)
	machine.AssertTransitionTaken(StateDoStuff, StateDoStuff)
	machine.AssertErrorKinds()

	for _, assertion := range machine.GetAssertions() {
		assert.True(t, assertion.Passed, assertion.Name)
	}
}

func TestTestMachineTraceResetsPerRun(t *testing.T) {
	t.Parallel()

	machine := NewTestMachine(t, TokenizerSetup())

	machine.Execute(t.Context(), []string{"a", "b", "c", ""})
	require.Len(t, machine.GetTrace(), 4)

	machine.Execute(nil, []string{""}) //nolint:staticcheck
	require.Len(t, machine.GetTrace(), 1)
	machine.AssertCompleted()
}

func TestTestMachineRecordsOverriddenTransition(t *testing.T) {
	t.Parallel()

	machine := NewTestMachine(t, TokenizerSetup())

	machine.Execute(t.Context(), []string{"a", "b"},
		statemachine.WithCalculateNextState[string, string, []string](statemachine.Always[string, string](StateEnd)),
	)

	machine.AssertCompleted()
	assert.Len(t, machine.GetTrace(), 1)
	machine.AssertTransitionTaken(StateStart, StateEnd)
}

func TestTestMachineAborted(t *testing.T) {
	t.Parallel()

	setup := TokenizerSetup()
	setup.PerformStateAction = FailOn("b", errBoom)

	machine := NewTestMachine(t, setup)
	result := machine.Execute(t.Context(), []string{"a", "b", ""})

	machine.AssertAborted()
	machine.AssertErrorKinds("StateActionError")
	machine.AssertOutput([]string{"a"})
	require.ErrorIs(t, result.Err(), errBoom)

	AssertAborted(t, result, "StateActionError")
	AssertErrorKinds(t, result, "StateActionError")
}

func TestTestMachineTolerated(t *testing.T) {
	t.Parallel()

	setup := TokenizerSetup()
	setup.PerformStateAction = FailOn("b", errBoom)

	machine := NewTestMachine(t, setup)
	result := machine.Execute(t.Context(), []string{"a", "b", ""},
		statemachine.WithHandleError(statemachine.ContinueOnError[string, string, []string]),
	)

	AssertCompleted(t, result)
	AssertErrorKinds(t, result, "StateActionError")
	machine.AssertOutput([]string{"a"})
}

func TestMatchers(t *testing.T) {
	t.Parallel()

	machine := NewTestMachine(t, TokenizerSetup())

	matched, err := ExecutionCompleted[string, string, []string]().Match(machine)
	assert.False(t, matched)
	require.ErrorIs(t, err, ErrNotExecuted)

	machine.Execute(t.Context(), []string{"a"})

	tests := []struct {
		name    string
		matcher Matcher[string, string, []string]
		matched bool
		err     error
	}{
		{"completed", ExecutionCompleted[string, string, []string](), false, ErrExecutionAborted},
		{"aborted", ExecutionAborted[string, string, []string](), true, nil},
		{"visited", StateWasVisited[string, string, []string](StateDoStuff), true, nil},
		{"not visited", StateWasVisited[string, string, []string](StateEnd), false, ErrStateNotVisited},
		{"transition", TransitionWasTaken[string, string, []string](StateStart, StateDoStuff), true, nil},
		{"no transition", TransitionWasTaken[string, string, []string](StateDoStuff, StateEnd), false, ErrTransitionNotTaken},
		{"kinds", ErrorKindsAre[string, string, []string]("EndOfInputError"), true, nil},
		{"wrong kinds", ErrorKindsAre[string, string, []string](), false, ErrErrorKindsMismatch},
		{"output", OutputEquals[string, string]([]string{"a"}), true, nil},
		{"wrong output", OutputEquals[string, string]([]string{"b"}), false, ErrOutputMismatch},
		{"steps", StepsTaken[string, string, []string](1), true, nil},
		{"all", All(ExecutionAborted[string, string, []string](), StepsTaken[string, string, []string](1)), true, nil},
		{"all fails", All(ExecutionAborted[string, string, []string](), StepsTaken[string, string, []string](2)), false, nil},
		{"any", Any(ExecutionCompleted[string, string, []string](), StepsTaken[string, string, []string](1)), true, nil},
		{"any fails", Any(ExecutionCompleted[string, string, []string]()), false, ErrNoMatchersPassed},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			matched, err := test.matcher.Match(machine)
			assert.Equal(t, test.matched, matched)

			switch {
			case test.err != nil:
				require.ErrorIs(t, err, test.err)
			case test.matched:
				require.NoError(t, err)
			default:
				require.Error(t, err)
			}

			assert.NotEmpty(t, test.matcher.Description())
		})
	}
}

func TestTokenizerScenarios(t *testing.T) {
	t.Parallel()

	RunScenarios(t, TokenizerSetup(), TokenizerScenarios()...)
}

func TestLoadTestConfig(t *testing.T) {
	t.Parallel()

	_, err := LoadTestConfig("missing.yaml")
	require.Error(t, err)

	config := CreateTestConfig("empty", StateStart, StateEnd)
	config.Transitions = append(config.Transitions, statemachine.TransitionConfig{From: StateStart, To: StateEnd, Any: true})
	require.NoError(t, config.Validate())

	machine := NewTestMachine(t, statemachine.FromConfig[[]string](config))
	machine.Execute(t.Context(), []string{"anything"})
	machine.AssertCompleted()
	machine.AssertFinalState(StateEnd)
}

//nolint:paralleltest // Replaces the default slog logger.
func TestTestMachineExecuteMutesOnlyNilContext(t *testing.T) {
	var buf bytes.Buffer

	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	setup := TokenizerSetup()
	setup.Name = "mute_check"

	machine := NewTestMachine(t, setup)

	machine.Execute(nil, []string{"a", ""}) //nolint:staticcheck
	machine.AssertCompleted()
	assert.NotContains(t, buf.String(), "mute_check")

	machine.Execute(context.Background(), []string{"a", ""})
	machine.AssertCompleted()
	assert.Contains(t, buf.String(), "machine=mute_check")
}
