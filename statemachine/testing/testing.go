//nolint:varnamelen // short names idiomatic
package testing

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/amp-labs/mealy/logger"
	"github.com/amp-labs/mealy/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMachine wraps Machine with testing utilities. It records every
// transition of the most recent run.
type TestMachine[S comparable, I any, O any] struct {
	*statemachine.Machine[S, I, O]

	t          *testing.T
	trace      []TraceEntry[S, I]
	assertions []Assertion
	result     statemachine.Result[S, O]
	executed   bool
}

// TraceEntry records a single call of the transition function.
type TraceEntry[S comparable, I any] struct {
	Step  int
	From  S
	Input I
	To    S
	Error error
}

// Assertion represents a test assertion.
type Assertion struct {
	Name   string
	Passed bool
	Error  error
}

// NewTestMachine creates a test machine for a setup.
func NewTestMachine[S comparable, I any, O any](t *testing.T, setup statemachine.Setup[S, I, O]) *TestMachine[S, I, O] {
	t.Helper()

	return &TestMachine[S, I, O]{
		Machine:    statemachine.New(setup),
		t:          t,
		trace:      make([]TraceEntry[S, I], 0),
		assertions: make([]Assertion, 0),
	}
}

// Execute runs the machine over inputs, recording every transition. A nil
// ctx runs with logging muted; any other ctx logs as usual.
func (tm *TestMachine[S, I, O]) Execute(
	ctx context.Context, inputs []I, overrides ...statemachine.Option[S, I, O],
) statemachine.Result[S, O] {
	tm.t.Helper()

	if ctx == nil {
		ctx = logger.WithMuted(context.Background(), true)
	}

	tm.trace = tm.trace[:0]

	overrides = append(slices.Clone(overrides), tm.recordTransitions())

	tm.result = tm.Run(ctx, slices.Values(inputs), overrides...)
	tm.executed = true

	return tm.result
}

// recordTransitions wraps whatever transition function the run resolves to.
func (tm *TestMachine[S, I, O]) recordTransitions() statemachine.Option[S, I, O] {
	return func(setup *statemachine.Setup[S, I, O]) {
		inner := setup.CalculateNextState
		if inner == nil {
			return
		}

		setup.CalculateNextState = func(state S, input I) (S, error) {
			next, err := inner(state, input)

			tm.trace = append(tm.trace, TraceEntry[S, I]{
				Step:  len(tm.trace),
				From:  state,
				Input: input,
				To:    next,
				Error: err,
			})

			return next, err
		}
	}
}

func (tm *TestMachine[S, I, O]) record(name string, err error) bool {
	tm.t.Helper()

	tm.assertions = append(tm.assertions, Assertion{Name: name, Passed: err == nil, Error: err})

	return assert.NoError(tm.t, err, name)
}

func (tm *TestMachine[S, I, O]) requireExecuted() {
	tm.t.Helper()

	if !tm.executed {
		tm.t.Fatal("machine has not been executed")
	}
}

// AssertCompleted checks the last run reached the end state.
func (tm *TestMachine[S, I, O]) AssertCompleted() {
	tm.t.Helper()
	tm.requireExecuted()

	_, err := ExecutionCompleted[S, I, O]().Match(tm)
	tm.record("Execution completed", err)
}

// AssertAborted checks the last run aborted.
func (tm *TestMachine[S, I, O]) AssertAborted() {
	tm.t.Helper()
	tm.requireExecuted()

	_, err := ExecutionAborted[S, I, O]().Match(tm)
	tm.record("Execution aborted", err)
}

// AssertErrorKinds checks the kinds of the recorded errors, in order.
func (tm *TestMachine[S, I, O]) AssertErrorKinds(kinds ...string) {
	tm.t.Helper()
	tm.requireExecuted()

	_, err := ErrorKindsAre[S, I, O](kinds...).Match(tm)
	tm.record(fmt.Sprintf("Error kinds are %v", kinds), err)
}

// AssertStateVisited checks if a state was visited during execution.
func (tm *TestMachine[S, I, O]) AssertStateVisited(state S) {
	tm.t.Helper()
	tm.requireExecuted()

	_, err := StateWasVisited[S, I, O](state).Match(tm)
	tm.record(fmt.Sprintf("State '%v' was visited", state), err)
}

// AssertTransitionTaken checks if a specific transition occurred.
func (tm *TestMachine[S, I, O]) AssertTransitionTaken(from, to S) {
	tm.t.Helper()
	tm.requireExecuted()

	_, err := TransitionWasTaken[S, I, O](from, to).Match(tm)
	tm.record(fmt.Sprintf("Transition from '%v' to '%v' was taken", from, to), err)
}

// AssertFinalState checks the final state matches expected.
func (tm *TestMachine[S, I, O]) AssertFinalState(expected S) {
	tm.t.Helper()
	tm.requireExecuted()

	require.Equal(tm.t, expected, tm.result.FinalState, "final state should be '%v'", expected)
	tm.assertions = append(tm.assertions, Assertion{Name: fmt.Sprintf("Final state is '%v'", expected), Passed: true})
}

// AssertOutput checks the output of the last run.
func (tm *TestMachine[S, I, O]) AssertOutput(expected O) {
	tm.t.Helper()
	tm.requireExecuted()

	_, err := OutputEquals[S, I](expected).Match(tm)
	tm.record("Output matches", err)
}

// Expect runs the matchers against the last run and fails the test for
// every matcher that does not pass.
func (tm *TestMachine[S, I, O]) Expect(matchers ...Matcher[S, I, O]) {
	tm.t.Helper()
	tm.requireExecuted()

	for _, matcher := range matchers {
		_, err := matcher.Match(tm)
		tm.record(matcher.Description(), err)
	}
}

// Result returns the result of the last run.
func (tm *TestMachine[S, I, O]) Result() statemachine.Result[S, O] {
	return tm.result
}

// GetTrace returns the transitions of the last run for inspection.
func (tm *TestMachine[S, I, O]) GetTrace() []TraceEntry[S, I] {
	return tm.trace
}

// GetAssertions returns all assertions made.
func (tm *TestMachine[S, I, O]) GetAssertions() []Assertion {
	return tm.assertions
}

// AssertCompleted fails the test unless the run reached the end state.
func AssertCompleted[S comparable, O any](t *testing.T, result statemachine.Result[S, O]) {
	t.Helper()

	require.False(t, result.Aborted, "run should complete, aborted with %v", result.Err())
}

// AssertAborted fails the test unless the run aborted with an error of the given kind.
func AssertAborted[S comparable, O any](t *testing.T, result statemachine.Result[S, O], kind string) {
	t.Helper()

	require.True(t, result.Aborted, "run should abort")
	require.Equal(t, kind, statemachine.ErrorKind(result.Err()), "abort reason")
}

// AssertErrorKinds fails the test unless the recorded errors have exactly the given kinds.
func AssertErrorKinds[S comparable, O any](t *testing.T, result statemachine.Result[S, O], kinds ...string) {
	t.Helper()

	if len(kinds) == 0 {
		require.Empty(t, result.Errors)

		return
	}

	require.Equal(t, kinds, errorKinds(result.Errors))
}

func errorKinds(errs []error) []string {
	kinds := make([]string, 0, len(errs))
	for _, err := range errs {
		kinds = append(kinds, statemachine.ErrorKind(err))
	}

	return kinds
}
