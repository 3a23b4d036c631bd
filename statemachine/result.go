package statemachine

import "github.com/google/uuid"

// Result is the outcome of a single run.
type Result[S comparable, O any] struct {
	// RunID identifies the run in logs and traces.
	RunID uuid.UUID

	// Output is the final calculated output. When the run aborted it is
	// whatever output was last calculated.
	Output O

	// FinalState is the state the run finished on. Equal to the end state
	// when the run completed.
	FinalState S

	// Logs are human-readable diagnostics, in order.
	Logs []string

	// Errors lists every error encountered, in order. An error here does not
	// mean the run aborted: recovered callback failures are recorded too.
	Errors []error

	// Aborted is true when the run stopped before reaching the end state.
	// Check it before trusting Output.
	Aborted bool

	// ExecutionCount is the number of inputs fully processed.
	ExecutionCount int
}

// Completed reports whether the run reached the end state.
func (r Result[S, O]) Completed() bool {
	return !r.Aborted
}

// Err returns the error that stopped the run, or nil if the run completed.
func (r Result[S, O]) Err() error {
	if !r.Aborted || len(r.Errors) == 0 {
		return nil
	}

	return r.Errors[len(r.Errors)-1]
}
