package statemachine

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Machine runs a Setup against input sequences. It holds no per-run state,
// so one Machine may be run any number of times, including concurrently.
type Machine[S comparable, I any, O any] struct {
	setup Setup[S, I, O]
}

// New creates a machine from a setup. It performs no validation; problems
// with the setup are reported by Run.
//
// The machine is a Mealy machine whose outputs are generated separately from
// the state transition: PerformStateAction produces outputs and
// CalculateNextState produces states. An action that ignores its input
// turns it into a Moore machine.
func New[S comparable, I any, O any](setup Setup[S, I, O]) *Machine[S, I, O] {
	return &Machine[S, I, O]{setup: setup}
}

// Setup returns a copy of the setup the machine was created with.
func (m *Machine[S, I, O]) Setup() Setup[S, I, O] {
	return m.setup
}

// RunSlice is Run over a slice of inputs.
func (m *Machine[S, I, O]) RunSlice(ctx context.Context, inputs []I, overrides ...Option[S, I, O]) Result[S, O] {
	return m.Run(ctx, slices.Values(inputs), overrides...)
}

// Run consumes inputs one at a time until the end state is reached, the inputs
// run out, or a callback failure is not recovered by the error handler.
// Overrides apply to this run only; the machine's setup is never modified.
//
// Run never returns an error: every failure is recorded in Result.Errors and
// reflected by Result.Aborted. The context only scopes logging and tracing,
// a run is not cancellable.
func (m *Machine[S, I, O]) Run(ctx context.Context, inputs iter.Seq[I], overrides ...Option[S, I, O]) Result[S, O] {
	setup, setupErr := m.setup.resolve(overrides...)

	info := RunInfo{
		Machine: setup.Name,
		RunID:   uuid.New(),
		Order:   setup.ActionStateOrder,
	}

	ctx, span := startRunSpan(ctx, info)
	start := time.Now()

	setup.Logger.RunStarted(ctx, info)

	r := &run[S, I, O]{
		ctx:    ctx,
		span:   span,
		info:   info,
		setup:  setup,
		state:  setup.InitialState,
		output: seedOutput(ctx, setup.Name, setup.InitialOutput, setup.IsolateInitialOutput),
		logs:   []string{},
		errors: []error{},
	}

	if setupErr != nil {
		r.abort(setupErr)
	} else {
		r.execute(inputs)
	}

	result := r.result()

	summary := RunSummary{
		FinalState:     result.FinalState,
		ExecutionCount: result.ExecutionCount,
		Aborted:        result.Aborted,
		ErrorCount:     len(result.Errors),
		Duration:       time.Since(start),
		Err:            result.Err(),
	}

	recordRunMetrics(setup.Name, summary.Aborted, summary.ExecutionCount, summary.Duration.Seconds())
	finishRunSpan(span, summary)
	setup.Logger.RunFinished(ctx, info, summary)

	return result
}

// run holds the accumulators of a single invocation of Machine.Run.
type run[S comparable, I any, O any] struct {
	ctx   context.Context //nolint:containedctx // scoped to a single synchronous run
	span  trace.Span
	info  RunInfo
	setup Setup[S, I, O]

	state   S
	output  O
	logs    []string
	errors  []error
	aborted bool
	count   int
}

func (r *run[S, I, O]) execute(inputs iter.Seq[I]) {
	if inputs == nil {
		inputs = func(func(I) bool) {}
	}

	r.logs = append(r.logs,
		"actionStateOrder: "+r.setup.ActionStateOrder.String(),
		"Starting with output "+jsonString(r.output),
		"Starting on state "+jsonString(r.state),
	)

	next, stop := iter.Pull(inputs)
	defer stop()

	for r.state != r.setup.EndState {
		input, ok := next()
		if !ok {
			if r.count == 0 {
				r.abort(&EmptyInputError{})
			} else {
				r.abort(&EndOfInputError[S, O]{State: r.state, Output: r.output})
			}

			return
		}

		line := r.setup.CustomTransitionLogger(r.state, input, r.count, r.output)
		r.logs = append(r.logs, line)
		r.setup.Logger.StepStarted(r.ctx, r.info, r.count, line)

		// perform pre transition action
		if r.setup.ActionStateOrder.runsBefore() && !r.performAction(input) {
			return
		}

		// transition to next state
		previous := r.state
		if !r.calculateNextState(input) {
			return
		}

		// perform post transition action
		if runsAfter(r.setup.ActionStateOrder, previous, r.state) && !r.performAction(input) {
			return
		}

		r.count++
	}
}

// performAction runs the action and reports whether the run may continue.
func (r *run[S, I, O]) performAction(input I) bool {
	output, err := invokeAction(r.setup.PerformStateAction, r.state, input, r.output)
	if err != nil {
		return r.respond(NewStateActionError(r.state, input, r.output, err))
	}

	r.output = output

	return true
}

// calculateNextState runs the transition and reports whether the run may continue.
func (r *run[S, I, O]) calculateNextState(input I) bool {
	state, err := invokeNextState(r.setup.CalculateNextState, r.state, input)
	if err != nil {
		return r.respond(NewCalculateNextStateError(r.state, input, r.output, err))
	}

	r.state = state

	return true
}

// respond records a callback failure and consults the error handler.
// It returns false when the run must halt immediately.
func (r *run[S, I, O]) respond(cbErr *CallbackError[S, I, O]) bool {
	r.errors = append(r.errors, cbErr)
	r.logs = append(r.logs, "Error: "+cbErr.Kind.String())

	recovered := r.setup.HandleError(cbErr)

	recordCallbackErrorMetric(r.setup.Name, cbErr, recovered)
	recordCallbackErrorEvent(r.span, cbErr, r.count, recovered)
	r.setup.Logger.CallbackFailed(r.ctx, r.info, cbErr, recovered)

	if !recovered {
		r.aborted = true

		return false
	}

	r.logs = append(r.logs, "Error handled. Resuming operation...")

	return true
}

// abort records an error that stops the run without consulting the error handler.
func (r *run[S, I, O]) abort(err error) {
	r.errors = append(r.errors, err)
	r.aborted = true

	recordStructuralErrorMetric(r.setup.Name, err)
}

func (r *run[S, I, O]) result() Result[S, O] {
	return Result[S, O]{
		RunID:          r.info.RunID,
		Output:         r.output,
		FinalState:     r.state,
		Logs:           r.logs,
		Errors:         r.errors,
		Aborted:        r.aborted,
		ExecutionCount: r.count,
	}
}

// invokeAction calls the action, converting a panic into an error.
func invokeAction[S comparable, I any, O any](
	action ActionFunc[S, I, O], state S, input I, output O,
) (next O, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			next = output
			err = fmt.Errorf("%w: %v", ErrCallbackPanic, rec)
		}
	}()

	return action(state, input, output)
}

// invokeNextState calls the transition function, converting a panic into an error.
func invokeNextState[S comparable, I any](calc NextStateFunc[S, I], state S, input I) (next S, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			next = state
			err = fmt.Errorf("%w: %v", ErrCallbackPanic, rec)
		}
	}()

	return calc(state, input)
}
