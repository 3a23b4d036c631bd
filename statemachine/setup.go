package statemachine

import "fmt"

// Setup describes a machine. It carries no behavior of its own and is
// consumed by New. A Machine keeps its own copy, so changing a Setup after
// calling New has no effect on the machine.
type Setup[S comparable, I any, O any] struct {
	// Name labels the machine in logs, metrics and traces. Optional.
	Name string

	// InitialState is the state on which execution begins.
	InitialState S

	// EndState is the state which finishes execution. If all inputs are
	// exhausted before it is reached, the run aborts with an EndOfInputError.
	EndState S

	// InitialOutput seeds the action function, the way the initial value
	// seeds a fold. May be left as the zero value when O carries nothing.
	InitialOutput O

	// CalculateNextState computes the next state. Required.
	CalculateNextState NextStateFunc[S, I]

	// PerformStateAction computes the next output. Defaults to IdentityAction.
	PerformStateAction ActionFunc[S, I, O]

	// ActionStateOrder controls when PerformStateAction runs. Defaults to ActionOrderBefore.
	ActionStateOrder ActionOrder

	// HandleError is consulted after every callback failure. Defaults to AbortOnError.
	HandleError ErrorHandler[S, I, O]

	// CustomTransitionLogger renders the per-step log line. Defaults to DefaultTransitionLogger.
	CustomTransitionLogger TransitionLogger[S, I, O]

	// Logger receives structured run events. Defaults to a slog-backed DefaultLogger.
	Logger Logger

	// IsolateInitialOutput deep-copies InitialOutput at the start of every run
	// so that actions which grow the seed in place (append on a slice with
	// spare capacity, map writes) cannot leak between runs.
	IsolateInitialOutput bool
}

// Option overrides a single field of a Setup for one run.
type Option[S comparable, I any, O any] func(*Setup[S, I, O])

// WithName labels the run in logs, metrics and traces.
func WithName[S comparable, I any, O any](name string) Option[S, I, O] {
	return func(s *Setup[S, I, O]) {
		s.Name = name
	}
}

func WithInitialState[S comparable, I any, O any](state S) Option[S, I, O] {
	return func(s *Setup[S, I, O]) {
		s.InitialState = state
	}
}

func WithEndState[S comparable, I any, O any](state S) Option[S, I, O] {
	return func(s *Setup[S, I, O]) {
		s.EndState = state
	}
}

func WithInitialOutput[S comparable, I any, O any](output O) Option[S, I, O] {
	return func(s *Setup[S, I, O]) {
		s.InitialOutput = output
	}
}

func WithCalculateNextState[S comparable, I any, O any](f NextStateFunc[S, I]) Option[S, I, O] {
	return func(s *Setup[S, I, O]) {
		s.CalculateNextState = f
	}
}

func WithPerformStateAction[S comparable, I any, O any](f ActionFunc[S, I, O]) Option[S, I, O] {
	return func(s *Setup[S, I, O]) {
		s.PerformStateAction = f
	}
}

func WithActionStateOrder[S comparable, I any, O any](order ActionOrder) Option[S, I, O] {
	return func(s *Setup[S, I, O]) {
		s.ActionStateOrder = order
	}
}

// WithHandleError replaces the error handler, e.g. with ContinueOnError to tolerate failures.
func WithHandleError[S comparable, I any, O any](f ErrorHandler[S, I, O]) Option[S, I, O] {
	return func(s *Setup[S, I, O]) {
		s.HandleError = f
	}
}

func WithTransitionLogger[S comparable, I any, O any](f TransitionLogger[S, I, O]) Option[S, I, O] {
	return func(s *Setup[S, I, O]) {
		s.CustomTransitionLogger = f
	}
}

func WithLogger[S comparable, I any, O any](l Logger) Option[S, I, O] {
	return func(s *Setup[S, I, O]) {
		s.Logger = l
	}
}

// WithIsolatedInitialOutput toggles the per-run deep copy of the initial output.
func WithIsolatedInitialOutput[S comparable, I any, O any](isolate bool) Option[S, I, O] {
	return func(s *Setup[S, I, O]) {
		s.IsolateInitialOutput = isolate
	}
}

// AbortOnError is the default error handler: every callback failure aborts the run.
func AbortOnError[S comparable, I any, O any](*CallbackError[S, I, O]) bool {
	return false
}

// ContinueOnError swallows every callback failure.
func ContinueOnError[S comparable, I any, O any](*CallbackError[S, I, O]) bool {
	return true
}

// resolve copies the setup, applies the overrides in order and fills in
// defaults for every optional field left unset. The receiver is untouched.
func (s Setup[S, I, O]) resolve(overrides ...Option[S, I, O]) (Setup[S, I, O], error) {
	resolved := s

	for _, override := range overrides {
		if override != nil {
			override(&resolved)
		}
	}

	if resolved.PerformStateAction == nil {
		resolved.PerformStateAction = IdentityAction[S, I, O]()
	}

	if resolved.ActionStateOrder == "" {
		resolved.ActionStateOrder = ActionOrderBefore
	}

	if resolved.HandleError == nil {
		resolved.HandleError = AbortOnError[S, I, O]
	}

	if resolved.CustomTransitionLogger == nil {
		resolved.CustomTransitionLogger = DefaultTransitionLogger[S, I, O]
	}

	if resolved.Logger == nil {
		resolved.Logger = NewDefaultLogger()
	}

	if resolved.CalculateNextState == nil {
		return resolved, &InvalidSetupError{Err: ErrNextStateRequired}
	}

	if !resolved.ActionStateOrder.Valid() {
		return resolved, &InvalidSetupError{Err: fmt.Errorf("%w: %q", ErrInvalidActionOrder, resolved.ActionStateOrder)}
	}

	return resolved, nil
}
