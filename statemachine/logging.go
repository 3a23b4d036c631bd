package statemachine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/amp-labs/mealy/logger"
	"github.com/google/uuid"
)

// RunInfo identifies a run in Logger events.
type RunInfo struct {
	Machine string
	RunID   uuid.UUID
	Order   ActionOrder
}

// RunSummary describes a finished run.
type RunSummary struct {
	FinalState     any
	ExecutionCount int
	Aborted        bool
	ErrorCount     int
	Duration       time.Duration
	Err            error
}

// Logger provides structured logging hooks for machine runs. It is separate
// from Result.Logs, which are always collected.
type Logger interface {
	RunStarted(ctx context.Context, info RunInfo)
	StepStarted(ctx context.Context, info RunInfo, step int, line string)
	CallbackFailed(ctx context.Context, info RunInfo, err error, recovered bool)
	RunFinished(ctx context.Context, info RunInfo, summary RunSummary)
}

// DefaultLogger implements Logger on top of log/slog. Without a base logger
// it logs through the logger package, which picks up the subsystem and any
// values attached to the run's context.
type DefaultLogger struct {
	base *slog.Logger
}

// NewDefaultLogger creates a new default logger.
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{}
}

// NewSlogLogger creates a DefaultLogger that writes to the given slog logger.
func NewSlogLogger(base *slog.Logger) *DefaultLogger {
	return &DefaultLogger{base: base}
}

func (l *DefaultLogger) get(ctx context.Context) *slog.Logger {
	if l.base != nil {
		return l.base
	}

	return logger.Get(ctx)
}

func (l *DefaultLogger) RunStarted(ctx context.Context, info RunInfo) {
	l.get(ctx).DebugContext(ctx, "Run started",
		"machine", sanitizeMachine(info.Machine),
		"run_id", info.RunID.String(),
		"action_state_order", info.Order.String(),
	)
}

func (l *DefaultLogger) StepStarted(ctx context.Context, info RunInfo, step int, line string) {
	l.get(ctx).DebugContext(ctx, "Step started",
		"machine", sanitizeMachine(info.Machine),
		"run_id", info.RunID.String(),
		"step", step,
		"transition", line,
	)
}

func (l *DefaultLogger) CallbackFailed(ctx context.Context, info RunInfo, err error, recovered bool) {
	l.get(ctx).WarnContext(ctx, "Callback failed",
		"machine", sanitizeMachine(info.Machine),
		"run_id", info.RunID.String(),
		"kind", ErrorKind(err),
		"recovered", recovered,
		"error", err,
	)
}

func (l *DefaultLogger) RunFinished(ctx context.Context, info RunInfo, summary RunSummary) {
	fields := []any{
		"machine", sanitizeMachine(info.Machine),
		"run_id", info.RunID.String(),
		"final_state", jsonString(summary.FinalState),
		"execution_count", summary.ExecutionCount,
		"error_count", summary.ErrorCount,
		"duration_ms", summary.Duration.Milliseconds(),
	}

	if summary.Aborted {
		l.get(ctx).WarnContext(ctx, "Run aborted", append(fields, "error", summary.Err)...)
	} else {
		l.get(ctx).InfoContext(ctx, "Run completed", fields...)
	}
}

// DefaultTransitionLogger renders the state, input and step index of a step.
func DefaultTransitionLogger[S comparable, I any, O any](state S, input I, index int, _ O) string {
	return fmt.Sprintf("current state: %s, input: %s index: %d", jsonString(state), jsonString(input), index)
}

// jsonString renders a value as JSON, falling back to fmt for values that
// cannot be marshaled (funcs, channels, cyclic structures).
func jsonString(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	return string(data)
}
