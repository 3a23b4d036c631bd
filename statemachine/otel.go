package statemachine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "statemachine"

// startRunSpan creates the root span of a run.
// Uses the global tracer provider installed by the telemetry package.
// The caller is responsible for calling finishRunSpan.
//
//nolint:spancheck // Span lifecycle managed by caller
func startRunSpan(ctx context.Context, info RunInfo) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "statemachine.run")
	span.SetAttributes(
		attribute.String("machine", sanitizeMachine(info.Machine)),
		attribute.String("run_id", info.RunID.String()),
		attribute.String("action_state_order", info.Order.String()),
	)

	return ctx, span
}

// recordCallbackErrorEvent adds a callback_error event to the run span.
func recordCallbackErrorEvent(span trace.Span, err error, step int, recovered bool) {
	span.AddEvent("callback_error", trace.WithAttributes(
		attribute.String("kind", ErrorKind(err)),
		attribute.Int("step", step),
		attribute.Bool("recovered", recovered),
		attribute.String("error", err.Error()),
	))
}

// finishRunSpan sets the final attributes and status and ends the span.
func finishRunSpan(span trace.Span, summary RunSummary) {
	span.SetAttributes(
		attribute.Int("execution_count", summary.ExecutionCount),
		attribute.Bool("aborted", summary.Aborted),
		attribute.Int("error_count", summary.ErrorCount),
	)

	if summary.Aborted {
		if summary.Err != nil {
			span.RecordError(summary.Err)
			span.SetStatus(codes.Error, summary.Err.Error())
		} else {
			span.SetStatus(codes.Error, "aborted")
		}
	} else {
		span.SetStatus(codes.Ok, "completed")
	}

	span.End()
}
