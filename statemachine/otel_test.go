package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer creates a test tracer with an in-memory exporter.
func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
	)

	oldProvider := otel.GetTracerProvider()

	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(oldProvider)
	})

	return exporter
}

func spansFor(exporter *tracetest.InMemoryExporter, machine string) tracetest.SpanStubs {
	var spans tracetest.SpanStubs

	for _, span := range exporter.GetSpans() {
		for _, attr := range span.Attributes {
			if attr.Key == "machine" && attr.Value.AsString() == machine {
				spans = append(spans, span)
			}
		}
	}

	return spans
}

func attributeMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, attr := range attrs {
		out[attr.Key] = attr.Value
	}

	return out
}

// Cannot run in parallel: the test replaces the global tracer provider.
//
//nolint:paralleltest
func TestRunSpan(t *testing.T) {
	exporter := setupTestTracer(t)

	setup := tokenizerSetup()
	setup.Name = "otel-completed"

	result := New(setup).RunSlice(t.Context(), []string{"a", "b", ""})
	require.False(t, result.Aborted)

	spans := spansFor(exporter, "otel-completed")
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "statemachine.run", span.Name)
	assert.Equal(t, codes.Ok, span.Status.Code)

	attrs := attributeMap(span.Attributes)
	assert.Equal(t, result.RunID.String(), attrs["run_id"].AsString())
	assert.Equal(t, "After", attrs["action_state_order"].AsString())
	assert.Equal(t, int64(3), attrs["execution_count"].AsInt64())
	assert.False(t, attrs["aborted"].AsBool())
	assert.Empty(t, span.Events)
}

//nolint:paralleltest
func TestRunSpanCallbackErrors(t *testing.T) {
	exporter := setupTestTracer(t)

	setup := tokenizerSetup()
	setup.Name = "otel-aborted"
	setup.PerformStateAction = func(_ string, input string, output []string) ([]string, error) {
		if input == "b" {
			return output, errBoom
		}

		return append(output, input), nil
	}

	result := New(setup).RunSlice(t.Context(), []string{"a", "b", ""})
	require.True(t, result.Aborted)

	spans := spansFor(exporter, "otel-aborted")
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, codes.Error, span.Status.Code)

	var callbackEvents []map[attribute.Key]attribute.Value

	for _, event := range span.Events {
		if event.Name == "callback_error" {
			callbackEvents = append(callbackEvents, attributeMap(event.Attributes))
		}
	}

	require.Len(t, callbackEvents, 1)
	assert.Equal(t, "StateActionError", callbackEvents[0]["kind"].AsString())
	assert.Equal(t, int64(1), callbackEvents[0]["step"].AsInt64())
	assert.False(t, callbackEvents[0]["recovered"].AsBool())

	attrs := attributeMap(span.Attributes)
	assert.True(t, attrs["aborted"].AsBool())
	assert.Equal(t, int64(1), attrs["error_count"].AsInt64())
}
