package statemachine

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTransitionLogger(t *testing.T) {
	t.Parallel()

	line := DefaultTransitionLogger[string, string, []string]("Start", "a", 0, nil)
	assert.Equal(t, `current state: "Start", input: "a" index: 0`, line)

	type point struct{ X, Y int }

	line = DefaultTransitionLogger[point, rune, int](point{1, 2}, 'x', 3, 0)
	assert.Equal(t, `current state: {"X":1,"Y":2}, input: 120 index: 3`, line)
}

func TestJSONStringFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"x"`, jsonString("x"))
	assert.Equal(t, "null", jsonString(nil))
	assert.NotEmpty(t, jsonString(func() {}))
}

func TestSlogLoggerWithSlogt(t *testing.T) {
	t.Parallel()

	setup := tokenizerSetup()
	setup.Logger = NewSlogLogger(slogt.New(t))
	setup.PerformStateAction = func(string, string, []string) ([]string, error) {
		return nil, errBoom
	}

	result := New(setup).RunSlice(t.Context(), []string{"a", ""},
		WithHandleError(ContinueOnError[string, string, []string]),
	)

	assert.False(t, result.Aborted)
	assert.Len(t, result.Errors, 2)
}

func TestSlogLoggerOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	setup := tokenizerSetup()
	setup.Logger = NewSlogLogger(base)

	result := New(setup).RunSlice(t.Context(), []string{"a"})
	require.True(t, result.Aborted)

	out := buf.String()
	assert.Contains(t, out, "msg=\"Run started\"")
	assert.Contains(t, out, "msg=\"Step started\"")
	assert.Contains(t, out, "msg=\"Run aborted\"")
	assert.Contains(t, out, "machine=tokenizer")
	assert.Contains(t, out, "run_id="+result.RunID.String())
	assert.NotContains(t, out, "Run completed")
}
