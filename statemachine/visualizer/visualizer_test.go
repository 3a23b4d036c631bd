package visualizer

import (
	"strings"
	"testing"

	"github.com/amp-labs/mealy/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenizerConfig() *statemachine.Config {
	return &statemachine.Config{
		Name:         "tokenizer",
		InitialState: "Start",
		EndState:     "End",
		States:       []string{"Start", "DoStuff", "End"},
		Transitions: []statemachine.TransitionConfig{
			{From: "Start", To: "End", On: []string{""}},
			{From: "Start", To: "DoStuff", Any: true},
			{From: "DoStuff", To: "End", On: []string{""}},
			{From: "DoStuff", To: "DoStuff", On: []string{"a", "b c"}, Any: true},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	t.Parallel()

	diagram, err := GenerateMermaid(tokenizerConfig())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(diagram, "```mermaid\nstateDiagram-TD\n"))
	assert.True(t, strings.HasSuffix(diagram, "```\n"))

	for _, want := range []string{
		"    [*] --> Start\n",
		"    Start --> End: \"\"\n",
		"    Start --> DoStuff: *\n",
		"    DoStuff --> DoStuff: a, \"b c\", *\n",
		"    class End endState\n",
		"    End --> [*]\n",
	} {
		assert.Contains(t, diagram, want)
	}
}

func TestGenerateMermaidWithOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions().
		WithShowInputs(false).
		WithDirection("lr").
		WithHighlightPath([]string{"Start", "DoStuff"})

	diagram, err := GenerateMermaidWithOptions(tokenizerConfig(), opts)
	require.NoError(t, err)

	assert.Contains(t, diagram, "stateDiagram-LR\n")
	assert.Contains(t, diagram, "    class Start highlighted\n")
	assert.Contains(t, diagram, "    class DoStuff highlighted\n")
	assert.Contains(t, diagram, "    Start --> DoStuff\n")
	assert.NotContains(t, diagram, ": *")
}

func TestGenerateMermaidDerivesStates(t *testing.T) {
	t.Parallel()

	config := tokenizerConfig()
	config.States = nil

	diagram, err := GenerateMermaid(config)
	require.NoError(t, err)

	start := strings.Index(diagram, "Start --> End")
	doStuff := strings.Index(diagram, "DoStuff --> End")
	end := strings.Index(diagram, "End --> [*]")

	require.NotEqual(t, -1, start)
	require.NotEqual(t, -1, doStuff)
	require.NotEqual(t, -1, end)
	assert.Less(t, start, doStuff)
	assert.Less(t, doStuff, end)
}

func TestGenerateMermaidErrors(t *testing.T) {
	t.Parallel()

	_, err := GenerateMermaid(nil)
	require.ErrorIs(t, err, ErrConfigNil)

	_, err = GenerateMermaid(&statemachine.Config{Name: "empty"})
	require.ErrorIs(t, err, ErrNoInitialState)

	_, err = GenerateMermaidWithOptions(tokenizerConfig(), DefaultOptions().WithDirection("diagonal"))
	require.ErrorIs(t, err, ErrInvalidDirection)
}

func TestGenerateMermaidFromFile(t *testing.T) {
	t.Parallel()

	diagram, err := GenerateMermaidFromFile("../testdata/tokenizer.yaml")
	require.NoError(t, err)
	assert.Contains(t, diagram, "[*] --> Start")

	_, err = GenerateMermaidFromFile("testdata/missing.yaml")
	require.Error(t, err)
}
