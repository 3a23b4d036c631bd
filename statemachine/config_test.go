package statemachine

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectNonEmpty(_ string, input string, output []string) ([]string, error) {
	if input == "" {
		return output, nil
	}

	return append(output, input), nil
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	config, err := LoadConfig("testdata/tokenizer.yaml")
	require.NoError(t, err)

	assert.Equal(t, "tokenizer", config.Name)
	assert.Equal(t, "Start", config.InitialState)
	assert.Equal(t, "End", config.EndState)
	assert.Equal(t, ActionOrderAfter, config.ActionStateOrder)
	assert.Equal(t, []string{"Start", "DoStuff", "End"}, config.States)
	require.Len(t, config.Transitions, 4)
	assert.Equal(t, []string{""}, config.Transitions[0].On)
	assert.True(t, config.Transitions[1].Any)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig("testdata/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfigFromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"tables/toggle.yaml": {Data: []byte(`
name: toggle
initialState: "off"
endState: done
transitions:
  - {from: "off", to: "on", on: [press]}
  - {from: "on", to: "off", on: [press]}
  - {from: "on", to: done, on: [stop]}
`)},
	}

	config, err := LoadConfigFromFS(fsys, "tables/toggle.yaml")
	require.NoError(t, err)
	assert.Equal(t, "toggle", config.Name)
	assert.Empty(t, config.ActionStateOrder)

	_, err = LoadConfigFromFS(fsys, "tables/other.yaml")
	require.Error(t, err)
}

type mapLoader map[string]string

func (m mapLoader) LoadByName(name string) ([]byte, error) {
	data, ok := m[name]
	if !ok {
		return nil, errors.New("not found")
	}

	return []byte(data), nil
}

func (m mapLoader) ListAvailable() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	return names
}

//nolint:paralleltest // Replaces the package-level config loader.
func TestLoadConfigByName(t *testing.T) {
	SetConfigLoader(nil)

	_, err := LoadConfig("tokenizer")
	require.ErrorIs(t, err, ErrNoConfigLoader)

	SetConfigLoader(mapLoader{
		"tiny": "name: tiny\ninitialState: a\nendState: b\ntransitions:\n  - {from: a, to: b, any: true}\n",
	})
	t.Cleanup(func() { SetConfigLoader(nil) })

	config, err := LoadConfig("tiny")
	require.NoError(t, err)
	assert.Equal(t, "tiny", config.Name)

	_, err = LoadConfig("huge")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: [tiny]")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			Name:         "test",
			InitialState: "a",
			EndState:     "c",
			States:       []string{"a", "b", "c"},
			Transitions: []TransitionConfig{
				{From: "a", To: "b", On: []string{"x"}},
				{From: "b", To: "c", Any: true},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		err    error
	}{
		{"valid", func(*Config) {}, nil},
		{"no name", func(c *Config) { c.Name = "" }, ErrConfigNameRequired},
		{"no initial", func(c *Config) { c.InitialState = "" }, ErrInitialStateRequired},
		{"no end", func(c *Config) { c.EndState = "" }, ErrEndStateRequired},
		{"bad order", func(c *Config) { c.ActionStateOrder = "Sideways" }, ErrInvalidActionOrder},
		{"duplicate state", func(c *Config) { c.States = append(c.States, "a") }, ErrDuplicateStateName},
		{"undeclared initial", func(c *Config) { c.InitialState = "z" }, ErrUnknownState},
		{"undeclared end", func(c *Config) { c.EndState = "z" }, ErrUnknownState},
		{"undeclared target", func(c *Config) { c.Transitions[0].To = "z" }, ErrUnknownState},
		{"undeclared states allowed without list", func(c *Config) {
			c.States = nil
			c.Transitions[0].To = "z"
		}, nil},
		{"no from", func(c *Config) { c.Transitions[0].From = "" }, ErrTransitionFromRequired},
		{"no to", func(c *Config) { c.Transitions[0].To = "" }, ErrTransitionToRequired},
		{"no inputs", func(c *Config) { c.Transitions[0].On = nil }, ErrTransitionInputRequired},
		{"duplicate input", func(c *Config) {
			c.Transitions = append(c.Transitions, TransitionConfig{From: "a", To: "c", On: []string{"x"}})
		}, ErrDuplicateTransition},
		{"duplicate any", func(c *Config) {
			c.Transitions = append(c.Transitions, TransitionConfig{From: "b", To: "a", Any: true})
		}, ErrDuplicateTransition},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			config := valid()
			test.mutate(&config)

			err := config.Validate()
			if test.err == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, test.err)
			}
		})
	}
}

func TestLoadConfigFromBytesRejectsInvalid(t *testing.T) {
	t.Parallel()

	_, err := LoadConfigFromBytes([]byte("name: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")

	_, err = LoadConfigFromBytes([]byte("name: x\ninitialState: a\nendState: b\nactionStateOrder: sideways\n"))
	require.ErrorIs(t, err, ErrInvalidActionOrder)
}

func TestNextStateFunc(t *testing.T) {
	t.Parallel()

	config, err := LoadConfig("testdata/tokenizer.yaml")
	require.NoError(t, err)

	next := config.NextStateFunc()

	state, err := next("Start", "")
	require.NoError(t, err)
	assert.Equal(t, "End", state)

	state, err = next("Start", "word")
	require.NoError(t, err)
	assert.Equal(t, "DoStuff", state)

	_, err = next("End", "word")
	require.ErrorIs(t, err, ErrTransitionNotFound)
}

func TestFromConfigRunsTokenizer(t *testing.T) {
	t.Parallel()

	config, err := LoadConfig("testdata/tokenizer.yaml")
	require.NoError(t, err)

	setup := FromConfig(config,
		WithInitialOutput[string, string, []string]([]string{}),
		WithPerformStateAction[string, string, []string](collectNonEmpty),
		WithLogger[string, string, []string](&recordingLogger{}),
	)

	assert.Equal(t, "tokenizer", setup.Name)
	assert.Equal(t, ActionOrderAfter, setup.ActionStateOrder)

	machine := New(setup)

	result := machine.RunSlice(t.Context(), []string{"a", "b", ""})
	assert.False(t, result.Aborted)
	assert.Equal(t, []string{"a", "b"}, result.Output)

	result = machine.RunSlice(t.Context(), []string{"a"})
	require.ErrorIs(t, result.Err(), ErrEndOfInput)
	assert.Equal(t, "DoStuff", result.FinalState)
}
