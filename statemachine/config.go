package statemachine

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigLoader is an interface for loading configurations by name.
// Applications can implement this to provide embedded or custom config loading.
type ConfigLoader interface {
	LoadByName(name string) ([]byte, error)
	ListAvailable() []string
}

var (
	// defaultConfigLoader is the global config loader used by LoadConfig.
	// Applications can set this to provide embedded configs.
	defaultConfigLoader ConfigLoader
)

// SetConfigLoader sets the default config loader for name-based loading.
func SetConfigLoader(loader ConfigLoader) {
	defaultConfigLoader = loader
}

// Config is a declarative transition table over string states and string
// inputs. It describes the transition function only; actions stay in code.
type Config struct {
	Name             string             `json:"name"             yaml:"name"`
	InitialState     string             `json:"initialState"     yaml:"initialState"`
	EndState         string             `json:"endState"         yaml:"endState"`
	ActionStateOrder ActionOrder        `json:"actionStateOrder" yaml:"actionStateOrder"`
	States           []string           `json:"states"           yaml:"states"`
	Transitions      []TransitionConfig `json:"transitions"      yaml:"transitions"`
}

// TransitionConfig moves from one state to another on any of the listed
// inputs, or on every input without a more specific rule when Any is set.
type TransitionConfig struct {
	From string   `json:"from" yaml:"from"`
	To   string   `json:"to"   yaml:"to"`
	On   []string `json:"on"   yaml:"on"`
	Any  bool     `json:"any"  yaml:"any"`
}

// LoadConfig loads a transition table by path or name.
// Supports two modes:
//   - Path mode: a value containing '/', '\', or ending in '.yaml'/'.yml' is read from the filesystem
//     Example: LoadConfig("testdata/tokenizer.yaml")
//   - Name mode: a bare name is loaded through the registered ConfigLoader
//     Example: LoadConfig("tokenizer")
func LoadConfig(pathOrName string) (*Config, error) {
	lower := strings.ToLower(pathOrName)
	isPath := strings.Contains(pathOrName, "/") ||
		strings.Contains(pathOrName, `\`) ||
		strings.HasSuffix(lower, ".yaml") ||
		strings.HasSuffix(lower, ".yml")

	if isPath {
		data, err := os.ReadFile(pathOrName) //nolint:gosec // Intentional path-based loading
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", pathOrName, err)
		}

		return LoadConfigFromBytes(data)
	}

	if defaultConfigLoader == nil {
		return nil, ErrNoConfigLoader
	}

	data, err := defaultConfigLoader.LoadByName(pathOrName)
	if err != nil {
		available := defaultConfigLoader.ListAvailable()

		return nil, fmt.Errorf("failed to load config %q (available: %v): %w", pathOrName, available, err)
	}

	return LoadConfigFromBytes(data)
}

// LoadConfigFromBytes parses and validates a YAML transition table.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	var config Config

	err := yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigFromFS loads a configuration from a filesystem such as embed.FS.
func LoadConfigFromFS(fsys fs.FS, path string) (*Config, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from FS: %w", err)
	}

	return LoadConfigFromBytes(data)
}

// Validate checks the table structurally. It does not check that the end
// state is reachable or that runs terminate.
func (c *Config) Validate() error {
	if c.Name == "" {
		return ErrConfigNameRequired
	}

	if c.InitialState == "" {
		return ErrInitialStateRequired
	}

	if c.EndState == "" {
		return ErrEndStateRequired
	}

	if c.ActionStateOrder != "" && !c.ActionStateOrder.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidActionOrder, c.ActionStateOrder)
	}

	declared := make(map[string]bool, len(c.States))

	for _, state := range c.States {
		if declared[state] {
			return fmt.Errorf("%w: %s", ErrDuplicateStateName, state)
		}

		declared[state] = true
	}

	checkDeclared := func(state string) error {
		if len(declared) > 0 && !declared[state] {
			return fmt.Errorf("%w: %s", ErrUnknownState, state)
		}

		return nil
	}

	if err := checkDeclared(c.InitialState); err != nil {
		return fmt.Errorf("initial state: %w", err)
	}

	if err := checkDeclared(c.EndState); err != nil {
		return fmt.Errorf("end state: %w", err)
	}

	seen := make(map[string]map[string]bool)
	wildcard := make(map[string]bool)

	for i, transition := range c.Transitions {
		if transition.From == "" {
			return fmt.Errorf("transition %d: %w", i, ErrTransitionFromRequired)
		}

		if transition.To == "" {
			return fmt.Errorf("transition %d: %w", i, ErrTransitionToRequired)
		}

		if len(transition.On) == 0 && !transition.Any {
			return fmt.Errorf("transition %d: %w", i, ErrTransitionInputRequired)
		}

		if err := checkDeclared(transition.From); err != nil {
			return fmt.Errorf("transition %d from: %w", i, err)
		}

		if err := checkDeclared(transition.To); err != nil {
			return fmt.Errorf("transition %d to: %w", i, err)
		}

		if transition.Any {
			if wildcard[transition.From] {
				return fmt.Errorf("transition %d: %w: %s on any input", i, ErrDuplicateTransition, transition.From)
			}

			wildcard[transition.From] = true
		}

		if seen[transition.From] == nil {
			seen[transition.From] = make(map[string]bool)
		}

		for _, input := range transition.On {
			if seen[transition.From][input] {
				return fmt.Errorf("transition %d: %w: %s on %q", i, ErrDuplicateTransition, transition.From, input)
			}

			seen[transition.From][input] = true
		}
	}

	return nil
}

// NextStateFunc compiles the table into a transition function. Exact input
// matches win over the state's 'any' rule; with neither the transition fails
// with ErrTransitionNotFound.
func (c *Config) NextStateFunc() NextStateFunc[string, string] {
	exact := make(map[string]map[string]string)
	fallback := make(map[string]string)

	for _, transition := range c.Transitions {
		if transition.Any {
			fallback[transition.From] = transition.To
		}

		if exact[transition.From] == nil {
			exact[transition.From] = make(map[string]string)
		}

		for _, input := range transition.On {
			exact[transition.From][input] = transition.To
		}
	}

	return func(state string, input string) (string, error) {
		if to, ok := exact[state][input]; ok {
			return to, nil
		}

		if to, ok := fallback[state]; ok {
			return to, nil
		}

		return state, fmt.Errorf("%w: from %q on %q", ErrTransitionNotFound, state, input)
	}
}

// FromConfig builds a Setup from a transition table. The options fill in the
// parts a table cannot express, such as the action and the initial output.
func FromConfig[O any](config *Config, opts ...Option[string, string, O]) Setup[string, string, O] {
	setup := Setup[string, string, O]{
		Name:               config.Name,
		InitialState:       config.InitialState,
		EndState:           config.EndState,
		CalculateNextState: config.NextStateFunc(),
		ActionStateOrder:   config.ActionStateOrder,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&setup)
		}
	}

	return setup
}
