// Package visualizer renders transition tables as Mermaid state diagrams.
//
//nolint:varnamelen // short names idiomatic
package visualizer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/amp-labs/mealy/statemachine"
)

// Visualizer errors.
var (
	ErrConfigNil        = errors.New("config cannot be nil")
	ErrNoInitialState   = errors.New("config must have an initial state")
	ErrInvalidDirection = errors.New("direction must be one of TD, TB, BT, LR or RL")
)

// anyInputLabel labels a transition taken on every input without a more specific rule.
const anyInputLabel = "*"

// GenerateMermaid converts a Config to a Mermaid state diagram.
func GenerateMermaid(config *statemachine.Config) (string, error) {
	return GenerateMermaidWithOptions(config, DefaultOptions())
}

// GenerateMermaidFromFile loads a config from a file and generates a Mermaid diagram.
func GenerateMermaidFromFile(path string) (string, error) {
	config, err := statemachine.LoadConfig(path)
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	return GenerateMermaid(config)
}

// GenerateMermaidWithOptions generates a Mermaid diagram with custom options.
func GenerateMermaidWithOptions(config *statemachine.Config, opts Options) (string, error) {
	if config == nil {
		return "", ErrConfigNil
	}

	if config.InitialState == "" {
		return "", ErrNoInitialState
	}

	direction := strings.ToUpper(opts.Direction)
	switch direction {
	case "":
		direction = "TD"
	case "TD", "TB", "BT", "LR", "RL":
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, opts.Direction)
	}

	var sb strings.Builder

	// Header
	sb.WriteString("```mermaid\n")
	sb.WriteString(fmt.Sprintf("stateDiagram-%s\n", direction))

	// Initial state marker
	sb.WriteString(fmt.Sprintf("    [*] --> %s\n", config.InitialState))

	highlightMap := make(map[string]bool)
	for _, state := range opts.HighlightPath {
		highlightMap[state] = true
	}

	// Build transition map: from state -> list of transitions
	transitionMap := make(map[string][]statemachine.TransitionConfig)
	for _, transition := range config.Transitions {
		transitionMap[transition.From] = append(transitionMap[transition.From], transition)
	}

	for _, state := range orderedStates(config) {
		isEnd := state == config.EndState

		switch {
		case highlightMap[state]:
			sb.WriteString(fmt.Sprintf("    class %s highlighted\n", state))
		case isEnd:
			sb.WriteString(fmt.Sprintf("    class %s endState\n", state))
		}

		for _, transition := range transitionMap[state] {
			label := ""
			if opts.ShowInputs {
				label = ": " + inputLabel(transition)
			}

			sb.WriteString(fmt.Sprintf("    %s --> %s%s\n", state, transition.To, label))
		}

		if isEnd {
			sb.WriteString(fmt.Sprintf("    %s --> [*]\n", state))
		}
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef endState fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px\n")
	sb.WriteString("    classDef highlighted fill:#fff9c4,stroke:#f57f17,stroke-width:3px\n")

	sb.WriteString("```\n")

	return sb.String(), nil
}

// orderedStates lists the declared states, or every state the table
// mentions in order of first appearance when none are declared. The end
// state always comes last in the derived order.
func orderedStates(config *statemachine.Config) []string {
	if len(config.States) > 0 {
		return config.States
	}

	seen := make(map[string]bool)

	var states []string

	add := func(state string) {
		if state != "" && state != config.EndState && !seen[state] {
			seen[state] = true
			states = append(states, state)
		}
	}

	add(config.InitialState)

	for _, transition := range config.Transitions {
		add(transition.From)
		add(transition.To)
	}

	if config.EndState != "" {
		states = append(states, config.EndState)
	}

	return states
}

func inputLabel(transition statemachine.TransitionConfig) string {
	labels := make([]string, 0, len(transition.On)+1)

	for _, input := range transition.On {
		if input == "" || strings.ContainsAny(input, " ,:;\"") {
			labels = append(labels, strconv.Quote(input))
		} else {
			labels = append(labels, input)
		}
	}

	if transition.Any {
		labels = append(labels, anyInputLabel)
	}

	return strings.Join(labels, ", ")
}
