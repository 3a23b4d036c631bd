package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/amp-labs/mealy/statemachine"
	"gopkg.in/yaml.v3"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitAborted      = 1 // The machine run aborted
	ExitCommandError = 2 // Command error (bad flags, unreadable table, etc.)
)

// Output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatYAML, FormatJSON}

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitCommandError if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitCommandError
}

// ErrorReport is one recorded run error as printed by the CLI.
type ErrorReport struct {
	Kind    string `json:"kind"    yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// RunReport is the printable form of a Result over string states.
type RunReport struct {
	RunID          string        `json:"runId"          yaml:"runId"`
	Machine        string        `json:"machine"        yaml:"machine"`
	FinalState     string        `json:"finalState"     yaml:"finalState"`
	Output         []string      `json:"output"         yaml:"output"`
	Aborted        bool          `json:"aborted"        yaml:"aborted"`
	ExecutionCount int           `json:"executionCount" yaml:"executionCount"`
	Errors         []ErrorReport `json:"errors"         yaml:"errors"`
	Logs           []string      `json:"logs,omitempty" yaml:"logs,omitempty"`
}

// NewRunReport converts a run result into a report.
func NewRunReport(machine string, result statemachine.Result[string, []string], withLogs bool) RunReport {
	report := RunReport{
		RunID:          result.RunID.String(),
		Machine:        machine,
		FinalState:     result.FinalState,
		Output:         result.Output,
		Aborted:        result.Aborted,
		ExecutionCount: result.ExecutionCount,
		Errors:         make([]ErrorReport, 0, len(result.Errors)),
	}

	if report.Output == nil {
		report.Output = []string{}
	}

	for _, err := range result.Errors {
		report.Errors = append(report.Errors, ErrorReport{
			Kind:    statemachine.ErrorKind(err),
			Message: err.Error(),
		})
	}

	if withLogs {
		report.Logs = result.Logs
	}

	return report
}

// writeReport encodes value in the given format.
func writeReport(w io.Writer, format string, value any) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2) //nolint:mnd

		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		if err := encoder.Close(); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
	default:
		return fmt.Errorf("invalid format %q: must be one of %v", format, ValidFormats) //nolint:err113
	}

	return nil
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
