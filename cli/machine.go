package cli

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/amp-labs/mealy/logger"
	"github.com/amp-labs/mealy/statemachine"
	"github.com/spf13/cobra"
)

// Action names accepted by --action.
const (
	ActionCollect = "collect"
	ActionTrace   = "trace"
	ActionNone    = "none"
)

// MachineOptions holds the flags shared by every command that runs a table.
type MachineOptions struct {
	Config         string
	Order          string
	Action         string
	TolerateErrors bool
	Logs           bool
}

func (o *MachineOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Config, "config", "c", "", "transition table (YAML file path or registered name)")
	cmd.Flags().StringVar(&o.Order, "order", "", "action state order override (Before|After|Both)")
	cmd.Flags().StringVar(&o.Action, "action", ActionCollect, "output action (collect|trace|none)")
	cmd.Flags().BoolVar(&o.TolerateErrors, "tolerate-errors", false, "continue past action and transition failures")
	cmd.Flags().BoolVar(&o.Logs, "logs", false, "include the run logs in the report")

	_ = cmd.MarkFlagRequired("config")
}

// actionFor maps an --action value to an action function.
func actionFor(name string) (statemachine.ActionFunc[string, string, []string], error) {
	switch name {
	case ActionCollect:
		return func(_ string, input string, output []string) ([]string, error) {
			if input == "" {
				return output, nil
			}

			return append(output, input), nil
		}, nil
	case ActionTrace:
		return statemachine.PureAction(func(state string, input string, output []string) []string {
			return append(output, fmt.Sprintf("%s<-%s", state, input))
		}), nil
	case ActionNone:
		return statemachine.IdentityAction[string, string, []string](), nil
	default:
		return nil, fmt.Errorf("unknown action %q: must be one of %s, %s or %s", //nolint:err113
			name, ActionCollect, ActionTrace, ActionNone)
	}
}

// buildMachine loads the table and assembles a machine from the flags.
func buildMachine(opts *MachineOptions) (*statemachine.Config, *statemachine.Machine[string, string, []string], error) {
	table, err := statemachine.LoadConfig(opts.Config)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load transition table", err)
	}

	action, err := actionFor(opts.Action)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "invalid flags", err)
	}

	setupOpts := []statemachine.Option[string, string, []string]{
		statemachine.WithInitialOutput[string, string, []string]([]string{}),
		statemachine.WithPerformStateAction(action),
		statemachine.WithIsolatedInitialOutput[string, string, []string](true),
	}

	if opts.Order != "" {
		order, err := statemachine.ParseActionOrder(opts.Order)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "invalid flags", err)
		}

		setupOpts = append(setupOpts, statemachine.WithActionStateOrder[string, string, []string](order))
	}

	if opts.TolerateErrors {
		setupOpts = append(setupOpts,
			statemachine.WithHandleError(statemachine.ContinueOnError[string, string, []string]))
	}

	return table, statemachine.New(statemachine.FromConfig(table, setupOpts...)), nil
}

// lines lazily yields the lines of r, empty lines included.
func lines(r io.Reader, onErr func(error)) iter.Seq[string] {
	return func(yield func(string) bool) {
		scanner := bufio.NewScanner(r)

		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}

		if err := scanner.Err(); err != nil && onErr != nil {
			onErr(err)
		}
	}
}

// openInputs opens an inputs file, "-" meaning the command's stdin.
func openInputs(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}

	file, err := os.Open(path) //nolint:gosec // Intentional path-based loading
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open inputs file", err)
	}

	return file, nil
}

// finish prints the report and turns an aborted run into an exit error.
func finish(cmd *cobra.Command, format string, report RunReport) error {
	if err := writeReport(cmd.OutOrStdout(), format, report); err != nil {
		return WrapExitError(ExitCommandError, "failed to write result", err)
	}

	if report.Aborted {
		logger.Get(cmd.Context()).Debug("Run aborted", "machine", report.Machine, "errors", len(report.Errors))

		return NewExitError(ExitAborted, "run aborted")
	}

	return nil
}
