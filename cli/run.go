package cli

import (
	"errors"
	"iter"
	"slices"

	"github.com/amp-labs/mealy/logger"
	"github.com/spf13/cobra"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	MachineOptions

	InputsFile string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [inputs...]",
		Short: "Run a transition table over a sequence of inputs",
		Long: `Run a transition table over a sequence of inputs and print the result.

Inputs come from the positional arguments or, when there are none, from
--inputs-file with one input per line ("-" reads stdin). Empty lines are
inputs too. The command exits with status 1 when the run aborts.

Example:
  mealy run --config tokenizer.yaml a b ""
  printf 'a\nb\n\n' | mealy run --config tokenizer.yaml --inputs-file - --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMachine(cmd, opts, args)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVarP(&opts.InputsFile, "inputs-file", "f", "", "read inputs from a file, one per line (- for stdin)")

	return cmd
}

func runMachine(cmd *cobra.Command, opts *RunOptions, args []string) error {
	table, machine, err := buildMachine(&opts.MachineOptions)
	if err != nil {
		return err
	}

	var (
		inputs  iter.Seq[string]
		readErr error
	)

	switch {
	case len(args) > 0:
		inputs = slices.Values(args)
	case opts.InputsFile != "":
		file, err := openInputs(cmd, opts.InputsFile)
		if err != nil {
			return err
		}

		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				logger.Get(cmd.Context()).Warn("Failed to close inputs file", "error", closeErr)
			}
		}()

		inputs = lines(file, func(err error) { readErr = err })
	default:
		return NewExitError(ExitCommandError, "no inputs: pass them as arguments or use --inputs-file")
	}

	ctx := logger.With(cmd.Context(), "command", "run")
	result := machine.Run(ctx, inputs)

	if readErr != nil {
		return WrapExitError(ExitCommandError, "failed to read inputs", errors.Join(readErr, result.Err()))
	}

	return finish(cmd, opts.Format, NewRunReport(table.Name, result, opts.Logs))
}
