package cli

import (
	"iter"

	"github.com/amp-labs/mealy/logger"
	"github.com/spf13/cobra"
)

// ReplOptions holds flags for the repl command.
type ReplOptions struct {
	*RootOptions
	MachineOptions

	// Again asks to start another run after each one finishes.
	Again bool

	// Inputs and Confirm replace the interactive prompt (for testing).
	// If nil, a Prompter over the command's stdin is used.
	Inputs  func(label string, onErr func(error)) iter.Seq[string]
	Confirm func(label string) (bool, error)
}

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Feed a transition table one input at a time",
		Long: `Prompt for inputs one at a time and feed each to the machine as soon as it
is entered. The machine stops prompting once it reaches its end state;
Ctrl-D or Ctrl-C ends the inputs early. The result is printed at the end.
With --again, each result is followed by a "Run again" question.

Without a terminal, inputs are read from stdin one line at a time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd, opts)
		},
	}

	opts.bind(cmd)
	cmd.Flags().BoolVar(&opts.Again, "again", false, "ask to run again after each run")

	return cmd
}

func runRepl(cmd *cobra.Command, opts *ReplOptions) error {
	table, machine, err := buildMachine(&opts.MachineOptions)
	if err != nil {
		return err
	}

	prompter := &Prompter{Stdin: cmd.InOrStdin(), Stdout: cmd.ErrOrStderr()}

	prompt := opts.Inputs
	if prompt == nil {
		prompt = prompter.Inputs
	}

	confirm := opts.Confirm
	if confirm == nil {
		confirm = prompter.Confirm
	}

	ctx := logger.With(cmd.Context(), "command", "repl")

	for round := 1; ; round++ {
		var promptErr error

		result := machine.Run(logger.With(ctx, "round", round), prompt("input", func(err error) { promptErr = err }))

		if promptErr != nil {
			return WrapExitError(ExitCommandError, "prompt failed", promptErr)
		}

		err := finish(cmd, opts.Format, NewRunReport(table.Name, result, opts.Logs))
		if !opts.Again || GetExitCode(err) == ExitCommandError {
			return err
		}

		again, confirmErr := confirm("Run again")
		if confirmErr != nil {
			return WrapExitError(ExitCommandError, "prompt failed", confirmErr)
		}

		if !again {
			return err
		}
	}
}
