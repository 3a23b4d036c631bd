package cli

import (
	"fmt"

	"github.com/amp-labs/mealy/statemachine"
	"github.com/amp-labs/mealy/statemachine/visualizer"
	"github.com/spf13/cobra"
)

// DiagramOptions holds flags for the diagram command.
type DiagramOptions struct {
	*RootOptions

	Config    string
	Direction string
	NoInputs  bool
	Highlight []string
}

// NewDiagramCommand creates the diagram command.
func NewDiagramCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiagramOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Print a transition table as a Mermaid state diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := statemachine.LoadConfig(opts.Config)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load transition table", err)
			}

			vizOpts := visualizer.DefaultOptions().
				WithDirection(opts.Direction).
				WithShowInputs(!opts.NoInputs).
				WithHighlightPath(opts.Highlight)

			diagram, err := visualizer.GenerateMermaidWithOptions(table, vizOpts)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to generate diagram", err)
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), diagram)

			return err
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "transition table (YAML file path or registered name)")
	cmd.Flags().StringVar(&opts.Direction, "direction", "TD", "diagram direction (TD|LR|BT|RL)")
	cmd.Flags().BoolVar(&opts.NoInputs, "no-inputs", false, "omit transition labels")
	cmd.Flags().StringSliceVar(&opts.Highlight, "highlight", nil, "states to highlight")

	_ = cmd.MarkFlagRequired("config")

	return cmd
}
