package cli

import (
	"github.com/amp-labs/mealy/build"
	"github.com/spf13/cobra"
)

// VersionOptions holds flags for the version command.
type VersionOptions struct {
	*RootOptions

	Dependencies bool
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VersionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := *build.Current()
			if !opts.Dependencies {
				info.Dependencies = nil
			}

			if err := writeReport(cmd.OutOrStdout(), opts.Format, info); err != nil {
				return WrapExitError(ExitCommandError, "failed to write build info", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Dependencies, "deps", false, "include module dependencies")

	return cmd
}
