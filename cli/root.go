// Package cli implements the mealy command line: running transition tables
// over inputs, drawing them, and driving them interactively.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amp-labs/mealy/config"
	"github.com/amp-labs/mealy/logger"
	"github.com/amp-labs/mealy/shutdown"
	"github.com/amp-labs/mealy/stage"
	"github.com/amp-labs/mealy/telemetry"
	"github.com/spf13/cobra"
)

const appName = "mealy"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	EnvFiles []string
	Format   string
}

// NewRootCommand creates the root command for the mealy CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "mealy - run finite state machines from transition tables",
		Long: `Run Mealy-style finite state machines described by YAML transition tables.

Logging is configured from LOG_JSON, LOG_LEVEL and LOG_OUTPUT, tracing from
OTEL_ENABLED and OTEL_EXPORTER_OTLP_TRACES_ENDPOINT.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			return setup(cmd, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return telemetry.Shutdown(cmd.Context())
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", nil, "env files to load before reading configuration")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatYAML, "output format (yaml|json)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))
	cmd.AddCommand(NewDiagramCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// setup loads env files and configures logging and tracing.
func setup(cmd *cobra.Command, opts *RootOptions) error {
	if err := config.LoadEnv(opts.EnvFiles...); err != nil {
		return WrapExitError(ExitCommandError, "failed to load env files", err)
	}

	logOpts := []logger.Option{logger.WithOutput(cmd.ErrOrStderr())}
	if opts.Verbose {
		logOpts = append(logOpts, logger.WithMinLevel(slog.LevelDebug))
	}

	if _, err := logger.ConfigureLogging(appName, logOpts...); err != nil {
		return WrapExitError(ExitCommandError, "failed to configure logging", err)
	}

	ctx := cmd.Context()

	otelConfig, err := telemetry.LoadConfigFromEnv(ctx, stage.Current().String())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load telemetry config", err)
	}

	if err := telemetry.Initialize(ctx, otelConfig); err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize telemetry", err)
	}

	if telemetry.Enabled() {
		// Flush spans when a signal cuts the command short.
		shutdown.BeforeShutdown(func(ctx context.Context) {
			if err := telemetry.Shutdown(ctx); err != nil {
				logger.Get(ctx).Error("Failed to flush traces", "error", err)
			}
		})
	}

	return nil
}
