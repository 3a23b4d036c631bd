package cli

import (
	"fmt"
	"slices"

	"github.com/amp-labs/mealy/logger"
	"github.com/amp-labs/mealy/statemachine"
	"github.com/spf13/cobra"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	MachineOptions

	Concurrency int
}

// BatchReport is the printable result of a batch command.
type BatchReport struct {
	Machine string      `json:"machine" yaml:"machine"`
	Runs    []BatchItem `json:"runs"    yaml:"runs"`
}

// BatchItem pairs an inputs file with the result of running it.
type BatchItem struct {
	Inputs string    `json:"inputs" yaml:"inputs"`
	Result RunReport `json:"result" yaml:"result"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <inputs-file>...",
		Short: "Run a transition table once per inputs file",
		Long: `Run a transition table once per inputs file, several files at a time.

Each file holds one input per line. Results are printed in argument order.
The command exits with status 1 when any run aborts.

Example:
  mealy batch --config tokenizer.yaml --concurrency 4 inputs/*.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts, args)
		},
	}

	opts.bind(cmd)
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "maximum concurrent runs (0 runs every file at once)")

	return cmd
}

func runBatch(cmd *cobra.Command, opts *BatchOptions, paths []string) error {
	table, machine, err := buildMachine(&opts.MachineOptions)
	if err != nil {
		return err
	}

	batches := make([][]string, 0, len(paths))

	for _, path := range paths {
		inputs, err := readAll(cmd, path)
		if err != nil {
			return err
		}

		batches = append(batches, inputs)
	}

	ctx := logger.With(cmd.Context(), "command", "batch")

	results, err := statemachine.RunBatch(ctx, machine, batches, opts.Concurrency)
	if err != nil {
		return WrapExitError(ExitCommandError, "batch failed", err)
	}

	report := BatchReport{Machine: table.Name, Runs: make([]BatchItem, 0, len(results))}
	aborted := 0

	for i, result := range results {
		if result.Aborted {
			aborted++
		}

		report.Runs = append(report.Runs, BatchItem{
			Inputs: paths[i],
			Result: NewRunReport(table.Name, result, opts.Logs),
		})
	}

	if err := writeReport(cmd.OutOrStdout(), opts.Format, report); err != nil {
		return WrapExitError(ExitCommandError, "failed to write result", err)
	}

	if aborted > 0 {
		return NewExitError(ExitAborted, fmt.Sprintf("%d of %d runs aborted", aborted, len(results)))
	}

	return nil
}

func readAll(cmd *cobra.Command, path string) ([]string, error) {
	file, err := openInputs(cmd, path)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = file.Close()
	}()

	var readErr error

	inputs := slices.Collect(lines(file, func(err error) { readErr = err }))
	if readErr != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read inputs file "+path, readErr)
	}

	return inputs, nil
}
