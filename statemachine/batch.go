package statemachine

import (
	"context"
	"fmt"

	"github.com/alitto/pond/v2"
)

// RunBatch runs the machine once per input sequence on a bounded worker pool
// and returns the results in the order of batches. Each run is independent
// and single-threaded; only separate runs execute concurrently. A
// concurrency below 1 runs every batch at once.
func RunBatch[S comparable, I any, O any](
	ctx context.Context,
	machine *Machine[S, I, O],
	batches [][]I,
	concurrency int,
	overrides ...Option[S, I, O],
) ([]Result[S, O], error) {
	if len(batches) == 0 {
		return []Result[S, O]{}, nil
	}

	if concurrency < 1 || concurrency > len(batches) {
		concurrency = len(batches)
	}

	pool := pond.NewResultPool[Result[S, O]](concurrency)
	defer pool.StopAndWait()

	group := pool.NewGroup()

	for _, inputs := range batches {
		group.Submit(func() Result[S, O] {
			return machine.RunSlice(ctx, inputs, overrides...)
		})
	}

	results, err := group.Wait()
	if err != nil {
		return nil, fmt.Errorf("batch run failed: %w", err)
	}

	return results, nil
}
