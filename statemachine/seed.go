package statemachine

import (
	"context"

	"github.com/amp-labs/mealy/logger"
	"github.com/tiendc/go-deepcopy"
)

// seedOutput returns the initial output for a run. With isolation enabled the
// seed is deep-copied; if the copy fails the original seed is shared and a
// warning is logged.
func seedOutput[O any](ctx context.Context, machine string, seed O, isolate bool) O {
	if !isolate {
		return seed
	}

	var clone O

	err := deepcopy.Copy(&clone, &seed)
	if err != nil {
		logger.Get(ctx).WarnContext(ctx, "Failed to isolate initial output, sharing it instead",
			"machine", sanitizeMachine(machine),
			"error", err,
		)

		return seed
	}

	return clone
}
