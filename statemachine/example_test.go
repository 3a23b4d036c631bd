package statemachine_test

import (
	"context"
	"fmt"

	"github.com/amp-labs/mealy/logger"
	"github.com/amp-labs/mealy/statemachine"
)

func Example() {
	machine := statemachine.New(statemachine.Setup[string, string, []string]{
		InitialState:  "Start",
		EndState:      "End",
		InitialOutput: []string{},
		CalculateNextState: func(_ string, input string) (string, error) {
			if input == "" {
				return "End", nil
			}

			return "DoStuff", nil
		},
		PerformStateAction: func(_ string, input string, output []string) ([]string, error) {
			if input == "" {
				return output, nil
			}

			return append(output, input), nil
		},
		ActionStateOrder: statemachine.ActionOrderAfter,
	})

	ctx := logger.WithMuted(context.Background(), true)

	result := machine.RunSlice(ctx, []string{"a", "b", ""})
	fmt.Println(result.Output, result.FinalState, result.Aborted)

	result = machine.RunSlice(ctx, []string{"a"})
	fmt.Println(statemachine.ErrorKind(result.Err()), result.FinalState, result.Output)

	// Output:
	// [a b] End false
	// EndOfInputError DoStuff [a]
}
