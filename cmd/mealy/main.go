// Command mealy runs declarative Mealy machine transition tables.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/amp-labs/mealy/cli"
	"github.com/amp-labs/mealy/shutdown"
)

func main() {
	ctx, stop := shutdown.SetupHandler(context.Background())

	err := cli.NewRootCommand().ExecuteContext(ctx)

	stop()

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
	}

	os.Exit(cli.GetExitCode(err))
}
