// Package shutdown turns SIGINT and SIGTERM into context cancellation, running
// registered cleanup hooks before the context is canceled.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/amp-labs/mealy/logger"
)

var (
	mut     sync.Mutex                   //nolint:gochecknoglobals
	hooks   []func(ctx context.Context) //nolint:gochecknoglobals
	channel chan os.Signal              //nolint:gochecknoglobals
)

// BeforeShutdown registers a function to be called before the context
// returned by SetupHandler is canceled. The context passed to the hook is
// still alive, so it can be used to flush resources. Hooks run in reverse
// order of registration.
func BeforeShutdown(h func(ctx context.Context)) {
	mut.Lock()
	defer mut.Unlock()

	hooks = append(hooks, h)
}

// Shutdown triggers the shutdown process as if a SIGINT had been received.
// It does nothing when no handler is installed or a shutdown is already
// pending.
func Shutdown() {
	mut.Lock()
	defer mut.Unlock()

	if channel == nil {
		return
	}

	select {
	case channel <- os.Interrupt:
	default:
	}
}

// SetupHandler installs a handler for SIGINT and SIGTERM and returns a
// context that is canceled once a signal arrives and the hooks have run.
//
// The returned stop function uninstalls the handler, runs any hooks that are
// still pending and cancels the context. It is safe to call more than once.
func SetupHandler(parent context.Context) (context.Context, func()) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	mut.Lock()
	channel = signals
	mut.Unlock()

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	go func() {
		select {
		case sig := <-signals:
			logger.Get(ctx).Warn("Received " + sig.String() + ", shutting down...")

			cleanup(ctx)
			cancel()
		case <-done:
		}
	}()

	var once sync.Once

	stop := func() {
		once.Do(func() {
			signal.Stop(signals)

			mut.Lock()
			if channel == signals {
				channel = nil
			}
			mut.Unlock()

			close(done)
			cleanup(ctx)
			cancel()
		})
	}

	return ctx, stop
}

func cleanup(ctx context.Context) {
	mut.Lock()
	pending := hooks
	hooks = nil
	mut.Unlock()

	for i := len(pending) - 1; i >= 0; i-- {
		pending[i](ctx)
	}
}
