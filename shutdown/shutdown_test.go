package shutdown

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	mut.Lock()
	defer mut.Unlock()

	hooks = nil
	channel = nil
}

//nolint:paralleltest // Tests share the global hook list.
func TestBeforeShutdownRunsInReverse(t *testing.T) {
	reset()

	var order []int

	BeforeShutdown(func(context.Context) { order = append(order, 1) })
	BeforeShutdown(func(context.Context) { order = append(order, 2) })

	mut.Lock()
	assert.Len(t, hooks, 2)
	mut.Unlock()

	cleanup(t.Context())

	assert.Equal(t, []int{2, 1}, order)

	mut.Lock()
	assert.Nil(t, hooks)
	mut.Unlock()

	cleanup(t.Context())
	assert.Equal(t, []int{2, 1}, order, "hooks run once")
}

//nolint:paralleltest
func TestShutdownCancelsAfterHooks(t *testing.T) {
	reset()

	ctx, stop := SetupHandler(context.Background())
	defer stop()

	select {
	case <-ctx.Done():
		t.Fatal("context should not be canceled initially")
	default:
	}

	var aliveInHook atomic.Bool

	BeforeShutdown(func(hookCtx context.Context) {
		aliveInHook.Store(hookCtx.Err() == nil)
	})

	Shutdown()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled after shutdown")
	}

	assert.True(t, aliveInHook.Load())
}

//nolint:paralleltest
func TestStopRunsPendingHooks(t *testing.T) {
	reset()

	ctx, stop := SetupHandler(context.Background())

	var called atomic.Int32

	BeforeShutdown(func(context.Context) { called.Add(1) })

	stop()
	stop()

	require.Error(t, ctx.Err())
	assert.Equal(t, int32(1), called.Load())

	mut.Lock()
	assert.Nil(t, channel)
	mut.Unlock()

	// No handler installed any more.
	Shutdown()
}

//nolint:paralleltest
func TestShutdownWithoutHandler(t *testing.T) {
	reset()

	assert.NotPanics(t, Shutdown)
}
