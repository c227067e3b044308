package shutdown

import (
	"context"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraceful_StopsInTime(t *testing.T) {
	var forced atomic.Bool
	ok := Graceful(time.Second, func() {}, func() { forced.Store(true) })
	assert.True(t, ok)
	assert.False(t, forced.Load())
}

func TestGraceful_ForcesOnTimeout(t *testing.T) {
	release := make(chan struct{})
	ok := Graceful(20*time.Millisecond, func() { <-release }, func() { close(release) })
	assert.False(t, ok)
}

func TestWithSignals_CancelOnSignal(t *testing.T) {
	ctx, cancel := WithSignals(context.Background())
	defer cancel()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled by SIGTERM")
	}
}

func TestWithSignals_ParentCancel(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := WithSignals(parent)
	defer cancel()

	cancelParent()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
