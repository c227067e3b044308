package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const DefaultTimeout = 10 * time.Second

func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(ch)
		select {
		case <-ctx.Done():
			return
		case <-ch:
			cancel()
		}
	}()

	return ctx, cancel
}

// Graceful runs stop and waits up to timeout for it to return. On timeout it
// calls force, which must make stop return, and reports false.
func Graceful(timeout time.Duration, stop, force func()) bool {
	stopped := make(chan struct{})
	go func() {
		stop()
		close(stopped)
	}()

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-stopped:
		return true
	case <-t.C:
		force()
		<-stopped
		return false
	}
}
