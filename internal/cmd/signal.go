package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/hephbuild/rwsched/internal/hcore/hlog"
)

var errInterrupted = errors.New("interrupted")

// newSignalNotifyContext cancels ctx with errInterrupted on the first SIGINT
// or SIGTERM, so that guards waiting on a lock give up and held leases are
// released. A second signal calls exit.
func newSignalNotifyContext(ctx context.Context, exit func(code int)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(ctx)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	go func() {
		n := 0
		for sig := range ch {
			n++
			if n > 1 {
				hlog.From(ctx).Warn("second signal, exiting without waiting", "signal", sig.String())
				exit(130)

				continue
			}

			hlog.From(ctx).Info("interrupted, releasing locks", "signal", sig.String())
			cancel(errInterrupted)
		}
	}()

	return ctx, func() {
		cancel(nil)
		signal.Stop(ch)
	}
}
