package cmd

import (
	"context"
	"errors"

	"github.com/hephbuild/rwsched/lib/hloop"
	"github.com/hephbuild/rwsched/lib/rwlock"
)

// withRegistry runs f against a registry whose loop lives for the duration
// of the call.
func withRegistry(ctx context.Context, f func(ctx context.Context, reg *rwlock.Registry) error) error {
	loop := hloop.New()

	errCh := make(chan error, 1)
	go func() {
		errCh <- loop.Run(context.WithoutCancel(ctx))
	}()

	err := f(ctx, rwlock.NewRegistry(ctx, loop))

	loop.Close()

	return errors.Join(err, <-errCh)
}
