package rwlock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Guard holds a lease on behalf of a goroutine that does not run on the loop.
// Release is safe to call from any goroutine, any number of times.
type Guard struct {
	loop  Loop
	lease *Lease

	once sync.Once
	err  error
}

func newGuard(loop Loop, lease *Lease) *Guard {
	return &Guard{loop: loop, lease: lease}
}

func (g *Guard) Kind() Kind {
	return g.lease.kind
}

func (g *Guard) Release() error {
	g.once.Do(func() {
		g.err = g.loop.Post(g.lease.Release)
	})

	return g.err
}

// RLock blocks until a read lease is granted or ctx is done. It must not be
// called from the loop.
func (s *State) RLock(ctx context.Context) (*Guard, error) {
	return s.acquireGuard(ctx, KindRead)
}

// Lock blocks until a write lease is granted or ctx is done. It must not be
// called from the loop.
func (s *State) Lock(ctx context.Context) (*Guard, error) {
	return s.acquireGuard(ctx, KindWrite)
}

func (s *State) TryRLock(ctx context.Context) (*Guard, bool, error) {
	return s.tryGuard(ctx, KindRead)
}

func (s *State) TryLock(ctx context.Context) (*Guard, bool, error) {
	return s.tryGuard(ctx, KindWrite)
}

func (s *State) DoRead(ctx context.Context, f func(ctx context.Context) error) error {
	return s.do(ctx, KindRead, f)
}

func (s *State) DoWrite(ctx context.Context, f func(ctx context.Context) error) error {
	return s.do(ctx, KindWrite, f)
}

func (s *State) do(ctx context.Context, kind Kind, f func(ctx context.Context) error) (err error) {
	g, err := s.acquireGuard(ctx, kind)
	if err != nil {
		return err
	}

	// released strictly after f has returned, also when it panics
	defer func() {
		if rerr := g.Release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()

	return f(ctx)
}

func (s *State) startSpan(ctx context.Context, name string, kind Kind) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("rwlock.lock", s.name),
		attribute.String("rwlock.kind", kind.String()),
	))
}

func (s *State) acquireGuard(ctx context.Context, kind Kind) (*Guard, error) {
	ctx, span := s.startSpan(ctx, "rwlock.Acquire", kind)
	defer span.End()

	grantCh := make(chan *Lease, 1)
	reqCh := make(chan *Request, 1)

	err := s.loop.Post(func() {
		reqCh <- s.acquire(kind, func(l *Lease) {
			grantCh <- l
		}, nil)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("acquire %v lock %v: %w", kind, s.name, err)
	}

	select {
	case l := <-grantCh:
		return newGuard(s.loop, l), nil
	case <-ctx.Done():
	}

	// The acquisition task ran before this one, reqCh is filled by then.
	// Either the cancel wins, or the grant did and the lease goes back.
	err = s.loop.Post(func() {
		req := <-reqCh
		if req.Cancel() {
			return
		}

		select {
		case l := <-grantCh:
			l.Release()
		default:
		}
	})

	cerr := context.Cause(ctx)
	span.SetStatus(codes.Error, cerr.Error())

	if errors.Is(cerr, context.DeadlineExceeded) {
		cerr = fmt.Errorf("%w: %w", ErrTimeout, cerr)
	}

	return nil, errors.Join(fmt.Errorf("acquire %v lock %v: %w", kind, s.name, cerr), err)
}

func (s *State) tryGuard(ctx context.Context, kind Kind) (*Guard, bool, error) {
	ctx, span := s.startSpan(ctx, "rwlock.TryAcquire", kind)
	defer span.End()

	resCh := make(chan *Lease, 1)

	err := s.loop.Post(func() {
		l, _ := s.tryAcquire(kind)
		resCh <- l
	})
	if err != nil {
		return nil, false, fmt.Errorf("try acquire %v lock %v: %w", kind, s.name, err)
	}

	select {
	case l := <-resCh:
		if l == nil {
			return nil, false, nil
		}

		return newGuard(s.loop, l), true, nil
	case <-ctx.Done():
		// the attempt still runs; hand back a lease it may have obtained
		_ = s.loop.Post(func() {
			if l := <-resCh; l != nil {
				l.Release()
			}
		})

		return nil, false, context.Cause(ctx)
	}
}
