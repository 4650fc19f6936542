package hlocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/hephbuild/rwsched/internal/hcore/hlog"
	"github.com/hephbuild/rwsched/lib/rwlock"
)

// NewQueued returns a RWLocker backed by a lock of a rwlock.Registry. Waiters
// are served in arrival order.
func NewQueued(state *rwlock.State) RWLocker {
	return &queued{state: state}
}

type queued struct {
	state *rwlock.State

	m     sync.Mutex
	write *rwlock.Guard
	reads []*rwlock.Guard
}

func (q *queued) hold(g *rwlock.Guard) {
	q.m.Lock()
	defer q.m.Unlock()

	if g.Kind() == rwlock.KindWrite {
		q.write = g
	} else {
		q.reads = append(q.reads, g)
	}
}

func (q *queued) lock(ctx context.Context, kind rwlock.Kind) error {
	try, acquire := q.state.TryLock, q.state.Lock
	if kind == rwlock.KindRead {
		try, acquire = q.state.TryRLock, q.state.RLock
	}

	g, ok, err := try(ctx)
	if err != nil {
		return err
	}

	if !ok {
		hlog.From(ctx).Debug(fmt.Sprintf("Another holder locked %v, waiting...", q.state.Name()))

		g, err = acquire(ctx)
		if err != nil {
			return err
		}
	}

	q.hold(g)

	return nil
}

func (q *queued) tryLock(ctx context.Context, kind rwlock.Kind) (bool, error) {
	try := q.state.TryLock
	if kind == rwlock.KindRead {
		try = q.state.TryRLock
	}

	g, ok, err := try(ctx)
	if err != nil || !ok {
		return false, err
	}

	q.hold(g)

	return true, nil
}

func (q *queued) Lock(ctx context.Context) error {
	return q.lock(ctx, rwlock.KindWrite)
}

func (q *queued) TryLock(ctx context.Context) (bool, error) {
	return q.tryLock(ctx, rwlock.KindWrite)
}

func (q *queued) Unlock() error {
	q.m.Lock()
	g := q.write
	q.write = nil
	q.m.Unlock()

	if g == nil {
		return fmt.Errorf("unlock %v: %w", q.state.Name(), ErrNotLocked)
	}

	return g.Release()
}

func (q *queued) RLock(ctx context.Context) error {
	return q.lock(ctx, rwlock.KindRead)
}

func (q *queued) TryRLock(ctx context.Context) (bool, error) {
	return q.tryLock(ctx, rwlock.KindRead)
}

func (q *queued) RUnlock() error {
	q.m.Lock()
	var g *rwlock.Guard
	if n := len(q.reads); n > 0 {
		g = q.reads[n-1]
		q.reads = q.reads[:n-1]
	}
	q.m.Unlock()

	if g == nil {
		return fmt.Errorf("runlock %v: %w", q.state.Name(), ErrNotLocked)
	}

	return g.Release()
}
