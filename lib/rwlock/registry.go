// Package rwlock schedules read/write locks cooperatively on a single loop.
//
// Any number of readers may hold a lock together, a writer holds it alone.
// Acquisitions that cannot be granted immediately wait in a strict FIFO; a
// run of consecutive readers at the head of the queue is admitted at once.
// Locks are identified by key and created on first use by a Registry.
package rwlock

import (
	"context"
	"log/slog"
	"slices"

	"github.com/hephbuild/rwsched/internal/hcore/hlog"
	sync_map "github.com/zolstein/sync-map"
)

type Registry struct {
	loop   Loop
	logger *slog.Logger
	def    *State
	states sync_map.Map[string, *State]
}

// NewRegistry creates an empty registry scheduling on loop. The logger is
// taken from ctx.
func NewRegistry(ctx context.Context, loop Loop) *Registry {
	logger := hlog.From(ctx)

	return &Registry{
		loop:   loop,
		logger: logger,
		def:    newState(defaultName, loop, logger),
	}
}

func (r *Registry) Loop() Loop {
	return r.loop
}

// Get returns the lock for key, creating it on first reference. It is safe to
// call from any goroutine.
func (r *Registry) Get(key string) *State {
	s, ok := r.states.Load(key)
	if ok {
		return s
	}

	s, _ = r.states.LoadOrStore(key, newState(key, r.loop, r.logger))

	return s
}

// Default returns the default lock, which is distinct from every keyed lock.
func (r *Registry) Default() *State {
	return r.def
}

// Keys returns the sorted keys of the locks created so far.
func (r *Registry) Keys() []string {
	var keys []string
	r.states.Range(func(key string, _ *State) bool {
		keys = append(keys, key)
		return true
	})
	slices.Sort(keys)

	return keys
}

func (r *Registry) AcquireRead(key string, cb func(*Lease), opts ...Option) *Request {
	return r.Get(key).AcquireRead(cb, opts...)
}

func (r *Registry) AcquireWrite(key string, cb func(*Lease), opts ...Option) *Request {
	return r.Get(key).AcquireWrite(cb, opts...)
}

func (r *Registry) WithReadLock(key string, body func(), opts ...Option) *Request {
	return r.Get(key).WithReadLock(body, opts...)
}

func (r *Registry) WithWriteLock(key string, body func(), opts ...Option) *Request {
	return r.Get(key).WithWriteLock(body, opts...)
}

func (r *Registry) WithReadLockAsync(key string, body func(done func()), opts ...Option) *Request {
	return r.Get(key).WithReadLockAsync(body, opts...)
}

func (r *Registry) WithWriteLockAsync(key string, body func(done func()), opts ...Option) *Request {
	return r.Get(key).WithWriteLockAsync(body, opts...)
}

func (r *Registry) ReadLockE(key string, cb func(error, *Lease), opts ...Option) *Request {
	return r.Get(key).ReadLockE(cb, opts...)
}

func (r *Registry) WriteLockE(key string, cb func(error, *Lease), opts ...Option) *Request {
	return r.Get(key).WriteLockE(cb, opts...)
}

func (r *Registry) RLock(ctx context.Context, key string) (*Guard, error) {
	return r.Get(key).RLock(ctx)
}

func (r *Registry) Lock(ctx context.Context, key string) (*Guard, error) {
	return r.Get(key).Lock(ctx)
}

func (r *Registry) DoRead(ctx context.Context, key string, f func(ctx context.Context) error) error {
	return r.Get(key).DoRead(ctx, f)
}

func (r *Registry) DoWrite(ctx context.Context, key string, f func(ctx context.Context) error) error {
	return r.Get(key).DoWrite(ctx, f)
}
