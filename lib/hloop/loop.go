// Package hloop implements a single goroutine task loop. Every task posted to
// a Loop runs on the goroutine that called Run, one after the other, in the
// order they were posted.
package hloop

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrClosed = errors.New("loop closed")

type Loop struct {
	m      sync.Mutex
	tasks  []func()
	signal chan struct{}
	closed bool
	doneCh chan struct{}
	turns  uint64
}

func New() *Loop {
	return &Loop{
		signal: make(chan struct{}, 1),
		doneCh: make(chan struct{}),
	}
}

func (l *Loop) notify() {
	select {
	case l.signal <- struct{}{}:
	default:
	}
}

// Post queues f to run on the loop goroutine. It never blocks and may be
// called from the loop itself.
func (l *Loop) Post(f func()) error {
	l.m.Lock()
	defer l.m.Unlock()

	if l.closed {
		return ErrClosed
	}

	l.tasks = append(l.tasks, f)
	l.notify()

	return nil
}

// AfterFunc posts f to the loop once d has elapsed. The returned function
// stops the timer; it reports false if f was already handed to the loop.
func (l *Loop) AfterFunc(d time.Duration, f func()) func() bool {
	t := time.AfterFunc(d, func() {
		_ = l.Post(f)
	})

	return t.Stop
}

// Do runs f on the loop and waits for it to complete.
// It must not be called from the loop goroutine.
func (l *Loop) Do(ctx context.Context, f func()) error {
	doneCh := make(chan struct{})

	err := l.Post(func() {
		defer close(doneCh)
		f()
	})
	if err != nil {
		return err
	}

	select {
	case <-doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) next() (func(), bool) {
	l.m.Lock()
	defer l.m.Unlock()

	if len(l.tasks) == 0 {
		return nil, l.closed
	}

	f := l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	l.turns++

	return f, false
}

// Run executes posted tasks until ctx is done or Close is called. Either way
// the loop is closed and the tasks already queued are drained before Run
// returns; Run then returns ctx.Err() if ctx ended it.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.doneCh)

	var err error
	for {
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
			l.Close()
		}

		f, closed := l.next()
		if closed {
			return err
		}

		if f != nil {
			f()
			continue
		}

		select {
		case <-ctx.Done():
		case <-l.signal:
		}
	}
}

func (l *Loop) Close() {
	l.m.Lock()
	defer l.m.Unlock()

	if l.closed {
		return
	}

	l.closed = true
	l.notify()
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.doneCh
}

// Turns returns how many tasks have been started so far.
func (l *Loop) Turns() uint64 {
	l.m.Lock()
	defer l.m.Unlock()

	return l.turns
}
