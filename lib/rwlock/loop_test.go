package rwlock

import (
	"slices"
	"testing"
	"time"

	"github.com/hephbuild/rwsched/internal/hcore/hlog/hlogtest"
)

// manualLoop runs tasks on the test goroutine and only moves time forward when
// told to, which makes timeout races deterministic.
type manualLoop struct {
	tasks  []func()
	timers []*manualTimer
	now    time.Duration
}

type manualTimer struct {
	at      time.Duration
	f       func()
	fired   bool
	stopped bool
}

func (l *manualLoop) Post(f func()) error {
	l.tasks = append(l.tasks, f)

	return nil
}

func (l *manualLoop) AfterFunc(d time.Duration, f func()) func() bool {
	t := &manualTimer{at: l.now + d, f: f}
	l.timers = append(l.timers, t)

	return func() bool {
		if t.fired || t.stopped {
			return false
		}
		t.stopped = true

		return true
	}
}

func (l *manualLoop) drain() {
	for len(l.tasks) > 0 {
		f := l.tasks[0]
		l.tasks = l.tasks[1:]
		f()
	}
}

func (l *manualLoop) nextTimer(until time.Duration) *manualTimer {
	var next *manualTimer
	for _, t := range l.timers {
		if t.fired || t.stopped || t.at > until {
			continue
		}
		if next == nil || t.at < next.at {
			next = t
		}
	}

	return next
}

// advance moves the clock by d, firing due timers in deadline order.
func (l *manualLoop) advance(d time.Duration) {
	until := l.now + d

	for {
		l.drain()

		t := l.nextTimer(until)
		if t == nil {
			break
		}

		l.now = t.at
		t.fired = true
		t.f()
	}

	l.now = until
	l.drain()
}

func (l *manualLoop) activeTimers() int {
	return len(slices.DeleteFunc(slices.Clone(l.timers), func(t *manualTimer) bool {
		return t.fired || t.stopped
	}))
}

func newManualRegistry(t *testing.T) (*Registry, *manualLoop) {
	t.Helper()

	l := &manualLoop{}

	return NewRegistry(hlogtest.NewContext(t), l), l
}

var _ Loop = (*manualLoop)(nil)
