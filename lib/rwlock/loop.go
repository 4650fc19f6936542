package rwlock

import (
	"time"
)

// Loop is the single logical thread a Registry schedules on. All callbacks,
// releases and timer expiries of the registry run as tasks of the loop.
// hloop.Loop implements it.
type Loop interface {
	// Post queues f to run on the loop, it must not block.
	Post(f func()) error
	// AfterFunc posts f to the loop once d has elapsed, the returned func
	// stops the timer.
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}
