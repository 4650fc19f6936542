package rwlock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects events from loop callbacks, test goroutine reads them.
type recorder struct {
	m      sync.Mutex
	events []string
	doneCh chan struct{}
	want   int
}

func newRecorder(want int) *recorder {
	return &recorder{doneCh: make(chan struct{}), want: want}
}

func (r *recorder) add(e string) {
	r.m.Lock()
	defer r.m.Unlock()

	r.events = append(r.events, e)
	if len(r.events) == r.want {
		close(r.doneCh)
	}
}

func (r *recorder) wait(t *testing.T) []string {
	t.Helper()

	select {
	case <-r.doneCh:
	case <-time.After(5 * time.Second):
		t.Fatal("scenario did not complete")
	}

	r.m.Lock()
	defer r.m.Unlock()

	return r.events
}

func TestScenarioTwoReadersThenWriter(t *testing.T) {
	reg, l := newRegistry(t)
	rec := newRecorder(5)

	err := l.Post(func() {
		s := reg.Default()

		s.AcquireRead(func(r1 *Lease) {
			rec.add("read 1")
			s.AcquireRead(func(r2 *Lease) {
				rec.add("read 2")

				s.AcquireWrite(func(w *Lease) {
					rec.add("write")
					w.Release()
				})

				l.AfterFunc(5*time.Millisecond, func() {
					rec.add("release 1")
					r1.Release()
				})
				l.AfterFunc(10*time.Millisecond, func() {
					rec.add("release 2")
					r2.Release()
				})
			})
		})
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"read 1", "read 2", "release 1", "release 2", "write"}, rec.wait(t))
}

func TestScenarioWriterTimesOut(t *testing.T) {
	reg, l := newRegistry(t)
	rec := newRecorder(3)

	err := l.Post(func() {
		s := reg.Get("timeout")

		s.AcquireWrite(func(w *Lease) {
			rec.add("write 1")

			s.AcquireWrite(func(w *Lease) {
				rec.add("write 2")
			}, WithTimeout(5*time.Millisecond), WithTimeoutCallback(func() {
				rec.add("timeout")
			}))

			l.AfterFunc(30*time.Millisecond, func() {
				w.Release()
				rec.add("release")
			})
		})
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"write 1", "timeout", "release"}, rec.wait(t))

	err = l.Do(t.Context(), func() {
		assert.Equal(t, 0, reg.Get("timeout").Occupancy())
		assert.Equal(t, 0, reg.Get("timeout").Pending())
	})
	require.NoError(t, err)
}

func TestScenarioTimeoutUnblocksReaders(t *testing.T) {
	reg, l := newRegistry(t)
	rec := newRecorder(3)

	err := l.Post(func() {
		s := reg.Default()

		s.AcquireRead(func(r *Lease) {
			rec.add("read 1")

			s.AcquireWrite(func(w *Lease) {
				rec.add("write")
			}, WithTimeout(5*time.Millisecond), WithTimeoutCallback(func() {
				rec.add("timeout")
			}))

			// queued behind the writer, granted once it gives up
			s.AcquireRead(func(r *Lease) {
				rec.add("read 2")
			})
		})
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"read 1", "timeout", "read 2"}, rec.wait(t))
	assert.Equal(t, 2, occupancy(t, l, reg.Default()))
}

func TestScenarioScopedChain(t *testing.T) {
	reg, l := newRegistry(t)
	rec := newRecorder(4)

	err := l.Post(func() {
		reg.WithWriteLockAsync("chain", func(done func()) {
			rec.add("write start")
			l.AfterFunc(5*time.Millisecond, func() {
				rec.add("write end")
				done()
			})
		})
		reg.WithReadLock("chain", func() {
			rec.add("read")
		})
		reg.WithWriteLock("chain", func() {
			rec.add("write 2")
		})
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"write start", "write end", "read", "write 2"}, rec.wait(t))
}
