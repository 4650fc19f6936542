package rwlock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithWriteLockReleasesAfterBody(t *testing.T) {
	reg, _ := newManualRegistry(t)
	s := reg.Get("section")

	var trace []string
	reg.WithWriteLock("section", func() {
		trace = append(trace, "body")
		assert.Equal(t, -1, s.Occupancy())

		// queued, must only run once body has returned
		reg.WithReadLock("section", func() {
			trace = append(trace, "reader")
		})
		trace = append(trace, "body end")
	})

	assert.Equal(t, []string{"body", "body end", "reader"}, trace)
	assert.Equal(t, 0, s.Occupancy())
}

func TestWithReadLockReleasesOnPanic(t *testing.T) {
	reg, _ := newManualRegistry(t)
	s := reg.Default()

	assert.Panics(t, func() {
		s.WithReadLock(func() {
			panic("boom")
		})
	})
	assert.Equal(t, 0, s.Occupancy())
}

func TestWithLockTimeout(t *testing.T) {
	reg, loop := newManualRegistry(t)
	s := reg.Default()

	var w1 *Lease
	s.AcquireWrite(grab(&w1))

	ran := false
	timedOut := false
	s.WithWriteLock(func() {
		ran = true
	}, WithTimeout(time.Millisecond), WithTimeoutCallback(func() {
		timedOut = true
	}))

	loop.advance(time.Millisecond)
	w1.Release()

	assert.False(t, ran)
	assert.True(t, timedOut)
}

func TestWithLockAsync(t *testing.T) {
	reg, loop := newManualRegistry(t)
	s := reg.Default()

	var done func()
	reg.WithWriteLockAsync("async", func(d func()) {
		done = d
	})
	require.NotNil(t, done)

	var reader func()
	reg.WithReadLockAsync("async", func(d func()) {
		reader = d
	})
	assert.Nil(t, reader)

	// done is called on a later turn
	_ = loop.Post(done)
	loop.advance(0)
	require.NotNil(t, reader)

	done()
	assert.Equal(t, 1, reg.Get("async").Occupancy())

	reader()
	reader()
	assert.Equal(t, 0, reg.Get("async").Occupancy())
	assert.Equal(t, 0, s.Occupancy())
}

func TestErrorFirst(t *testing.T) {
	reg, _ := newManualRegistry(t)

	var w1 *Lease
	reg.WriteLockE("e", func(err error, l *Lease) {
		assert.NoError(t, err)
		w1 = l
	})
	require.NotNil(t, w1)

	var r1 *Lease
	called := 0
	reg.ReadLockE("e", func(err error, l *Lease) {
		called++
		assert.NoError(t, err)
		r1 = l
	})
	assert.Nil(t, r1)

	w1.Release()
	require.NotNil(t, r1)
	assert.Equal(t, 1, called)
	assert.Equal(t, KindRead, r1.Kind())
}
