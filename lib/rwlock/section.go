package rwlock

// WithReadLock runs body under a read lease. The lease is released once body
// returns, or panics.
func (s *State) WithReadLock(body func(), opts ...Option) *Request {
	return s.AcquireRead(func(l *Lease) {
		defer l.Release()

		body()
	}, opts...)
}

// WithWriteLock runs body under a write lease. The lease is released once body
// returns, or panics.
func (s *State) WithWriteLock(body func(), opts ...Option) *Request {
	return s.AcquireWrite(func(l *Lease) {
		defer l.Release()

		body()
	}, opts...)
}

// WithReadLockAsync runs body under a read lease that is held until body
// calls done. done may be called from a later loop turn and more than once.
func (s *State) WithReadLockAsync(body func(done func()), opts ...Option) *Request {
	return s.AcquireRead(func(l *Lease) {
		body(l.Release)
	}, opts...)
}

// WithWriteLockAsync runs body under a write lease that is held until body
// calls done. done may be called from a later loop turn and more than once.
func (s *State) WithWriteLockAsync(body func(done func()), opts ...Option) *Request {
	return s.AcquireWrite(func(l *Lease) {
		body(l.Release)
	}, opts...)
}
