package rwlock

// ReadLockE is AcquireRead for error-first callbacks. The error argument is
// reserved, it is always nil.
func (s *State) ReadLockE(cb func(error, *Lease), opts ...Option) *Request {
	return s.AcquireRead(func(l *Lease) {
		cb(nil, l)
	}, opts...)
}

// WriteLockE is AcquireWrite for error-first callbacks. The error argument is
// reserved, it is always nil.
func (s *State) WriteLockE(cb func(error, *Lease), opts ...Option) *Request {
	return s.AcquireWrite(func(l *Lease) {
		cb(nil, l)
	}, opts...)
}
