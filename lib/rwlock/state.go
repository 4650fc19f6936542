package rwlock

import (
	"log/slog"
)

const defaultName = "<default>"

// State is one read/write lock: its occupancy and the FIFO of requests
// waiting for it.
//
// occupancy is 0 when the lock is free, n > 0 when n readers hold it and -1
// when a writer holds it.
//
// Unless stated otherwise, methods of State must be called on the loop of the
// Registry that created it.
type State struct {
	name   string
	loop   Loop
	logger *slog.Logger

	occupancy int
	queue     queue
	seq       uint64

	evaluating bool
	again      bool
}

func newState(name string, loop Loop, logger *slog.Logger) *State {
	return &State{
		name:   name,
		loop:   loop,
		logger: logger.With(slog.String("lock", name)),
	}
}

// Name returns the key of the lock, or "<default>" for the default lock.
// It is safe to call from any goroutine.
func (s *State) Name() string {
	return s.name
}

func (s *State) Occupancy() int {
	return s.occupancy
}

// Pending returns the number of queued requests.
func (s *State) Pending() int {
	return s.queue.len
}

// AcquireRead invokes cb with a read lease as soon as no writer holds the
// lock and every earlier request has been served. If that is the case
// already, cb runs before AcquireRead returns.
func (s *State) AcquireRead(cb func(*Lease), opts ...Option) *Request {
	return s.acquire(KindRead, cb, opts)
}

// AcquireWrite invokes cb with a write lease as soon as the lock is free and
// every earlier request has been served. If that is the case already, cb runs
// before AcquireWrite returns.
func (s *State) AcquireWrite(cb func(*Lease), opts ...Option) *Request {
	return s.acquire(KindWrite, cb, opts)
}

// TryAcquireRead grants a read lease only if it can be done immediately.
func (s *State) TryAcquireRead() (*Lease, bool) {
	return s.tryAcquire(KindRead)
}

// TryAcquireWrite grants a write lease only if it can be done immediately.
func (s *State) TryAcquireWrite() (*Lease, bool) {
	return s.tryAcquire(KindWrite)
}

func (s *State) grantable(kind Kind) bool {
	switch kind {
	case KindRead:
		return s.occupancy >= 0
	case KindWrite:
		return s.occupancy == 0
	default:
		return false
	}
}

func (s *State) newRequest(kind Kind, cb func(*Lease)) *Request {
	s.seq++

	return &Request{
		id:       s.seq,
		kind:     kind,
		state:    s,
		callback: cb,
	}
}

func (s *State) tryAcquire(kind Kind) (*Lease, bool) {
	if !s.queue.empty() || !s.grantable(kind) {
		return nil, false
	}

	var lease *Lease
	req := s.newRequest(kind, func(l *Lease) {
		lease = l
	})
	req.settled = true
	s.grant(req, true)

	return lease, true
}

func (s *State) acquire(kind Kind, cb func(*Lease), opts []Option) *Request {
	o := newOptions(opts)

	req := s.newRequest(kind, cb)

	if s.queue.empty() && s.grantable(kind) {
		req.settled = true
		s.grant(req, true)

		return req
	}

	req.onTimeout = o.onTimeout
	s.queue.push(req)
	recordQueued(kind, 1)

	s.logger.Debug("lock request queued",
		slog.String("kind", kind.String()),
		slog.Uint64("id", req.id),
		slog.Int("occupancy", s.occupancy),
		slog.Int("pending", s.queue.len),
	)

	if o.hasTimeout {
		req.stopTimer = s.loop.AfterFunc(o.timeout, func() {
			s.expire(req)
		})
	}

	s.evaluate()

	return req
}

func (s *State) grant(req *Request, immediate bool) {
	switch req.kind {
	case KindRead:
		s.invariant(s.occupancy >= 0, "read granted while a writer holds the lock")
		s.occupancy++
	case KindWrite:
		s.invariant(s.occupancy == 0, "write granted while the lock is held")
		s.occupancy = -1
	}

	recordGrant(req.kind, immediate)

	if !immediate {
		s.logger.Debug("lock request granted",
			slog.String("kind", req.kind.String()),
			slog.Uint64("id", req.id),
			slog.Int("occupancy", s.occupancy),
		)
	}

	req.callback(&Lease{state: s, kind: req.kind})
}

func (s *State) release(kind Kind) {
	switch kind {
	case KindRead:
		s.invariant(s.occupancy > 0, "read lease released without readers")
		s.occupancy--
	case KindWrite:
		s.invariant(s.occupancy == -1, "write lease released without a writer")
		s.occupancy = 0
	}

	s.evaluate()
}

func (s *State) expire(req *Request) {
	if !req.settle() {
		return
	}

	s.queue.remove(req)
	recordQueued(req.kind, -1)
	recordTimeout(req.kind)

	s.logger.Debug("lock request timed out",
		slog.String("kind", req.kind.String()),
		slog.Uint64("id", req.id),
	)

	if req.onTimeout != nil {
		req.onTimeout()
	}

	s.evaluate()
}

func (s *State) cancelled(req *Request) {
	s.queue.remove(req)
	recordQueued(req.kind, -1)
	recordCancel(req.kind)

	s.logger.Debug("lock request cancelled",
		slog.String("kind", req.kind.String()),
		slog.Uint64("id", req.id),
	)

	s.evaluate()
}

// evaluate grants queued requests from the head for as long as possible.
// Callbacks may release or acquire synchronously; such nested evaluations are
// folded into the pass already running.
func (s *State) evaluate() {
	if s.evaluating {
		s.again = true
		return
	}

	s.evaluating = true
	defer func() {
		s.evaluating = false
	}()

	for {
		s.again = false
		s.drain()
		if !s.again {
			return
		}
	}
}

func (s *State) drain() {
	for {
		req := s.queue.head
		if req == nil {
			return
		}

		if req.settled {
			s.queue.remove(req)
			continue
		}

		if !s.grantable(req.kind) {
			return
		}

		s.queue.remove(req)
		recordQueued(req.kind, -1)
		req.settle()
		s.grant(req, false)

		if req.kind == KindWrite {
			return
		}
	}
}
