package rwlock

// Request is a pending acquisition. It settles exactly once, either when it
// is granted or when its timeout expires or it is cancelled; after that it is
// inert.
//
// Methods of Request must be called on the loop.
type Request struct {
	id        uint64
	kind      Kind
	state     *State
	callback  func(*Lease)
	onTimeout func()
	stopTimer func() bool

	settled bool

	queued     bool
	prev, next *Request
}

func (r *Request) Kind() Kind {
	return r.kind
}

// Settled reports whether the request was granted, timed out or cancelled.
func (r *Request) Settled() bool {
	return r.settled
}

// Cancel withdraws a pending request without invoking its timeout callback.
// It returns false if the request had already settled.
func (r *Request) Cancel() bool {
	if !r.settle() {
		return false
	}

	r.state.cancelled(r)

	return true
}

func (r *Request) settle() bool {
	if r.settled {
		return false
	}

	r.settled = true
	if r.stopTimer != nil {
		r.stopTimer()
	}

	return true
}

// queue is an intrusive FIFO of requests.
type queue struct {
	head, tail *Request
	len        int
}

func (q *queue) push(r *Request) {
	r.queued = true
	r.prev = q.tail
	r.next = nil
	if q.tail != nil {
		q.tail.next = r
	} else {
		q.head = r
	}
	q.tail = r
	q.len++
}

func (q *queue) remove(r *Request) {
	if !r.queued {
		return
	}

	if r.prev != nil {
		r.prev.next = r.next
	} else {
		q.head = r.next
	}
	if r.next != nil {
		r.next.prev = r.prev
	} else {
		q.tail = r.prev
	}

	r.prev, r.next = nil, nil
	r.queued = false
	q.len--
}

func (q *queue) empty() bool {
	return q.head == nil
}
