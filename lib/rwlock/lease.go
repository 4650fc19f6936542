package rwlock

// Lease is the release handle handed to an acquisition callback.
// Release must be called on the loop; calling it more than once has no effect.
type Lease struct {
	state    *State
	kind     Kind
	released bool
}

func (l *Lease) Kind() Kind {
	return l.kind
}

func (l *Lease) Released() bool {
	return l.released
}

func (l *Lease) Release() {
	if l.released {
		return
	}
	l.released = true

	l.state.release(l.kind)
}
