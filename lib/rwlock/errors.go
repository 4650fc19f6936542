package rwlock

import (
	"errors"
	"fmt"
)

var ErrTimeout = errors.New("lock acquisition timed out")

// InvariantError is the panic value raised when the lock state machine
// observes an impossible transition. It always denotes a bug in this package.
type InvariantError struct {
	Lock      string
	Occupancy int
	Msg       string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("rwlock %v: invariant violated: %v (occupancy %v)", e.Lock, e.Msg, e.Occupancy)
}

func (s *State) invariant(cond bool, msg string) {
	if cond {
		return
	}

	panic(&InvariantError{Lock: s.name, Occupancy: s.occupancy, Msg: msg})
}
