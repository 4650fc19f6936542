package hlocks

import (
	"errors"
	"slices"
	"sync"
)

// Multi collects unlock functions of held locks so that they can be released
// together, in reverse acquisition order.
type Multi struct {
	m  sync.Mutex
	ls []func() error
}

func NewMulti() *Multi {
	return &Multi{}
}

func (m *Multi) Add(l func() error) {
	m.m.Lock()
	defer m.m.Unlock()

	m.ls = append(m.ls, l)
}

func (m *Multi) Len() int {
	m.m.Lock()
	defer m.m.Unlock()

	return len(m.ls)
}

func (m *Multi) UnlockAll() error {
	m.m.Lock()
	ls := m.ls
	m.ls = nil
	m.m.Unlock()

	var errs error
	for _, l := range slices.Backward(ls) {
		err := l()
		if err != nil {
			errs = errors.Join(errs, err)
		}
	}

	return errs
}
