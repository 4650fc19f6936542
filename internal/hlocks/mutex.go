package hlocks

import (
	"context"
	"fmt"

	"github.com/hephbuild/rwsched/internal/hcore/hlog"
	golock "github.com/viney-shih/go-lock"
)

// NewMutex returns a RWLocker spinning on a CAS mutex. Waiters are not served
// in arrival order.
func NewMutex(name string) RWLocker {
	return newMutex(name, golock.NewCASMutex())
}

func newMutex(name string, m *golock.CASMutex) *mutex {
	return &mutex{name: name, m: m}
}

type mutex struct {
	name string
	m    *golock.CASMutex
}

func (m *mutex) TryLock(ctx context.Context) (bool, error) {
	return m.m.TryLock(), ctx.Err()
}

func (m *mutex) Lock(ctx context.Context) error {
	ok := m.m.TryLock()
	if ok {
		return nil
	}

	hlog.From(ctx).Debug(fmt.Sprintf("Another holder locked %v, waiting...", m.name))

	if !m.m.TryLockWithContext(ctx) {
		return fmt.Errorf("lock %v: %w", m.name, context.Cause(ctx))
	}

	return nil
}

func (m *mutex) Unlock() error {
	m.m.Unlock()

	return nil
}

func (m *mutex) TryRLock(ctx context.Context) (bool, error) {
	return m.m.RTryLock(), ctx.Err()
}

func (m *mutex) RLock(ctx context.Context) error {
	ok := m.m.RTryLock()
	if ok {
		return nil
	}

	hlog.From(ctx).Debug(fmt.Sprintf("Another holder locked %v, waiting...", m.name))

	if !m.m.RTryLockWithContext(ctx) {
		return fmt.Errorf("rlock %v: %w", m.name, context.Cause(ctx))
	}

	return nil
}

func (m *mutex) RUnlock() error {
	m.m.RUnlock()

	return nil
}
