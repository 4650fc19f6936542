package hlocks

import (
	"fmt"

	"github.com/hephbuild/rwsched/lib/rwlock"
	golock "github.com/viney-shih/go-lock"
	sync_map "github.com/zolstein/sync-map"
)

const (
	DriverQueue = "queue"
	DriverCAS   = "cas"
)

var Drivers = []string{DriverQueue, DriverCAS}

// Factory hands out RWLockers by key. Lockers of the same key share the same
// underlying lock.
type Factory struct {
	driver string
	reg    *rwlock.Registry
	cas    sync_map.Map[string, *golock.CASMutex]
}

func NewFactory(driver string, reg *rwlock.Registry) (*Factory, error) {
	switch driver {
	case DriverQueue:
		if reg == nil {
			return nil, fmt.Errorf("driver %v requires a registry", driver)
		}
	case DriverCAS:
	default:
		return nil, fmt.Errorf("unknown lock driver: %s", driver)
	}

	return &Factory{driver: driver, reg: reg}, nil
}

func (f *Factory) Driver() string {
	return f.driver
}

func (f *Factory) New(key string) RWLocker {
	if f.driver == DriverCAS {
		m, ok := f.cas.Load(key)
		if !ok {
			m, _ = f.cas.LoadOrStore(key, golock.NewCASMutex())
		}

		return newMutex(key, m)
	}

	return NewQueued(f.reg.Get(key))
}
