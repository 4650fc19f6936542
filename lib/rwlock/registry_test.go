package rwlock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetSameState(t *testing.T) {
	reg, _ := newManualRegistry(t)

	a := reg.Get("a")
	assert.Same(t, a, reg.Get("a"))
	assert.NotSame(t, a, reg.Get("b"))
	assert.Equal(t, "a", a.Name())
}

func TestRegistryDefaultIsDistinct(t *testing.T) {
	reg, _ := newManualRegistry(t)

	def := reg.Default()
	assert.Same(t, def, reg.Default())
	assert.NotSame(t, def, reg.Get(""))
	assert.NotSame(t, def, reg.Get(defaultName))
	assert.Equal(t, defaultName, def.Name())
}

func TestRegistryKeys(t *testing.T) {
	reg, _ := newManualRegistry(t)

	assert.Empty(t, reg.Keys())

	reg.Get("c")
	reg.Get("a")
	reg.Get("b")
	reg.Get("a")
	reg.Default()

	assert.Equal(t, []string{"a", "b", "c"}, reg.Keys())
}

func TestRegistryConcurrentGet(t *testing.T) {
	reg, _ := newManualRegistry(t)

	states := make([]*State, 100)

	var wg sync.WaitGroup
	for i := range states {
		wg.Add(1)
		go func() {
			defer wg.Done()
			states[i] = reg.Get("shared")
		}()
	}
	wg.Wait()

	for _, s := range states {
		assert.Same(t, states[0], s)
	}
}

func TestRegistryKeyedIsolation(t *testing.T) {
	reg, _ := newManualRegistry(t)

	var wa, wb, wd *Lease
	reg.AcquireWrite("a", grab(&wa))
	reg.AcquireWrite("b", grab(&wb))
	reg.Default().AcquireWrite(grab(&wd))

	require.NotNil(t, wa)
	require.NotNil(t, wb)
	require.NotNil(t, wd)

	var ra *Lease
	reg.AcquireRead("a", grab(&ra))
	assert.Nil(t, ra)
	assert.Equal(t, 0, reg.Get("b").Pending())

	wb.Release()
	assert.Nil(t, ra)

	wa.Release()
	require.NotNil(t, ra)
	assert.Equal(t, -1, reg.Default().Occupancy())
}
