package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/hephbuild/rwsched/internal/hconfig"
	"github.com/hephbuild/rwsched/internal/hcore/hlog/hlogtest"
	"github.com/hephbuild/rwsched/internal/hlocks"
	"github.com/hephbuild/rwsched/lib/rwlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStress(t *testing.T) {
	for _, driver := range hlocks.Drivers {
		t.Run(driver, func(t *testing.T) {
			cfg := hconfig.Stress{
				Workers:    8,
				Keys:       3,
				Iterations: 200,
				ReadRatio:  0.7,
			}

			var report stressReport
			err := withRegistry(hlogtest.NewContext(t), func(ctx context.Context, reg *rwlock.Registry) error {
				factory, err := hlocks.NewFactory(driver, reg)
				require.NoError(t, err)

				report, err = newStress(factory, cfg, stressOptions{}).Run(ctx)

				return err
			})
			require.NoError(t, err)

			assert.Equal(t, int64(0), report.Violations)
			assert.Equal(t, int64(0), report.Timeouts)
			assert.GreaterOrEqual(t, report.Reads+report.Writes, int64(cfg.Workers*cfg.Iterations))
			assert.Positive(t, report.Writes)
		})
	}
}

func TestStressTimeouts(t *testing.T) {
	cfg := hconfig.Stress{
		Workers:    4,
		Keys:       1,
		Iterations: 5,
		ReadRatio:  0,
		Hold:       20 * time.Millisecond,
	}

	var report stressReport
	err := withRegistry(hlogtest.NewContext(t), func(ctx context.Context, reg *rwlock.Registry) error {
		factory, err := hlocks.NewFactory(hlocks.DriverQueue, reg)
		require.NoError(t, err)

		report, err = newStress(factory, cfg, stressOptions{Timeout: time.Millisecond}).Run(ctx)

		return err
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), report.Violations)
	assert.Positive(t, report.Timeouts)
	assert.Equal(t, int64(cfg.Workers*cfg.Iterations), report.Writes+report.Timeouts)
}

func TestWithRegistryClosesLoop(t *testing.T) {
	var reg *rwlock.Registry
	err := withRegistry(hlogtest.NewContext(t), func(ctx context.Context, r *rwlock.Registry) error {
		reg = r

		return nil
	})
	require.NoError(t, err)

	_, err = reg.Lock(t.Context(), "after")
	assert.Error(t, err)
}
