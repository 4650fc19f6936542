package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hephbuild/rwsched/internal/hconfig"
	"github.com/hephbuild/rwsched/internal/hcore/hlog"
	"github.com/hephbuild/rwsched/internal/hlocks"
	"github.com/hephbuild/rwsched/internal/hpanic"
	"github.com/hephbuild/rwsched/lib/rwlock"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// stressOptions are the driver options of the config file.
type stressOptions struct {
	// Timeout bounds each acquisition, 0 waits forever.
	Timeout time.Duration `mapstructure:"timeout"`
}

type stressReport struct {
	Reads      int64
	Writes     int64
	Timeouts   int64
	Violations int64
}

// keyProbe counts holders of a key to catch a writer sharing it.
type keyProbe struct {
	readers atomic.Int64
	writers atomic.Int64
}

type stress struct {
	cfg     hconfig.Stress
	opts    stressOptions
	factory *hlocks.Factory
	keys    []string
	probes  map[string]*keyProbe

	report struct {
		reads, writes, timeouts, violations atomic.Int64
	}
}

func newStress(factory *hlocks.Factory, cfg hconfig.Stress, opts stressOptions) *stress {
	s := &stress{
		cfg:     cfg,
		opts:    opts,
		factory: factory,
		probes:  map[string]*keyProbe{},
	}
	for i := range cfg.Keys {
		key := fmt.Sprintf("key%v", i)
		s.keys = append(s.keys, key)
		s.probes[key] = &keyProbe{}
	}

	return s
}

func (s *stress) enter(key string, kind rwlock.Kind) {
	p := s.probes[key]
	if kind == rwlock.KindWrite {
		if p.writers.Add(1) != 1 || p.readers.Load() != 0 {
			s.report.violations.Add(1)
		}
		s.report.writes.Add(1)
	} else {
		p.readers.Add(1)
		if p.writers.Load() != 0 {
			s.report.violations.Add(1)
		}
		s.report.reads.Add(1)
	}
}

func (s *stress) leave(key string, kind rwlock.Kind) {
	p := s.probes[key]
	if kind == rwlock.KindWrite {
		p.writers.Add(-1)
	} else {
		p.readers.Add(-1)
	}
}

func (s *stress) acquire(ctx context.Context, l hlocks.RWLocker, kind rwlock.Kind) (func() error, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	if kind == rwlock.KindWrite {
		return l.Unlock, l.Lock(ctx)
	}

	return l.RUnlock, l.RLock(ctx)
}

// iteration takes one or two keys, always in key order.
func (s *stress) iteration(ctx context.Context, rnd *rand.Rand, lockers map[string]hlocks.RWLocker) error {
	keys := []string{s.keys[rnd.IntN(len(s.keys))]}
	if len(s.keys) > 1 && rnd.IntN(4) == 0 {
		if other := s.keys[rnd.IntN(len(s.keys))]; other != keys[0] {
			keys = append(keys, other)
			slices.Sort(keys)
		}
	}

	kind := rwlock.KindRead
	if rnd.Float64() >= s.cfg.ReadRatio {
		kind = rwlock.KindWrite
	}

	held := hlocks.NewMulti()
	for _, key := range keys {
		unlock, err := s.acquire(ctx, lockers[key], kind)
		if err != nil {
			uerr := held.UnlockAll()
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				s.report.timeouts.Add(1)

				return uerr
			}

			return errors.Join(err, uerr)
		}

		s.enter(key, kind)
		held.Add(func() error {
			s.leave(key, kind)

			return unlock()
		})
	}

	if s.cfg.Hold > 0 {
		time.Sleep(s.cfg.Hold)
	}

	return held.UnlockAll()
}

func (s *stress) worker(ctx context.Context, id int) error {
	wid := uuid.New()
	ctx, logger := hlog.ContextWith(ctx, "worker", wid.String())

	lockers := make(map[string]hlocks.RWLocker, len(s.keys))
	for _, key := range s.keys {
		lockers[key] = s.factory.New(key)
	}

	rnd := rand.New(rand.NewPCG(uint64(id), uint64(len(s.keys))))

	for i := range s.cfg.Iterations {
		err := hpanic.Recover(func() error {
			return s.iteration(ctx, rnd, lockers)
		}, hpanic.Wrap(func(err *hpanic.Error) error {
			return fmt.Errorf("worker %v: %w", wid, err)
		}))
		if err != nil {
			return err
		}

		if i > 0 && i%1000 == 0 {
			logger.Debug("progress", "iterations", i)
		}
	}

	return nil
}

func (s *stress) Run(ctx context.Context) (stressReport, error) {
	g, ctx := errgroup.WithContext(ctx)
	for id := range s.cfg.Workers {
		g.Go(func() error {
			return s.worker(ctx, id)
		})
	}

	err := g.Wait()

	return stressReport{
		Reads:      s.report.reads.Load(),
		Writes:     s.report.writes.Load(),
		Timeouts:   s.report.timeouts.Load(),
		Violations: s.report.violations.Load(),
	}, err
}

func init() {
	var driver string
	var workers, keys, iterations int

	var stressCmd = &cobra.Command{
		Use:   "stress",
		Short: "Hammer a lock driver from many goroutines and check exclusion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("driver") {
				cfg.Driver = driver
			}
			if flags.Changed("workers") {
				cfg.Stress.Workers = workers
			}
			if flags.Changed("keys") {
				cfg.Stress.Keys = keys
			}
			if flags.Changed("iterations") {
				cfg.Stress.Iterations = iterations
			}
			if cfg.Stress.Workers <= 0 || cfg.Stress.Keys <= 0 {
				return errors.New("workers and keys must be positive")
			}

			opts, err := hconfig.DecodeOptions[stressOptions](cfg.Options)
			if err != nil {
				return fmt.Errorf("options: %w", err)
			}

			var report stressReport
			err = withRegistry(ctx, func(ctx context.Context, reg *rwlock.Registry) error {
				factory, err := hlocks.NewFactory(cfg.Driver, reg)
				if err != nil {
					return err
				}

				start := time.Now()
				report, err = newStress(factory, cfg.Stress, opts).Run(ctx)

				hlog.From(ctx).Info("stress done",
					"driver", factory.Driver(),
					"reads", report.Reads,
					"writes", report.Writes,
					"timeouts", report.Timeouts,
					"violations", report.Violations,
					"duration", time.Since(start),
				)

				return err
			})
			if err != nil {
				return err
			}

			if report.Violations > 0 {
				return exitError{code: 2, err: fmt.Errorf("%v exclusion violations", report.Violations)}
			}

			return nil
		},
	}

	stressCmd.Flags().StringVar(&driver, "driver", hlocks.DriverQueue, fmt.Sprintf("lock driver, one of %v", hlocks.Drivers))
	stressCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines")
	stressCmd.Flags().IntVar(&keys, "keys", 0, "distinct lock keys")
	stressCmd.Flags().IntVar(&iterations, "iterations", 0, "acquisitions per worker")

	rootCmd.AddCommand(stressCmd)
}
