package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/hephbuild/rwsched/internal/hconfig"
	"github.com/hephbuild/rwsched/internal/hcore/hlog"
	"github.com/hephbuild/rwsched/internal/hlipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var plain bool
var debug bool
var configPath string
var cpuprofile string
var cpuProfileFile *os.File
var memprofile string

var levelVar slog.LevelVar

var otelShutdown func(context.Context) error

var rootCmd = &cobra.Command{
	Use:              "rwsched",
	Short:            "Cooperative read/write lock scheduler playground",
	TraverseChildren: true,
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		levelVar.Set(hlog.LevelFromDebug(debug))

		if cpuprofile != "" {
			var err error
			cpuProfileFile, err = os.Create(cpuprofile)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %w", err)
			}
			if err := pprof.StartCPUProfile(cpuProfileFile); err != nil {
				return fmt.Errorf("could not start CPU profile: %w", err)
			}
		}

		var err error
		otelShutdown, err = setupOTelSDK(cmd.Context())
		if err != nil {
			return fmt.Errorf("otel: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		if otelShutdown != nil {
			err := otelShutdown(context.WithoutCancel(ctx))
			if err != nil {
				hlog.From(ctx).Error(fmt.Sprintf("could not shutdown otel: %v", err))
			}
		}

		if cpuProfileFile != nil {
			pprof.StopCPUProfile()
			err := cpuProfileFile.Close()
			if err != nil {
				hlog.From(ctx).Error(fmt.Sprintf("could not close cpu profile: %v", err))
				return
			}
		}

		if memprofile != "" {
			f, err := os.Create(memprofile)
			if err != nil {
				hlog.From(ctx).Error(fmt.Sprintf("could not create memory profile: %v", err))
				return
			}
			defer f.Close()
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				hlog.From(ctx).Error(fmt.Sprintf("could not write memory profile: %v", err))
			}
		}
	},
}

func init() {
	isTerm := isatty.IsTerminal(os.Stderr.Fd()) || hlipgloss.ForceTTY()

	rootCmd.PersistentFlags().BoolVarP(&plain, "plain", "", !isTerm, "disable colors")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "", false, "enable debug log")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", hconfig.FileName, "config file, a .local sibling is applied on top")

	rootCmd.PersistentFlags().StringVar(&cpuprofile, "cpuprofile", "", "CPU Profile file")
	rootCmd.PersistentFlags().StringVar(&memprofile, "memprofile", "", "Memory Profile file")
}

func loadConfig() (hconfig.Config, error) {
	cfg, err := hconfig.Load(configPath)
	if err != nil {
		return hconfig.Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// exitError lets a command pick the process exit code.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string {
	return e.err.Error()
}

func (e exitError) Unwrap() error {
	return e.err
}

func Execute() int {
	logger := hlog.NewTextLogger(os.Stderr, &levelVar, !isatty.IsTerminal(os.Stderr.Fd()) && !hlipgloss.ForceTTY())

	ctx, cancel := newSignalNotifyContext(hlog.ContextWithLogger(context.Background(), logger), os.Exit)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logger.Error(err.Error())

		var eerr exitError
		if errors.As(err, &eerr) {
			return eerr.code
		}

		return 1
	}

	return 0
}
