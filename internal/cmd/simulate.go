package cmd

import (
	"context"
	"os"

	"github.com/hephbuild/rwsched/internal/hcore/hlog"
	"github.com/hephbuild/rwsched/internal/hsim"
	"github.com/hephbuild/rwsched/lib/rwlock"
	"github.com/spf13/cobra"
)

func init() {
	var asJSON bool

	var simulateCmd = &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Replay a scenario of lock requests and print its timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			sc, err := hsim.ParseFile(args[0])
			if err != nil {
				return err
			}

			if sc.Timeout == "" && cfg.DefaultTimeout > 0 {
				sc.Timeout = cfg.DefaultTimeout.String()
			}

			var tl hsim.Timeline
			err = withRegistry(ctx, func(ctx context.Context, reg *rwlock.Registry) error {
				tl, err = hsim.Run(ctx, reg, sc)

				return err
			})
			if err != nil {
				return err
			}

			if asJSON {
				return hsim.RenderJSON(os.Stdout, tl)
			}

			return hsim.Render(hlog.NewColorWriter(os.Stdout, plain), tl)
		},
	}

	simulateCmd.Flags().BoolVar(&asJSON, "json", false, "print the timeline as JSON")

	rootCmd.AddCommand(simulateCmd)
}
