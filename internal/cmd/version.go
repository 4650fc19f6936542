package cmd

import (
	"fmt"

	"github.com/hephbuild/rwsched/internal/hversion"
	"github.com/spf13/cobra"
)

func init() {
	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), hversion.Version)

			return err
		},
	}

	rootCmd.AddCommand(versionCmd)
}
