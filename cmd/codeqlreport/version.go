package codeqlreport

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/varalys/codeqlreport/internal/update"
)

// newChecker is swapped in tests.
var newChecker = update.New

func init() {
	var check bool
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "codeqlreport", version)
			if !check {
				return nil
			}
			latest, newer, err := newChecker().Check(version)
			if err != nil {
				return fmt.Errorf("update check: %w", err)
			}
			if newer {
				fmt.Fprintf(out, "A newer version is available: %s (run 'codeqlreport update')\n", latest)
			}
			return nil
		},
	}
	versionCmd.Flags().BoolVar(&check, "check", false, "check GitHub releases for a newer version")
	rootCmd.AddCommand(versionCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "update",
		Short: "Update codeqlreport to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := update.SelfUpdate(version)
			if err != nil {
				return err
			}
			if update.Newer(v, version) {
				fmt.Fprintln(cmd.OutOrStdout(), "Updated to", v)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Already up to date:", version)
			}
			return nil
		},
	})
}
