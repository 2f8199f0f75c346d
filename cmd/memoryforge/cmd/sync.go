package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Ensure the index is fresh without clearing it first",
		Long: `Runs the same freshness check every search performs automatically:
discovers changed files and reconciles the store, without clearing it
first. Use 'memoryforge index --force' for a from-scratch rebuild.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd)
		},
	}
}

func runSync(cmd *cobra.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Syncer.EnsureIndexFresh(cmd.Context())
	if err != nil {
		return fmt.Errorf("syncing project: %w", err)
	}

	out := cmd.OutOrStdout()
	if !result.Changed {
		fmt.Fprintln(out, "Already up to date")
		return nil
	}
	fmt.Fprintf(out, "Indexed %d file(s), removed %d, %d unchanged\n", len(result.Indexed), len(result.Removed), result.Unchanged)
	return nil
}
