package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the index and manifest, discarding all derived state",
		Long: `Empties the store and manifest. The knowledge/ markdown files on
disk are never touched; the next index run rebuilds everything from them.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClear(cmd, yes)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the destructive clear")
	return cmd
}

func runClear(cmd *cobra.Command, yes bool) error {
	if !yes {
		return fmt.Errorf("refusing to clear without --yes")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Syncer.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("clearing: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Index and manifest cleared")
	return nil
}
