package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mwillard/memoryforge/internal/preflight"
)

var errDoctorFailed = errors.New("preflight check failed")

func newDoctorCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run preflight checks before the first sync",
		Long: `Verifies the knowledge root exists, the store directory is
writable, and the configured embedding backend is reachable, reporting a
combined ready/ready_with_warnings/failed status.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show check details")
	return cmd
}

func runDoctor(cmd *cobra.Command, verbose bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	checker := preflight.New(preflight.WithVerbose(verbose), preflight.WithOutput(cmd.OutOrStdout()))
	results := checker.RunAll(cmd.Context(), a.Root, a.Embedder)
	checker.PrintResults(results)

	if checker.HasCriticalFailures(results) {
		return errDoctorFailed
	}
	return nil
}
