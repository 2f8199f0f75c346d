package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Synchronize the index with the knowledge/ tree on disk",
		Long: `Walks knowledge/, hashes every indexable file, and reconciles the
chunk+vector store against the content manifest: new or changed files are
chunked and embedded, deleted files are removed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Clear the store and manifest before reindexing")

	return cmd
}

func runIndex(cmd *cobra.Command, force bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if force {
		if err := a.Syncer.Reset(ctx); err != nil {
			return fmt.Errorf("forcing reset: %w", err)
		}
	}

	result, err := a.Syncer.SyncProject(ctx)
	if err != nil {
		return fmt.Errorf("syncing project: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Indexed %d file(s), removed %d, %d unchanged\n", len(result.Indexed), len(result.Removed), result.Unchanged)
	for _, p := range result.Indexed {
		fmt.Fprintf(out, "  + %s\n", p)
	}
	for _, p := range result.Removed {
		fmt.Fprintf(out, "  - %s\n", p)
	}
	if result.ModelReset {
		fmt.Fprintln(out, "Embedding model changed: store was cleared and fully reindexed")
	}
	return nil
}
