package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwillard/memoryforge/internal/audit"
	"github.com/mwillard/memoryforge/internal/project"
)

func newMemoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "memory",
		Short: "Show a combined overview of the knowledge index and autoload audit",
		Long: `A human-facing dashboard combining corpus size, last sync time, and
the autoload token audit (spec.md §4.C8) in one view.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMemory(cmd)
		},
	}
}

func runMemory(cmd *cobra.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	files, err := a.Store.ListFiles(ctx)
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}
	chunks, err := a.Store.ListChunks(ctx, nil)
	if err != nil {
		return fmt.Errorf("listing chunks: %w", err)
	}
	manifest, err := project.LoadManifest(project.ManifestPath(a.Root))
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}
	report, err := audit.Run(a.Root)
	if err != nil {
		return fmt.Errorf("running audit: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Project: %s\n", a.Root)
	fmt.Fprintf(w, "Knowledge: %d file(s), %d chunk(s)\n", len(files), len(chunks))
	if !manifest.LastIndexed.IsZero() {
		fmt.Fprintf(w, "Last synced: %s\n", manifest.LastIndexed.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Fprintln(w, "Last synced: never")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Autoload audit: %d token(s) total, tier %s\n", report.TotalTokens, report.SumTier)
	for _, f := range report.Files {
		if f.Tier == audit.TierOK {
			continue
		}
		fmt.Fprintf(w, "  [%s] %s (~%d tokens)\n", f.Tier, f.Path, f.EstimedTokens)
	}
	return nil
}
