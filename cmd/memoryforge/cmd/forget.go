package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwillard/memoryforge/internal/audit"
	"github.com/mwillard/memoryforge/internal/store"
)

func newForgetCmd() *cobra.Command {
	var maxFiles, maxAgeDays int
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Remove stale, low-importance files from the index",
		Long: `Runs the §4.C8 retention pass: files with importance >= the protect
threshold are never candidates; remaining candidates are removed by age
and/or up to --max-files of them, least-important/least-used/oldest-accessed
first. The knowledge/ files on disk are never touched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForget(cmd, maxFiles, maxAgeDays, dryRun)
		},
	}

	cmd.Flags().IntVar(&maxFiles, "max-files", 0, "Forget at most this many low-importance candidates")
	cmd.Flags().IntVar(&maxAgeDays, "max-age", 0, "Drop files not accessed within this many days")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be forgotten without removing anything")

	return cmd
}

func runForget(cmd *cobra.Command, maxFiles, maxAgeDays int, dryRun bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if maxFiles <= 0 {
		maxFiles = a.Config.Retention.MaxFiles
	}
	if maxAgeDays <= 0 {
		maxAgeDays = a.Config.Retention.MaxAgeDays
	}
	if maxFiles <= 0 && maxAgeDays <= 0 {
		return fmt.Errorf("at least one of --max-files or --max-age is required")
	}

	cfg := audit.RetentionConfig{
		MaxFiles:          maxFiles,
		MaxAgeDays:        maxAgeDays,
		ProtectImportance: a.Config.Retention.ProtectImportance,
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var forgotten []string
	if dryRun {
		forgotten, err = previewForgetStale(ctx, a.Store, cfg)
	} else {
		var result audit.RetentionResult
		result, err = audit.ForgetStale(ctx, a.Store, cfg)
		forgotten = result.Forgotten
	}
	if err != nil {
		return fmt.Errorf("running retention: %w", err)
	}

	sort.Strings(forgotten)
	if len(forgotten) == 0 {
		fmt.Fprintln(out, "Nothing to forget")
		return nil
	}
	verb := "Forgot"
	if dryRun {
		verb = "Would forget"
	}
	fmt.Fprintf(out, "%s %d file(s):\n", verb, len(forgotten))
	for _, p := range forgotten {
		fmt.Fprintf(out, "  - %s\n", p)
	}
	return nil
}

// previewForgetStale mirrors internal/audit.ForgetStale's candidate
// selection without removing anything, so --dry-run can report the exact
// same set a real run would forget while touching neither the store nor
// the filesystem.
func previewForgetStale(ctx context.Context, s *store.Store, cfg audit.RetentionConfig) ([]string, error) {
	protectImportance := cfg.ProtectImportance
	if protectImportance == 0 {
		protectImportance = 8
	}

	files, err := s.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	var candidates []store.File
	for _, f := range files {
		if f.Importance >= protectImportance {
			continue
		}
		candidates = append(candidates, f)
	}

	stale := make(map[string]bool, len(candidates))

	if cfg.MaxAgeDays > 0 {
		cutoff := time.Now().Add(-time.Duration(cfg.MaxAgeDays) * 24 * time.Hour)
		for _, f := range candidates {
			if f.LastAccessed.IsZero() || f.LastAccessed.Before(cutoff) {
				stale[f.Path] = true
			}
		}
	}

	if cfg.MaxFiles > 0 {
		numStale := cfg.MaxFiles
		if numStale > len(candidates) {
			numStale = len(candidates)
		}
		if numStale > 0 {
			ordered := make([]store.File, len(candidates))
			copy(ordered, candidates)
			sort.Slice(ordered, func(i, j int) bool {
				a, b := ordered[i], ordered[j]
				if a.Importance != b.Importance {
					return a.Importance < b.Importance
				}
				if a.AccessCount != b.AccessCount {
					return a.AccessCount < b.AccessCount
				}
				return a.LastAccessed.Before(b.LastAccessed)
			})
			for _, f := range ordered[:numStale] {
				stale[f.Path] = true
			}
		}
	}

	forgotten := make([]string, 0, len(stale))
	for path := range stale {
		forgotten = append(forgotten, path)
	}
	return forgotten, nil
}
