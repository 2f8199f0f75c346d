package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mwillard/memoryforge/internal/classify"
	"github.com/mwillard/memoryforge/internal/project"
)

func newListCmd() *cobra.Command {
	var discover bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed knowledge files",
		Long: `Lists every file currently tracked in the store. With --discover,
also lists indexable files found under knowledge/ that have not yet been
indexed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, discover)
		},
	}
	cmd.Flags().BoolVar(&discover, "discover", false, "Also list un-indexed files found under knowledge/")
	return cmd
}

func runList(cmd *cobra.Command, discover bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	files, err := a.Store.ListFiles(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(files) == 0 {
		fmt.Fprintln(out, "No files indexed yet")
	}
	indexed := make(map[string]bool, len(files))
	for _, f := range files {
		indexed[f.Path] = true
		fmt.Fprintf(out, "%s  (%s, importance %d)\n", f.Path, f.SourceType, f.Importance)
	}

	if !discover {
		return nil
	}

	onDisk, err := discoverKnowledgeFiles(a.Root)
	if err != nil {
		return fmt.Errorf("discovering knowledge files: %w", err)
	}
	newFiles := 0
	for _, rel := range onDisk {
		if indexed[rel] {
			continue
		}
		if newFiles == 0 {
			fmt.Fprintln(out, "\nNot yet indexed:")
		}
		fmt.Fprintf(out, "  %s\n", rel)
		newFiles++
	}
	return nil
}

// discoverKnowledgeFiles walks root/knowledge for indexable files: a
// read-only preview of what the next sync would pick up, distinct from
// internal/sync's unexported discover() which is only ever a prelude to a
// committing sync pass.
func discoverKnowledgeFiles(root string) ([]string, error) {
	knowledgeDir := project.KnowledgeDir(root)
	if _, err := os.Stat(knowledgeDir); os.IsNotExist(err) {
		return nil, nil
	}

	var found []string
	err := filepath.WalkDir(knowledgeDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if classify.IsIndexable(rel) {
			found = append(found, rel)
		}
		return nil
	})
	return found, err
}
