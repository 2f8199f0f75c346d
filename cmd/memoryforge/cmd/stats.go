package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwillard/memoryforge/internal/project"
)

type statsOutput struct {
	FileCount             int    `json:"file_count"`
	ChunkCount            int    `json:"chunk_count"`
	LastIndexed           string `json:"last_indexed,omitempty"`
	ModelID               string `json:"model_id,omitempty"`
	MostAccessedFile      string `json:"most_accessed_file,omitempty"`
	MostAccessedCount     int    `json:"most_accessed_count,omitempty"`
	LeastRecentlyUsedFile string `json:"least_recently_used_file,omitempty"`
}

func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Report corpus size and access-pattern statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func runStats(cmd *cobra.Command, jsonOutput bool) error {
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
	meta, err := a.Store.GetMetadata(ctx)
	if err != nil {
		return fmt.Errorf("reading metadata: %w", err)
	}
	manifest, err := project.LoadManifest(project.ManifestPath(a.Root))
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}

	out := statsOutput{FileCount: len(files), ChunkCount: len(chunks), ModelID: meta["model_id"]}
	if !manifest.LastIndexed.IsZero() {
		out.LastIndexed = manifest.LastIndexed.Format(time.RFC3339)
	}

	var lruIdx = -1
	for i := range files {
		if files[i].AccessCount > out.MostAccessedCount {
			out.MostAccessedCount = files[i].AccessCount
			out.MostAccessedFile = files[i].Path
		}
		if lruIdx == -1 || files[i].LastAccessed.Before(files[lruIdx].LastAccessed) {
			lruIdx = i
		}
	}
	if lruIdx != -1 {
		out.LeastRecentlyUsedFile = files[lruIdx].Path
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "Files:   %d\n", out.FileCount)
	fmt.Fprintf(w, "Chunks:  %d\n", out.ChunkCount)
	if out.ModelID != "" {
		fmt.Fprintf(w, "Model:   %s\n", out.ModelID)
	}
	if out.LastIndexed != "" {
		fmt.Fprintf(w, "Indexed: %s\n", out.LastIndexed)
	}
	if out.MostAccessedFile != "" {
		fmt.Fprintf(w, "Most accessed: %s (%d)\n", out.MostAccessedFile, out.MostAccessedCount)
	}
	if out.LeastRecentlyUsedFile != "" {
		fmt.Fprintf(w, "Least recently used: %s\n", out.LeastRecentlyUsedFile)
	}
	return nil
}
