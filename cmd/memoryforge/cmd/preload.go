package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPreloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preload",
		Short: "Warm the embedding backend so the first query isn't slow",
		Long: `Forces the embedder to load its model immediately (e.g. pulling it
into Ollama's memory) rather than lazily on the first query or sync.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreload(cmd)
		},
	}
}

func runPreload(cmd *cobra.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if !a.Embedder.Available(ctx) {
		return fmt.Errorf("embedding backend unavailable (model %q)", a.Embedder.ModelID())
	}
	if _, err := a.Embedder.Embed(ctx, "warm up"); err != nil {
		return fmt.Errorf("warming embedder: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Embedder ready: %s (dimension %d)\n", a.Embedder.ModelID(), a.Embedder.Dimension())
	return nil
}
