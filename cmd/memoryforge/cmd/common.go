package cmd

import (
	"fmt"
	"os"

	"github.com/mwillard/memoryforge/internal/config"
	"github.com/mwillard/memoryforge/internal/embed"
	"github.com/mwillard/memoryforge/internal/project"
	"github.com/mwillard/memoryforge/internal/search"
	"github.com/mwillard/memoryforge/internal/store"
	forgesync "github.com/mwillard/memoryforge/internal/sync"
)

// app bundles the wired components every subcommand but version needs.
type app struct {
	Root     string
	Config   *config.Config
	Store    *store.Store
	Embedder embed.Embedder
	Syncer   *forgesync.Syncer
	Searcher *search.Searcher
}

// resolveRoot finds the project root: MEMORY_FORGE_PROJECT_ROOT if set
// (spec.md §6.5), else the nearest .git or .memory-forge ancestor of cwd.
func resolveRoot() (string, error) {
	if r := os.Getenv("MEMORY_FORGE_PROJECT_ROOT"); r != "" {
		return r, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return project.FindRoot(cwd)
}

// newApp wires the store, embedder, syncer, and searcher for one project
// root. Callers must call Close when done.
func newApp() (*app, error) {
	root, err := resolveRoot()
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	st, err := store.Open(project.IndexDBPath(root))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	embedder, err := embed.NewEmbedder(embed.ParseProvider(cfg.Embedding.Provider), cfg.Embedding.Model)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("constructing embedder: %w", err)
	}

	syncer := &forgesync.Syncer{Store: st, Embedder: embedder, Root: root}
	searcher := &search.Searcher{Store: st, Syncer: syncer}

	return &app{
		Root:     root,
		Config:   cfg,
		Store:    st,
		Embedder: embedder,
		Syncer:   syncer,
		Searcher: searcher,
	}, nil
}

// Close releases the store and embedder.
func (a *app) Close() {
	_ = a.Embedder.Close()
	_ = a.Store.Close()
}
