// Package sync implements incremental synchronization between the markdown
// knowledge tree and the chunk+vector store, driven by a content manifest
// (spec.md §4.C6). It is the only freshness mechanism the engine has: no
// filesystem watchers, no background threads.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	stdsync "sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mwillard/memoryforge/internal/chunk"
	"github.com/mwillard/memoryforge/internal/classify"
	"github.com/mwillard/memoryforge/internal/embed"
	"github.com/mwillard/memoryforge/internal/normalize"
	"github.com/mwillard/memoryforge/internal/project"
	"github.com/mwillard/memoryforge/internal/store"
)

// skipDirs are pruned anywhere they're encountered while walking the
// knowledge tree, per spec.md §4.C6 step 2.
var skipDirs = map[string]bool{
	"node_modules":  true,
	".git":          true,
	"dist":          true,
	"build":         true,
	".memory-forge": true,
}

// hashConcurrency bounds how many files are stat'd and hashed at once
// during discovery.
const hashConcurrency = 8

// Result reports what a sync pass did.
type Result struct {
	Indexed    []string
	Removed    []string
	Unchanged  int
	ModelReset bool
	Changed    bool
}

// Syncer ties together the store, manifest, and embedder for one project.
type Syncer struct {
	Store    *store.Store
	Embedder embed.Embedder
	Root     string
}

// SyncProject runs a full synchronization pass: model-change detection,
// discovery, manifest diff, removals, then insertions.
func (s *Syncer) SyncProject(ctx context.Context) (Result, error) {
	manifestPath := project.ManifestPath(s.Root)
	manifest, err := project.LoadManifest(manifestPath)
	if err != nil {
		return Result{}, fmt.Errorf("loading manifest: %w", err)
	}

	var result Result

	meta, err := s.Store.GetMetadata(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("reading store metadata: %w", err)
	}
	storedModel := meta["model_id"]
	currentModel := s.Embedder.ModelID()
	if storedModel != "" && storedModel != currentModel {
		slog.Info("embedding model changed, clearing store and manifest",
			slog.String("previous_model", storedModel), slog.String("current_model", currentModel))
		if err := s.Store.Clear(ctx); err != nil {
			return Result{}, fmt.Errorf("clearing store on model change: %w", err)
		}
		manifest.Clear()
		result.ModelReset = true
	}

	indexable, err := discover(s.Root)
	if err != nil {
		return Result{}, fmt.Errorf("discovering knowledge files: %w", err)
	}

	hashes, err := hashAll(ctx, s.Root, indexable)
	if err != nil {
		return Result{}, fmt.Errorf("hashing knowledge files: %w", err)
	}

	toIndex, toRemove := partition(hashes, manifest)

	existingFiles, err := s.Store.ListFiles(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("listing stored files: %w", err)
	}
	for _, f := range existingFiles {
		if _, stillIndexable := hashes[f.Path]; !stillIndexable {
			toRemove = appendUnique(toRemove, f.Path)
		}
	}

	for _, relPath := range toRemove {
		if err := s.Store.RemoveFile(ctx, relPath); err != nil {
			return Result{}, fmt.Errorf("removing %s from store: %w", relPath, err)
		}
		delete(manifest.Files, relPath)
	}
	result.Removed = toRemove

	for _, relPath := range toIndex {
		if err := s.indexFile(ctx, relPath); err != nil {
			return Result{}, fmt.Errorf("indexing %s: %w", relPath, err)
		}
		manifest.Files[relPath] = hashes[relPath]
	}
	result.Indexed = toIndex
	result.Unchanged = len(indexable) - len(toIndex)
	result.Changed = len(toIndex) > 0 || len(toRemove) > 0 || result.ModelReset

	// Only touch the manifest and store metadata when something actually
	// changed, so a no-op sync is a true no-op: lastIndexed must not move
	// on a call that indexed, removed, and reset nothing (spec.md §8).
	if result.Changed {
		manifest.LastIndexed = time.Now().UTC()
		if err := manifest.Save(manifestPath); err != nil {
			return Result{}, fmt.Errorf("saving manifest: %w", err)
		}
		if err := s.Store.SetModelID(ctx, currentModel); err != nil {
			return Result{}, fmt.Errorf("persisting model id: %w", err)
		}
	}

	return result, nil
}

// EnsureIndexFresh is the fast path used before every search: identical to
// SyncProject, but reports whether any work was actually done via
// Result.Changed so callers can skip logging a no-op sync.
func (s *Syncer) EnsureIndexFresh(ctx context.Context) (Result, error) {
	return s.SyncProject(ctx)
}

// Reset clears the store and the manifest, forcing the next SyncProject
// call to reindex every indexable file from scratch. Used by the
// `index --force` CLI flag and the `index_knowledge` tool's force input.
func (s *Syncer) Reset(ctx context.Context) error {
	if err := s.Store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	manifestPath := project.ManifestPath(s.Root)
	manifest, err := project.LoadManifest(manifestPath)
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}
	manifest.Clear()
	if err := manifest.Save(manifestPath); err != nil {
		return fmt.Errorf("saving cleared manifest: %w", err)
	}
	return nil
}

func (s *Syncer) indexFile(ctx context.Context, relPath string) error {
	content, err := os.ReadFile(filepath.Join(s.Root, relPath))
	if err != nil {
		// File vanished mid-sync; skip it, matching spec.md §7's policy for
		// file read errors. It still appears in this sync's Indexed result
		// and its discovery-time hash is recorded in the manifest; the next
		// sync no longer discovers it and reconciles via toRemove.
		slog.Warn("skipping file that vanished during sync", slog.String("path", relPath), slog.String("error", err.Error()))
		return nil
	}

	parsed := chunk.Parse(relPath, string(content))
	if len(parsed.Chunks) == 0 {
		return nil
	}

	texts := make([]string, len(parsed.Chunks))
	for i, c := range parsed.Chunks {
		texts[i] = c.Content
	}

	vectors, err := embedInBatches(ctx, s.Embedder, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}

	sourceType := store.SourceContext
	if parsed.IsSkill {
		sourceType = store.SourceSkill
	}

	importance := 5
	if parsed.Importance != nil {
		importance = *parsed.Importance
	}

	chunks := make([]store.Chunk, len(parsed.Chunks))
	for i, c := range parsed.Chunks {
		chunks[i] = store.Chunk{
			ID:          c.ID,
			SourceFile:  relPath,
			SourceType:  sourceType,
			Content:     c.Content,
			Heading:     c.Heading,
			Type:        string(c.Type),
			Priority:    c.Priority,
			SectionPath: c.Metadata["section_path"],
			Vector:      vectors[i],
		}
	}

	f := store.File{
		Path:       relPath,
		Hash:       normalize.Hash(string(content)),
		SourceType: sourceType,
		Importance: importance,
	}
	return s.Store.UpsertFile(ctx, f, chunks)
}

// embedInBatches splits texts into DefaultBatchSize-sized groups before
// calling EmbedBatch, matching spec.md §5's batch-size resource limit.
func embedInBatches(ctx context.Context, embedder embed.Embedder, texts []string) ([][]float32, error) {
	var all [][]float32
	for start := 0; start < len(texts); start += embed.DefaultBatchSize {
		end := start + embed.DefaultBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}
	return all, nil
}

// discover walks root/knowledge, pruning skipDirs, and returns the set of
// project-relative paths classify.IsIndexable accepts.
func discover(root string) ([]string, error) {
	knowledgeDir := project.KnowledgeDir(root)
	if _, err := os.Stat(knowledgeDir); os.IsNotExist(err) {
		return nil, nil
	}

	var found []string
	err := filepath.WalkDir(knowledgeDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, continue the walk
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if classify.IsIndexable(rel) {
			found = append(found, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}

// hashAll computes normalize.Hash for each discovered file, bounded by
// hashConcurrency concurrent readers.
func hashAll(ctx context.Context, root string, relPaths []string) (map[string]string, error) {
	hashes := make(map[string]string, len(relPaths))
	if len(relPaths) == 0 {
		return hashes, nil
	}

	var mu stdsync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, hashConcurrency)

	for _, relPath := range relPaths {
		relPath := relPath
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			content, err := os.ReadFile(filepath.Join(root, relPath))
			if err != nil {
				// Vanished between discovery and hashing; simply absent
				// from the result, reconciled on the next sync.
				return nil
			}
			h := normalize.Hash(string(content))

			mu.Lock()
			hashes[relPath] = h
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hashes, nil
}

// partition implements spec.md §4.C6 step 3's set algebra.
func partition(hashes map[string]string, manifest *project.Manifest) (toIndex, toRemove []string) {
	for relPath, h := range hashes {
		if stored, ok := manifest.Files[relPath]; !ok || stored != h {
			toIndex = append(toIndex, relPath)
		}
	}
	for relPath := range manifest.Files {
		if _, ok := hashes[relPath]; !ok {
			toRemove = append(toRemove, relPath)
		}
	}
	sort.Strings(toIndex)
	sort.Strings(toRemove)
	return toIndex, toRemove
}

func appendUnique(paths []string, p string) []string {
	for _, existing := range paths {
		if existing == p {
			return paths
		}
	}
	return append(paths, p)
}
