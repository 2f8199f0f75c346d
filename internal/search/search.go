// Package search implements cosine-similarity retrieval with a
// priority-weighted boost over the chunk store (spec.md §4.C7). Every call
// first ensures the index is fresh; there is no other staleness guard.
package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/mwillard/memoryforge/internal/store"
	"github.com/mwillard/memoryforge/internal/sync"
)

// DefaultLimit and DefaultThreshold are spec.md §4.C7's stated defaults.
const (
	DefaultLimit     = 5
	DefaultThreshold = 0.3

	// overfetchMultiplier is applied when UniqueFiles folding may discard
	// same-file chunks, so the final result still has room to reach Limit.
	overfetchMultiplier = 3
)

// Options configures one Query call. Zero values are replaced by the
// package defaults inside Query except where noted.
type Options struct {
	Limit          int
	Threshold      float64
	SourceTypes    []store.SourceType
	UniqueFiles    bool
	IncludeContent bool
}

// Result is one ranked chunk, or a file-folded representative of one when
// Options.UniqueFiles is set.
type Result struct {
	SourceFile  string
	SourceType  store.SourceType
	Heading     string
	SectionPath string
	Type        string
	Priority    int
	Score       float64
	Content     string // empty when IncludeContent is false
}

// Searcher ties a store and embedder to one project's freshness-checked
// query path.
type Searcher struct {
	Store  *store.Store
	Syncer *sync.Syncer
}

// Query runs the full §4.C7 algorithm: freshness check, query embedding,
// cosine + priority scoring, threshold filter, sort, optional unique-file
// folding, then touch() accounting on the returned files.
func (s *Searcher) Query(ctx context.Context, queryText string, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}

	if _, err := s.Syncer.EnsureIndexFresh(ctx); err != nil {
		return nil, fmt.Errorf("ensuring index freshness: %w", err)
	}

	queryVector, err := s.Syncer.Embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	chunks, err := s.Store.ListChunks(ctx, opts.SourceTypes)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	fetchLimit := opts.Limit
	if opts.UniqueFiles {
		fetchLimit = opts.Limit * overfetchMultiplier
	}

	scored := make([]Result, 0, len(chunks))
	for _, c := range chunks {
		sim := dot(queryVector, c.Vector)
		adjusted := sim * (1 + 0.2*float64(c.Priority)/10)
		if adjusted < opts.Threshold {
			continue
		}
		scored = append(scored, Result{
			SourceFile:  c.SourceFile,
			SourceType:  c.SourceType,
			Heading:     c.Heading,
			SectionPath: c.SectionPath,
			Type:        c.Type,
			Priority:    c.Priority,
			Score:       adjusted,
			Content:     c.Content,
		})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > fetchLimit {
		scored = scored[:fetchLimit]
	}

	if opts.UniqueFiles {
		scored = foldUniqueFiles(scored, opts.Limit)
	}

	touchPaths := distinctSourceFiles(scored)
	if err := s.Store.Touch(ctx, touchPaths); err != nil {
		return nil, fmt.Errorf("recording access: %w", err)
	}

	if !opts.IncludeContent {
		for i := range scored {
			scored[i].Content = ""
		}
	}

	return scored, nil
}

// dot computes the dot product of two equal-length unit vectors, which
// equals their cosine similarity.
func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// foldUniqueFiles keeps only the top-scored chunk per source_file, then
// truncates to limit. Input must already be sorted descending by score.
func foldUniqueFiles(results []Result, limit int) []Result {
	seen := make(map[string]bool, len(results))
	folded := make([]Result, 0, limit)
	for _, r := range results {
		if seen[r.SourceFile] {
			continue
		}
		seen[r.SourceFile] = true
		folded = append(folded, r)
		if len(folded) == limit {
			break
		}
	}
	return folded
}

func distinctSourceFiles(results []Result) []string {
	seen := make(map[string]bool, len(results))
	var paths []string
	for _, r := range results {
		if seen[r.SourceFile] {
			continue
		}
		seen[r.SourceFile] = true
		paths = append(paths, r.SourceFile)
	}
	return paths
}
