package audit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mwillard/memoryforge/internal/store"
)

// defaultProtectImportance is the importance floor below which a file is a
// retention candidate at all (spec.md §4.C8).
const defaultProtectImportance = 8

// RetentionConfig configures one forgetStale pass. At least one of MaxFiles
// or MaxAgeDays must be set by the caller; ForgetStale does not enforce
// this itself, since the tool-surface layer is responsible for rejecting
// an empty request (spec.md §6.3).
type RetentionConfig struct {
	MaxFiles          int // 0 means unset
	MaxAgeDays        int // 0 means unset
	ProtectImportance int // 0 means use defaultProtectImportance
}

// RetentionResult reports which files were forgotten.
type RetentionResult struct {
	Forgotten []string
}

// ForgetStale removes files from the index (and their chunks) per
// spec.md §4.C8's algorithm: importance-protected files are never
// candidates; remaining candidates are marked stale by age and/or by
// MaxFiles, which forgets at most that many candidates, least-important
// first, then least-used, then oldest-accessed. The union is deleted in a
// single transaction. The filesystem is never touched.
func ForgetStale(ctx context.Context, s *store.Store, cfg RetentionConfig) (RetentionResult, error) {
	protectImportance := cfg.ProtectImportance
	if protectImportance == 0 {
		protectImportance = defaultProtectImportance
	}

	files, err := s.ListFiles(ctx)
	if err != nil {
		return RetentionResult{}, fmt.Errorf("listing files: %w", err)
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
		// MaxFiles caps how many candidates this pass may forget, not how
		// many may remain: protected files are never part of the budget,
		// so it is not reduced by their count (see DESIGN.md's retention
		// open-question decision).
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
					return a.Importance < b.Importance // least-important first
				}
				if a.AccessCount != b.AccessCount {
					return a.AccessCount < b.AccessCount // then least-used
				}
				return a.LastAccessed.Before(b.LastAccessed) // then oldest-accessed
			})
			for _, f := range ordered[:numStale] {
				stale[f.Path] = true
			}
		}
	}

	if len(stale) == 0 {
		return RetentionResult{}, nil
	}

	forgotten := make([]string, 0, len(stale))
	for path := range stale {
		forgotten = append(forgotten, path)
	}
	sort.Strings(forgotten)

	if err := s.RemoveFiles(ctx, forgotten); err != nil {
		return RetentionResult{}, fmt.Errorf("removing stale files: %w", err)
	}

	return RetentionResult{Forgotten: forgotten}, nil
}
