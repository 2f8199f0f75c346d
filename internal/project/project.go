// Package project locates a project root and its .memory-forge/ paths, and
// owns the content manifest that drives incremental synchronization
// (spec.md §4.C6, §6.1).
package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// storeDirName is the regenerable per-project state directory; it must be
// gitignored, since it holds nothing but derived artifacts.
const storeDirName = ".memory-forge"

// KnowledgeDirName is the subdirectory under a project root holding the
// indexable markdown corpus.
const KnowledgeDirName = "knowledge"

// FindRoot walks up from startDir looking for a .git directory or an
// existing .memory-forge state directory. If neither is found by the
// filesystem root, it returns the absolute form of startDir: a brand-new
// project is still a valid root, just one that hasn't been synced yet.
func FindRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path for %s: %w", startDir, err)
	}

	current := absDir
	for {
		if dirExists(filepath.Join(current, ".git")) {
			return current, nil
		}
		if dirExists(filepath.Join(current, storeDirName)) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return absDir, nil
		}
		current = parent
	}
}

// StoreDir returns <root>/.memory-forge.
func StoreDir(root string) string {
	return filepath.Join(root, storeDirName)
}

// IndexDBPath returns <root>/.memory-forge/index.db.
func IndexDBPath(root string) string {
	return filepath.Join(StoreDir(root), "index.db")
}

// ManifestPath returns <root>/.memory-forge/manifest.json.
func ManifestPath(root string) string {
	return filepath.Join(StoreDir(root), "manifest.json")
}

// KnowledgeDir returns <root>/knowledge.
func KnowledgeDir(root string) string {
	return filepath.Join(root, KnowledgeDirName)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
