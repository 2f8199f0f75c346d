package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mwillard/memoryforge/internal/embed"
	"github.com/mwillard/memoryforge/internal/project"
)

// storeDirFor returns the regenerable state directory preflight should
// verify is writable, without importing internal/project's other
// project-root-discovery concerns into this package's public surface.
func storeDirFor(projectRoot string) string {
	return project.StoreDir(projectRoot)
}

// CheckKnowledgeRoot checks that <projectRoot>/knowledge exists, since an
// index run over a missing directory silently indexes nothing.
func (c *Checker) CheckKnowledgeRoot(projectRoot string) CheckResult {
	result := CheckResult{
		Name:     "knowledge_root",
		Required: true,
	}

	dir := project.KnowledgeDir(projectRoot)
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s does not exist", dir)
		result.Details = "Create it and add markdown files before running 'memoryforge index'"
		return result
	}
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot stat %s: %v", dir, err)
		return result
	}
	if !info.IsDir() {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s exists but is not a directory", dir)
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%s exists", filepath.Base(dir))
	return result
}

// CheckEmbedderReachable checks whether the given embedder's backend is
// available. Never required, so this is always a warning, never a failure.
// Nothing switches to the static embedder automatically: with an
// unreachable Ollama, indexing and search fail until it is reachable or the
// static provider is configured.
func (c *Checker) CheckEmbedderReachable(ctx context.Context, embedder embed.Embedder) CheckResult {
	result := CheckResult{
		Name:     "embedder_reachable",
		Required: false,
	}

	if embedder.Available(ctx) {
		result.Status = StatusPass
		result.Message = fmt.Sprintf("%s reachable", embedder.ModelID())
		return result
	}

	result.Status = StatusWarn
	result.Message = fmt.Sprintf("%s unreachable (indexing and search need it unless the static provider is configured)", embedder.ModelID())
	return result
}
