package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwillard/memoryforge/internal/embed"
	"github.com/mwillard/memoryforge/internal/project"
	"github.com/mwillard/memoryforge/internal/store"
)

func newTestSyncer(t *testing.T, root string) *Syncer {
	t.Helper()
	s, err := store.Open(project.IndexDBPath(root))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	embedder := embed.NewStaticEmbedder()
	t.Cleanup(func() { _ = embedder.Close() })

	return &Syncer{Store: s, Embedder: embedder, Root: root}
}

func writeKnowledgeFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestSyncProject_IndexesNewFiles(t *testing.T) {
	root := t.TempDir()
	writeKnowledgeFile(t, root, "knowledge/a.md", "# Hello\n\nSome context content here.\n")

	syncer := newTestSyncer(t, root)
	result, err := syncer.SyncProject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"knowledge/a.md"}, result.Indexed)
	assert.True(t, result.Changed)

	chunks, err := syncer.Store.ListChunks(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)

	manifest, err := project.LoadManifest(project.ManifestPath(root))
	require.NoError(t, err)
	assert.Contains(t, manifest.Files, "knowledge/a.md")
}

func TestSyncProject_IsIdempotentWhenNothingChanges(t *testing.T) {
	root := t.TempDir()
	writeKnowledgeFile(t, root, "knowledge/a.md", "# Hello\n\nSome context content here.\n")

	syncer := newTestSyncer(t, root)
	ctx := context.Background()
	_, err := syncer.SyncProject(ctx)
	require.NoError(t, err)

	manifestPath := project.ManifestPath(root)
	before, err := project.LoadManifest(manifestPath)
	require.NoError(t, err)

	result, err := syncer.SyncProject(ctx)
	require.NoError(t, err)
	assert.Empty(t, result.Indexed)
	assert.Empty(t, result.Removed)
	assert.False(t, result.Changed)

	after, err := project.LoadManifest(manifestPath)
	require.NoError(t, err)
	assert.True(t, before.LastIndexed.Equal(after.LastIndexed),
		"a sync pass with nothing to do must not move lastIndexed")
}

func TestSyncProject_RemovesDeletedFiles(t *testing.T) {
	root := t.TempDir()
	writeKnowledgeFile(t, root, "knowledge/a.md", "# Hello\n\nSome context content here.\n")

	syncer := newTestSyncer(t, root)
	ctx := context.Background()
	_, err := syncer.SyncProject(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "knowledge/a.md")))

	result, err := syncer.SyncProject(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"knowledge/a.md"}, result.Removed)

	chunks, err := syncer.Store.ListChunks(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	manifest, err := project.LoadManifest(project.ManifestPath(root))
	require.NoError(t, err)
	assert.NotContains(t, manifest.Files, "knowledge/a.md")
}

func TestSyncProject_ReindexesChangedFiles(t *testing.T) {
	root := t.TempDir()
	writeKnowledgeFile(t, root, "knowledge/a.md", "# Hello\n\noriginal content\n")

	syncer := newTestSyncer(t, root)
	ctx := context.Background()
	_, err := syncer.SyncProject(ctx)
	require.NoError(t, err)

	writeKnowledgeFile(t, root, "knowledge/a.md", "# Hello\n\nchanged content\n")
	result, err := syncer.SyncProject(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"knowledge/a.md"}, result.Indexed)
}

func TestSyncProject_SkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	writeKnowledgeFile(t, root, "knowledge/node_modules/dep.md", "# ignored\n\nshould not be indexed\n")
	writeKnowledgeFile(t, root, "knowledge/a.md", "# kept\n\nshould be indexed\n")

	syncer := newTestSyncer(t, root)
	result, err := syncer.SyncProject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"knowledge/a.md"}, result.Indexed)
}

func TestSyncProject_ModelChange_ClearsStoreAndManifest(t *testing.T) {
	root := t.TempDir()
	writeKnowledgeFile(t, root, "knowledge/a.md", "# Hello\n\nSome context content here.\n")

	s, err := store.Open(project.IndexDBPath(root))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	embedder := embed.NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	syncer := &Syncer{Store: s, Embedder: embedder, Root: root}
	ctx := context.Background()
	_, err = syncer.SyncProject(ctx)
	require.NoError(t, err)

	require.NoError(t, s.SetModelID(ctx, "some-other-model"))

	result, err := syncer.SyncProject(ctx)
	require.NoError(t, err)
	assert.True(t, result.ModelReset)
	assert.Equal(t, []string{"knowledge/a.md"}, result.Indexed)

	meta, err := s.GetMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, embedder.ModelID(), meta["model_id"])
}

func TestReset_ClearsStoreAndManifestForNextSync(t *testing.T) {
	root := t.TempDir()
	writeKnowledgeFile(t, root, "knowledge/a.md", "# Hello\n\nSome context content here.\n")

	syncer := newTestSyncer(t, root)
	ctx := context.Background()
	_, err := syncer.SyncProject(ctx)
	require.NoError(t, err)

	require.NoError(t, syncer.Reset(ctx))

	chunks, err := syncer.Store.ListChunks(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	manifest, err := project.LoadManifest(project.ManifestPath(root))
	require.NoError(t, err)
	assert.Empty(t, manifest.Files)

	result, err := syncer.SyncProject(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"knowledge/a.md"}, result.Indexed)
}

func TestSyncProject_EmptyKnowledgeDir_NoError(t *testing.T) {
	root := t.TempDir()
	syncer := newTestSyncer(t, root)
	result, err := syncer.SyncProject(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Indexed)
	assert.False(t, result.Changed)
}
