package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleChunk(id string, vec []float32) Chunk {
	return Chunk{
		ID:          id,
		SourceType:  SourceContext,
		Content:     "some chunk content",
		Heading:     "Intro",
		Type:        "section",
		Priority:    5,
		SectionPath: "Intro",
		Vector:      vec,
	}
}

func TestStore_UpsertFile_ThenGetFile_RoundTrips(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	f := File{Path: "docs/a.md", Hash: "abc123", SourceType: SourceContext, Importance: 5}
	chunks := []Chunk{sampleChunk("a.md#0", []float32{0.1, 0.2, 0.3})}

	require.NoError(t, s.UpsertFile(ctx, f, chunks))

	got, ok, err := s.GetFile(ctx, "docs/a.md")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc123", got.Hash)
	assert.Equal(t, SourceContext, got.SourceType)
	assert.False(t, got.IndexedAt.IsZero())

	all, err := s.ListChunks(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "docs/a.md", all[0].SourceFile)
	assert.InDeltaSlice(t, []float32{0.1, 0.2, 0.3}, all[0].Vector, 1e-6)
}

func TestStore_UpsertFile_ReplacesPriorChunks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	f := File{Path: "docs/a.md", Hash: "v1", SourceType: SourceContext}
	require.NoError(t, s.UpsertFile(ctx, f, []Chunk{
		sampleChunk("a.md#0", []float32{0.1}),
		sampleChunk("a.md#1", []float32{0.2}),
	}))

	f.Hash = "v2"
	require.NoError(t, s.UpsertFile(ctx, f, []Chunk{sampleChunk("a.md#0", []float32{0.9})}))

	chunks, err := s.ListChunks(ctx, nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, []float32{0.9}, chunks[0].Vector)

	got, _, err := s.GetFile(ctx, "docs/a.md")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Hash)
}

func TestStore_RemoveFile_DeletesFileAndChunks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	f := File{Path: "docs/a.md", Hash: "abc", SourceType: SourceContext}
	require.NoError(t, s.UpsertFile(ctx, f, []Chunk{sampleChunk("a.md#0", []float32{0.1})}))

	require.NoError(t, s.RemoveFile(ctx, "docs/a.md"))

	_, ok, err := s.GetFile(ctx, "docs/a.md")
	require.NoError(t, err)
	assert.False(t, ok)

	chunks, err := s.ListChunks(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestStore_RemoveFiles_DeletesAllInOneTransaction(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertFile(ctx, File{Path: "a.md", SourceType: SourceContext},
		[]Chunk{sampleChunk("a.md#0", []float32{0.1})}))
	require.NoError(t, s.UpsertFile(ctx, File{Path: "b.md", SourceType: SourceContext},
		[]Chunk{sampleChunk("b.md#0", []float32{0.2})}))
	require.NoError(t, s.UpsertFile(ctx, File{Path: "c.md", SourceType: SourceContext},
		[]Chunk{sampleChunk("c.md#0", []float32{0.3})}))

	require.NoError(t, s.RemoveFiles(ctx, []string{"a.md", "b.md"}))

	files, err := s.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "c.md", files[0].Path)
}

func TestStore_RemoveFiles_EmptyIsNoOp(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.RemoveFiles(context.Background(), nil))
}

func TestStore_ListChunks_FiltersBySourceType(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertFile(ctx, File{Path: "skill.md", SourceType: SourceSkill},
		[]Chunk{{ID: "skill.md#0", SourceType: SourceSkill, Content: "x", Vector: []float32{0.1}}}))
	require.NoError(t, s.UpsertFile(ctx, File{Path: "ctx.md", SourceType: SourceContext},
		[]Chunk{{ID: "ctx.md#0", SourceType: SourceContext, Content: "y", Vector: []float32{0.2}}}))

	skills, err := s.ListChunks(ctx, []SourceType{SourceSkill})
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Equal(t, "skill.md", skills[0].SourceFile)

	all, err := s.ListChunks(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStore_Touch_IncrementsAccessCountAndSetsLastAccessed(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertFile(ctx, File{Path: "a.md", SourceType: SourceContext}, nil))
	require.NoError(t, s.Touch(ctx, []string{"a.md"}))
	require.NoError(t, s.Touch(ctx, []string{"a.md"}))

	got, ok, err := s.GetFile(ctx, "a.md")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.AccessCount)
	assert.WithinDuration(t, time.Now(), got.LastAccessed, time.Minute)
}

func TestStore_SetModelID_ThenGetMetadata(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetModelID(ctx, "embeddinggemma"))
	meta, err := s.GetMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "embeddinggemma", meta["model_id"])

	require.NoError(t, s.SetModelID(ctx, "nomic-embed-text"))
	meta, err = s.GetMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", meta["model_id"])
}

func TestStore_Clear_RemovesAllFilesAndChunksButKeepsMetadata(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetModelID(ctx, "embeddinggemma"))
	require.NoError(t, s.UpsertFile(ctx, File{Path: "a.md", SourceType: SourceContext},
		[]Chunk{sampleChunk("a.md#0", []float32{0.1})}))

	require.NoError(t, s.Clear(ctx))

	files, err := s.ListFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)

	chunks, err := s.ListChunks(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	meta, err := s.GetMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "embeddinggemma", meta["model_id"])
}

func TestStore_Close_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestStore_OperationsAfterClose_Error(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.ListFiles(context.Background())
	assert.Error(t, err)
}

func TestOpen_ReopensExistingStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.UpsertFile(context.Background(), File{Path: "a.md", SourceType: SourceContext}, nil))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	got, ok, err := s2.GetFile(context.Background(), "a.md")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a.md", got.Path)
}
