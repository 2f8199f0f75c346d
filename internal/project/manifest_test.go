package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifest_MissingFileYieldsEmptyManifest(t *testing.T) {
	m, err := LoadManifest(filepath.Join(t.TempDir(), "manifest.json"))
	require.NoError(t, err)
	assert.Empty(t, m.Files)
}

func TestLoadManifest_CorruptedFileYieldsEmptyManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Empty(t, m.Files)
}

func TestManifest_SaveThenLoad_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "manifest.json")
	m := NewManifest()
	m.Files["knowledge/a.md"] = "hash-a"
	m.Files["knowledge/b.md"] = "hash-b"
	m.LastIndexed = time.Now().UTC().Truncate(time.Second)

	require.NoError(t, m.Save(path))

	loaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, m.Files, loaded.Files)
	assert.True(t, m.LastIndexed.Equal(loaded.LastIndexed))
}

func TestManifest_Clear_EmptiesFilesMap(t *testing.T) {
	m := NewManifest()
	m.Files["knowledge/a.md"] = "hash-a"
	m.Clear()
	assert.Empty(t, m.Files)
}
