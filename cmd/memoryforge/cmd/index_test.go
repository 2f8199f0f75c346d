package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexCmd_IndexesNewFiles(t *testing.T) {
	root := setupTestProject(t)
	writeKnowledgeFile(t, root, "knowledge/a.md", "# Hello\n\nSome context content here.\n")

	out, err := runCLI(t, "index")

	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 1 file(s)")
	assert.Contains(t, out, "knowledge/a.md")
	assert.FileExists(t, filepath.Join(root, ".memory-forge", "index.db"))
}

func TestIndexCmd_SecondRunIsUnchanged(t *testing.T) {
	root := setupTestProject(t)
	writeKnowledgeFile(t, root, "knowledge/a.md", "# Hello\n\nSome context content here.\n")

	_, err := runCLI(t, "index")
	require.NoError(t, err)

	out, err := runCLI(t, "index")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 0 file(s)")
	assert.Contains(t, out, "1 unchanged")
}

func TestIndexCmd_ForceRebuildsFromScratch(t *testing.T) {
	root := setupTestProject(t)
	writeKnowledgeFile(t, root, "knowledge/a.md", "# Hello\n\nSome context content here.\n")

	_, err := runCLI(t, "index")
	require.NoError(t, err)

	out, err := runCLI(t, "index", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 1 file(s)")
}

func TestIndexCmd_RemovesDeletedFiles(t *testing.T) {
	root := setupTestProject(t)
	writeKnowledgeFile(t, root, "knowledge/a.md", "# Hello\n\nSome context content here.\n")

	_, err := runCLI(t, "index")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "knowledge/a.md")))

	out, err := runCLI(t, "index")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 1")
}
