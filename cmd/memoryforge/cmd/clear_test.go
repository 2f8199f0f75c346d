package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearCmd_RefusesWithoutYes(t *testing.T) {
	setupTestProject(t)

	_, err := runCLI(t, "clear")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestClearCmd_ClearsWithYes(t *testing.T) {
	root := setupTestProject(t)
	writeKnowledgeFile(t, root, "knowledge/a.md", "# Hello\n\nSome context content here.\n")

	_, err := runCLI(t, "index")
	require.NoError(t, err)

	out, err := runCLI(t, "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared")

	listOut, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, listOut, "No files indexed yet")
}
