package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCmd_ReportsDashboardBeforeIndexing(t *testing.T) {
	setupTestProject(t)

	out, err := runCLI(t, "memory")

	require.NoError(t, err)
	assert.Contains(t, out, "Last synced: never")
}

func TestMemoryCmd_ReportsDashboardAfterIndexing(t *testing.T) {
	root := setupTestProject(t)
	writeKnowledgeFile(t, root, "knowledge/a.md", "# Hello\n\nSome context content here.\n")

	_, err := runCLI(t, "index")
	require.NoError(t, err)

	out, err := runCLI(t, "memory")

	require.NoError(t, err)
	assert.Contains(t, out, "Knowledge: 1 file(s)")
	assert.Contains(t, out, "Autoload audit:")
}
