package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCmd_ReportsCounts(t *testing.T) {
	root := setupTestProject(t)
	writeKnowledgeFile(t, root, "knowledge/a.md", "# Hello\n\nSome context content here.\n")

	_, err := runCLI(t, "index")
	require.NoError(t, err)

	out, err := runCLI(t, "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Files:   1")
}

func TestStatsCmd_JSONOutput(t *testing.T) {
	setupTestProject(t)

	out, err := runCLI(t, "stats", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"file_count"`)
}
