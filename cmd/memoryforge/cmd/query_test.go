package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCmd_FindsIndexedContent(t *testing.T) {
	root := setupTestProject(t)
	writeKnowledgeFile(t, root, "knowledge/auth.md", "# Authentication\n\nToken refresh happens via the refresh endpoint.\n")

	_, err := runCLI(t, "index")
	require.NoError(t, err)

	out, err := runCLI(t, "query", "token refresh endpoint", "--threshold", "0")

	require.NoError(t, err)
	assert.Contains(t, out, "knowledge/auth.md")
}

func TestQueryCmd_JSONOutput(t *testing.T) {
	root := setupTestProject(t)
	writeKnowledgeFile(t, root, "knowledge/auth.md", "# Authentication\n\nToken refresh happens via the refresh endpoint.\n")

	_, err := runCLI(t, "index")
	require.NoError(t, err)

	out, err := runCLI(t, "query", "token refresh endpoint", "--threshold", "0", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"SourceFile"`)
}

func TestQueryCmd_JSONAndContextMutuallyExclusive(t *testing.T) {
	setupTestProject(t)

	_, err := runCLI(t, "query", "anything", "--json", "--context")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestQueryCmd_NoResultsReportsEmpty(t *testing.T) {
	setupTestProject(t)

	out, err := runCLI(t, "query", "nothing indexed yet")

	require.NoError(t, err)
	assert.Contains(t, out, "No knowledge found")
}

func TestQueryCmd_RequiresText(t *testing.T) {
	setupTestProject(t)

	_, err := runCLI(t, "query")

	require.Error(t, err)
}
