package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestProject creates an empty project root wired to the static
// embedder (deterministic, no network) via MEMORY_FORGE_PROJECT_ROOT and
// MEMORY_FORGE_EMBEDDER_PROVIDER, restoring both on test cleanup.
func setupTestProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	t.Setenv("MEMORY_FORGE_PROJECT_ROOT", root)
	t.Setenv("MEMORY_FORGE_EMBEDDER_PROVIDER", "static")

	return root
}

func writeKnowledgeFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

// runCLI executes the root command with args against a fresh buffer and
// returns its combined stdout/stderr.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
