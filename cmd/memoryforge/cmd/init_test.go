package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCmd_WritesConfigAndKnowledgeDir(t *testing.T) {
	root := setupTestProject(t)

	out, err := runCLI(t, "init")

	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")
	assert.FileExists(t, filepath.Join(root, ".memory-forge", "config.yaml"))
	assert.DirExists(t, filepath.Join(root, "knowledge"))
}

func TestInitCmd_RefusesToOverwriteWithoutForce(t *testing.T) {
	root := setupTestProject(t)

	_, err := runCLI(t, "init")
	require.NoError(t, err)

	configPath := filepath.Join(root, ".memory-forge", "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("custom: true\n"), 0644))

	out, err := runCLI(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "custom: true\n", string(content))
}

func TestInitCmd_ForceOverwritesConfig(t *testing.T) {
	root := setupTestProject(t)

	_, err := runCLI(t, "init")
	require.NoError(t, err)

	configPath := filepath.Join(root, ".memory-forge", "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("custom: true\n"), 0644))

	out, err := runCLI(t, "init", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.NotEqual(t, "custom: true\n", string(content))
}
