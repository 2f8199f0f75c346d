package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mwillard/memoryforge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsMatchSpec(t *testing.T) {
	d := config.Defaults()
	assert.Equal(t, 5, d.Search.Limit)
	assert.Equal(t, 0.3, d.Search.Threshold)
	assert.Equal(t, 8, d.Retention.ProtectImportance)
	assert.Equal(t, 500, d.Audit.ClaudeWarn)
	assert.Equal(t, 1000, d.Audit.ClaudeCrit)
	assert.Equal(t, 300, d.Audit.SkillWarn)
	assert.Equal(t, 600, d.Audit.SkillCrit)
	assert.Equal(t, 2000, d.Audit.SumWarn)
	assert.Equal(t, 5000, d.Audit.SumCrit)
}

func TestLoadWithNoProjectConfigReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.Embedding.Provider)
	assert.Equal(t, dir, cfg.ProjectRoot)
}

func TestLoadAppliesProjectOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".memory-forge"), 0o755))
	yamlBody := "embedding:\n  model: custom-model\nsearch:\n  limit: 10\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigRelPath), []byte(yamlBody), 0o644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "custom-model", cfg.Embedding.Model)
	assert.Equal(t, 10, cfg.Search.Limit)
	assert.Equal(t, 0.3, cfg.Search.Threshold, "unset fields keep defaults")
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MEMORY_FORGE_SEARCH_LIMIT", "20")
	t.Setenv("MEMORY_FORGE_EMBEDDER_HOST", "http://remote:11434")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Search.Limit)
	assert.Equal(t, "http://remote:11434", cfg.Embedding.Host)
}

func TestEnvOverridesBeatProjectFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".memory-forge"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigRelPath), []byte("search:\n  limit: 10\n"), 0o644))
	t.Setenv("MEMORY_FORGE_SEARCH_LIMIT", "99")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.Search.Limit)
}
