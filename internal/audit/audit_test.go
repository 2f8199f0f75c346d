package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestRun_IgnoresNonAuditableFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "knowledge/a.md", strings.Repeat("x", 10000))

	report, err := Run(root)
	require.NoError(t, err)
	assert.Empty(t, report.Files)
}

func TestRun_ClassifiesClaudeMDTiers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "CLAUDE.md", strings.Repeat("x", 500*4+4)) // > 500 tokens

	report, err := Run(root)
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, TierWarning, report.Files[0].Tier)
}

func TestRun_ClassifiesClaudeMDCritical(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "CLAUDE.md", strings.Repeat("x", 1000*4+4))

	report, err := Run(root)
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, TierCritical, report.Files[0].Tier)
}

func TestRun_ClassifiesSkillMDWithLowerThresholds(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".claude/skills/foo/SKILL.md", strings.Repeat("x", 300*4+4))

	report, err := Run(root)
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, TierWarning, report.Files[0].Tier)
}

func TestRun_SumTierAccountsAcrossAllFiles(t *testing.T) {
	root := t.TempDir()
	// Five files, each well under any individual threshold, whose combined
	// estimated tokens exceed the sum-of-autoload warning threshold.
	for i := 0; i < 5; i++ {
		writeFile(t, root, filepath.Join(".claude", "notes", strings.Repeat("n", i+1)+".md"), strings.Repeat("x", 500*4))
	}

	report, err := Run(root)
	require.NoError(t, err)
	assert.Equal(t, TierWarning, report.SumTier)
}

func TestRun_EmptyProjectYieldsOKReport(t *testing.T) {
	root := t.TempDir()
	report, err := Run(root)
	require.NoError(t, err)
	assert.Empty(t, report.Files)
	assert.Equal(t, TierOK, report.SumTier)
}
