package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mwillard/memoryforge/internal/audit"
)

func TestToAuditOutput_MapsFindingsAndTiers(t *testing.T) {
	report := audit.Report{
		Files: []audit.FileFinding{
			{Path: "CLAUDE.md", EstimedTokens: 1200, Tier: audit.TierCritical},
			{Path: "AGENTS.md", EstimedTokens: 10, Tier: audit.TierOK},
		},
		TotalTokens: 1210,
		SumTier:     audit.TierOK,
	}

	out := toAuditOutput(report)

	assert.Len(t, out.Files, 2)
	assert.Equal(t, "CLAUDE.md", out.Files[0].Path)
	assert.Equal(t, 1200, out.Files[0].EstimatedTokens)
	assert.Equal(t, "critical", out.Files[0].Tier)
	assert.Equal(t, 1210, out.TotalTokens)
	assert.Equal(t, "ok", out.SumTier)
}

func TestToAuditOutput_Empty(t *testing.T) {
	out := toAuditOutput(audit.Report{})
	assert.Empty(t, out.Files)
	assert.Equal(t, 0, out.TotalTokens)
}
