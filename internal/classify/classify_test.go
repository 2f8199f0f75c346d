package classify_test

import (
	"testing"

	"github.com/mwillard/memoryforge/internal/classify"
	"github.com/stretchr/testify/assert"
)

func TestIsIndexable(t *testing.T) {
	cases := map[string]bool{
		"knowledge/api-v2.0.md":      true,
		"knowledge/sub/dir/notes.md": true,
		"CLAUDE.md":                  false,
		".claude/skills/x/SKILL.md":  false,
		"knowledge/api-v2.0.txt":     false,
		"README.md":                  false,
		"./knowledge/api-v2.0.md":    true,
	}
	for p, want := range cases {
		assert.Equal(t, want, classify.IsIndexable(p), "IsIndexable(%q)", p)
	}
}

func TestIsAuditable(t *testing.T) {
	cases := map[string]bool{
		"CLAUDE.md":                  true,
		"AGENTS.md":                  true,
		".opencode/skill/y/SKILL.md": true,
		".claude/skills/x/SKILL.md":  true,
		".codex/notes.md":            true,
		"knowledge/CLAUDE.md":        false,
		"knowledge/api-v2.0.md":      false,
		"src/CLAUDE.md":              false,
		"knowledge/.claude/notes.md": false,
	}
	for p, want := range cases {
		assert.Equal(t, want, classify.IsAuditable(p), "IsAuditable(%q)", p)
	}
}

func TestDisjoint(t *testing.T) {
	paths := []string{
		"knowledge/api-v2.0.md",
		"CLAUDE.md",
		"AGENTS.md",
		".claude/skills/x/SKILL.md",
		".codex/notes.md",
		".opencode/skill/y/SKILL.md",
		"README.md",
		"knowledge/.claude/notes.md",
	}
	for _, p := range paths {
		assert.False(t, classify.IsIndexable(p) && classify.IsAuditable(p), "disjointness violated for %q", p)
	}
}
