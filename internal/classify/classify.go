// Package classify implements the single chokepoint that decides, for a
// project-relative path, whether it belongs to the indexable knowledge
// corpus, the auditable autoload region, or neither.
package classify

import (
	"path"
	"strings"
)

// knowledgeRoot is the subdirectory under the project root that holds the
// indexable markdown corpus.
const knowledgeRoot = "knowledge/"

// autoloadDirs are the special directories whose contents are loaded
// automatically by AI host tools at session start.
var autoloadDirs = []string{".claude/", ".codex/", ".opencode/"}

// autoloadBasenames are files loaded automatically only when they sit at
// the project root; the same name inside a subdirectory is not autoload.
var autoloadBasenames = []string{"CLAUDE.md", "AGENTS.md"}

// IsIndexable reports whether p (a forward-slash, project-relative path)
// lies under knowledge/ and is a markdown file. Indexable files are the
// only ones the Synchronizer may hand to the Chunker.
func IsIndexable(p string) bool {
	p = cleanRel(p)
	return strings.HasPrefix(p, knowledgeRoot) && strings.HasSuffix(p, ".md")
}

// IsAuditable reports whether p belongs to the autoload region: a root-level
// CLAUDE.md/AGENTS.md, or anything beneath .claude/, .codex/, or .opencode/.
// Auditable files are read for the token audit but are never indexed.
//
// knowledge/ is excluded up front: it's the indexable corpus's own root, so
// an autoload-named directory nested under it (e.g. knowledge/.claude/notes.md)
// stays indexable rather than also becoming auditable - the two classifiers
// must stay mutually exclusive for every path.
func IsAuditable(p string) bool {
	p = cleanRel(p)
	if strings.HasPrefix(p, knowledgeRoot) {
		return false
	}
	base := path.Base(p)
	for _, b := range autoloadBasenames {
		if base == b && !strings.Contains(p, "/") {
			return true
		}
	}
	for _, dir := range autoloadDirs {
		if containsSegment(p, dir) {
			return true
		}
	}
	return false
}

// containsSegment reports whether p contains dir (e.g. ".claude/") as a path
// segment, either at the start of p or immediately after a "/".
func containsSegment(p, dir string) bool {
	if strings.HasPrefix(p, dir) {
		return true
	}
	return strings.Contains(p, "/"+dir)
}

// cleanRel normalizes path separators to forward slashes and strips any
// leading "./" so callers can pass either OS-native or already-relative
// paths interchangeably.
func cleanRel(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	return p
}
