package mcp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	amerrors "github.com/mwillard/memoryforge/internal/errors"
	"github.com/mwillard/memoryforge/internal/project"
)

// writeKnowledgeFile renders in as a markdown file under knowledge/ and
// writes it, refusing to overwrite an existing file (spec.md §6.3, §7).
// It returns the project-relative path written.
//
// The write itself is atomic: the body lands in a uuid-named temp file in
// the same directory first, then that temp file is hard-linked onto the
// final path. Link fails with EEXIST rather than silently overwriting if a
// concurrent save_knowledge call (or any other writer) has already created
// the target, so two callers racing on the same name can't clobber one
// another or leave a half-written file behind.
func writeKnowledgeFile(root string, in SaveKnowledgeInput) (string, error) {
	name := sanitizeName(in.Name)
	if name == "" {
		return "", amerrors.ValidationError("name is required", nil)
	}

	relPath := filepath.ToSlash(filepath.Join(project.KnowledgeDirName, name+".md"))
	fullPath := filepath.Join(root, filepath.FromSlash(relPath))

	if _, err := os.Stat(fullPath); err == nil {
		return "", amerrors.New(amerrors.ErrCodeInvalidPath, fmt.Sprintf("%s already exists; choose a different name", relPath), nil).
			WithSuggestion("save_knowledge never overwrites an existing file.")
	} else if !os.IsNotExist(err) {
		return "", amerrors.IOError(fmt.Sprintf("checking %s", relPath), err)
	}

	var body string
	switch in.Type {
	case "skill":
		if strings.TrimSpace(in.Description) == "" {
			return "", amerrors.ValidationError("description is required for type=skill", nil)
		}
		body = renderSkill(in)
	case "context":
		body = renderContext(in)
	default:
		return "", amerrors.ValidationError(fmt.Sprintf("type must be \"skill\" or \"context\", got %q", in.Type), nil)
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", amerrors.IOError(fmt.Sprintf("creating directory for %s", relPath), err)
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(fullPath), uuid.NewString()))
	if err := os.WriteFile(tmpPath, []byte(body), 0o644); err != nil {
		return "", amerrors.IOError(fmt.Sprintf("writing %s", relPath), err)
	}
	defer os.Remove(tmpPath)

	if err := os.Link(tmpPath, fullPath); err != nil {
		if os.IsExist(err) {
			return "", amerrors.New(amerrors.ErrCodeInvalidPath, fmt.Sprintf("%s already exists; choose a different name", relPath), nil).
				WithSuggestion("save_knowledge never overwrites an existing file.")
		}
		return "", amerrors.IOError(fmt.Sprintf("writing %s", relPath), err)
	}

	return relPath, nil
}

// renderSkill builds a skill markdown file: frontmatter carrying name and
// description (required by internal/chunk's skill classifier, spec.md
// §6.2), followed by the canonical H2 sections internal/chunk recognizes.
func renderSkill(in SaveKnowledgeInput) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "name: %s\n", in.Name)
	fmt.Fprintf(&sb, "description: %s\n", in.Description)
	if in.Importance > 0 {
		fmt.Fprintf(&sb, "importance: %d\n", in.Importance)
	}
	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "# %s\n\n", in.Name)

	if in.Problem != "" {
		fmt.Fprintf(&sb, "## Problem\n\n%s\n\n", in.Problem)
	}
	if in.Trigger != "" {
		fmt.Fprintf(&sb, "## Trigger\n\n%s\n\n", in.Trigger)
	}
	sb.WriteString("## Solution\n\n")
	sb.WriteString(in.Content)
	sb.WriteString("\n")
	return sb.String()
}

// renderContext builds a plain context markdown file: optional importance
// frontmatter, then content verbatim.
func renderContext(in SaveKnowledgeInput) string {
	var sb strings.Builder
	if in.Importance > 0 {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "importance: %d\n", in.Importance)
		sb.WriteString("---\n\n")
	}
	sb.WriteString(in.Content)
	sb.WriteString("\n")
	return sb.String()
}

// sanitizeName strips path separators and traversal segments from a
// caller-supplied name so save_knowledge can never write outside knowledge/.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSuffix(name, ".md")
	base := filepath.Base(name)
	if base == "." || base == ".." || base == "/" {
		return ""
	}
	return base
}
