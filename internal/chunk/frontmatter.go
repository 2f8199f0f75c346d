package chunk

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontmatterPattern matches a YAML block delimited by --- at file start.
var frontmatterPattern = regexp.MustCompile(`(?s)^---\r?\n(.+?)\r?\n---\r?\n?`)

// frontmatter holds the recognized keys from spec.md §6.2. Unrecognized
// keys are dropped when the block is decoded.
type frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Importance  *int   `yaml:"importance"`
	Author      string `yaml:"author"`
	Version     string `yaml:"version"`
	Date        string `yaml:"date"`
	Deprecated  bool   `yaml:"deprecated"`
}

// extractFrontmatter splits off a leading YAML frontmatter block, if any.
// Malformed frontmatter is ignored silently — the block text is left as
// part of the body and no frontmatter is reported.
func extractFrontmatter(content string) (fm *frontmatter, block string, body string) {
	match := frontmatterPattern.FindStringSubmatch(content)
	if match == nil {
		return nil, "", content
	}

	var parsed frontmatter
	if err := yaml.Unmarshal([]byte(match[1]), &parsed); err != nil {
		return nil, "", content
	}

	return &parsed, match[0], content[len(match[0]):]
}

// isSkill reports whether parsed frontmatter classifies the file as a
// skill: both name and description are required.
func (f *frontmatter) isSkill() bool {
	return f != nil && strings.TrimSpace(f.Name) != "" && strings.TrimSpace(f.Description) != ""
}
