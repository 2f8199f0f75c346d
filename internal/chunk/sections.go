package chunk

import (
	"regexp"
	"strings"
)

var headerPattern = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

// section is a span of markdown that starts at a heading line and ends at
// the next heading line of any level. Text before the first heading is
// prepended to the first section's content.
type section struct {
	level      int
	title      string
	headerPath string
	content    string
}

// parseSections splits content into sections at H1-H6 boundaries, tracking
// a heading-path stack so nested sections report "H2 > H3"-style paths.
func parseSections(content string) []*section {
	lines := strings.Split(content, "\n")
	var sections []*section
	stack := make([]string, 6)

	var current *section
	var body strings.Builder

	flush := func() {
		if current != nil {
			current.content = body.String()
			sections = append(sections, current)
			body.Reset()
		}
	}

	for _, line := range lines {
		if match := headerPattern.FindStringSubmatch(line); match != nil {
			flush()

			level := len(match[1])
			title := strings.TrimSpace(match[2])

			stack[level-1] = title
			for i := level; i < 6; i++ {
				stack[i] = ""
			}

			var parts []string
			for i := 0; i < level; i++ {
				if stack[i] != "" {
					parts = append(parts, stack[i])
				}
			}

			current = &section{level: level, title: title, headerPath: strings.Join(parts, " > ")}
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	flush()

	return sections
}

// topLevelSections groups a flat section list into top-level (level-2 by
// convention) sections with their nested subsections folded into content,
// returning only the sections at the given level. Sections at a shallower
// level than minLevel are dropped as non-content (e.g. an H1 document
// title); their body text is merged into the following section to avoid
// losing leading prose.
func topLevelSections(all []*section, level int) []*section {
	var out []*section
	var leading *section
	for _, s := range all {
		if s.level == level {
			if leading != nil {
				s.content = leading.content + s.content
				leading = nil
			}
			out = append(out, s)
			continue
		}
		if s.level < level {
			leading = s
			continue
		}
		// Deeper heading folded into the nearest top-level section content.
		if len(out) > 0 {
			out[len(out)-1].content += headerLine(s) + s.content
		} else if leading != nil {
			leading.content += headerLine(s) + s.content
		}
	}
	return out
}

func headerLine(s *section) string {
	return strings.Repeat("#", s.level) + " " + s.title + "\n"
}
