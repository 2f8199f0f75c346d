package chunk

import (
	"regexp"
	"strings"
)

var (
	codeBlockPattern = regexp.MustCompile("(?s)```.*?```")
	sentencePattern  = regexp.MustCompile(`(?s)(.*?[.!?])(\s+|$)`)
)

// splitByBudget splits content into pieces no larger than MaxChunkTokens,
// first by paragraph (blank-line-delimited), then, for any paragraph still
// too large, by sentence. A fenced code block is kept whole as one paragraph;
// a block that alone exceeds the budget is split like any other oversized
// paragraph.
func splitByBudget(content string) []string {
	paragraphs := splitParagraphsAtomic(content)

	var pieces []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			pieces = append(pieces, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, para := range paragraphs {
		if estimateTokens(para) > MaxChunkTokens {
			flush()
			pieces = append(pieces, splitBySentence(para)...)
			continue
		}
		candidate := current.String()
		if candidate != "" {
			candidate += "\n\n"
		}
		candidate += para
		if estimateTokens(candidate) > MaxChunkTokens && current.Len() > 0 {
			flush()
			current.WriteString(para)
		} else {
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(para)
		}
	}
	flush()

	if len(pieces) == 0 && strings.TrimSpace(content) != "" {
		pieces = append(pieces, strings.TrimSpace(content))
	}
	return pieces
}

// splitParagraphsAtomic splits on blank lines but re-merges any split that
// landed inside a fenced code block.
func splitParagraphsAtomic(content string) []string {
	atomic := codeBlockPattern.FindAllStringIndex(content, -1)

	raw := strings.Split(content, "\n\n")
	if len(atomic) == 0 {
		return trimNonEmpty(raw)
	}

	// Re-join using atomic block boundaries: walk the content and cut only
	// at blank lines outside of an atomic span.
	var pieces []string
	pos := 0
	var cur strings.Builder
	inBlock := func(i int) bool {
		for _, b := range atomic {
			if i >= b[0] && i < b[1] {
				return true
			}
		}
		return false
	}
	sep := "\n\n"
	for pos < len(content) {
		idx := strings.Index(content[pos:], sep)
		if idx == -1 {
			cur.WriteString(content[pos:])
			pos = len(content)
			break
		}
		abs := pos + idx
		if inBlock(abs) {
			cur.WriteString(content[pos : abs+len(sep)])
			pos = abs + len(sep)
			continue
		}
		cur.WriteString(content[pos:abs])
		pieces = append(pieces, cur.String())
		cur.Reset()
		pos = abs + len(sep)
	}
	if cur.Len() > 0 {
		pieces = append(pieces, cur.String())
	}
	return trimNonEmpty(pieces)
}

func trimNonEmpty(parts []string) []string {
	var out []string
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// splitBySentence splits an oversized paragraph into budget-sized pieces at
// sentence boundaries, falling back to a hard split if a single sentence
// still exceeds the budget.
func splitBySentence(para string) []string {
	matches := sentencePattern.FindAllString(para, -1)
	if len(matches) == 0 {
		matches = []string{para}
	}

	var pieces []string
	var current strings.Builder
	for _, sent := range matches {
		sent = strings.TrimSpace(sent)
		if sent == "" {
			continue
		}
		if estimateTokens(sent) > MaxChunkTokens {
			if current.Len() > 0 {
				pieces = append(pieces, strings.TrimSpace(current.String()))
				current.Reset()
			}
			pieces = append(pieces, hardSplit(sent)...)
			continue
		}
		candidate := current.String()
		if candidate != "" {
			candidate += " "
		}
		candidate += sent
		if estimateTokens(candidate) > MaxChunkTokens && current.Len() > 0 {
			pieces = append(pieces, strings.TrimSpace(current.String()))
			current.Reset()
			current.WriteString(sent)
		} else {
			current.Reset()
			current.WriteString(candidate)
		}
	}
	if current.Len() > 0 {
		pieces = append(pieces, strings.TrimSpace(current.String()))
	}
	return pieces
}

// hardSplit is the last resort for a single sentence longer than the
// budget: cut at the character boundary implied by MaxChunkTokens.
func hardSplit(s string) []string {
	maxChars := MaxChunkTokens * 4
	var out []string
	for len(s) > maxChars {
		out = append(out, strings.TrimSpace(s[:maxChars]))
		s = s[maxChars:]
	}
	if strings.TrimSpace(s) != "" {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}
