package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// canonicalSkillSections maps a recognized level-2 heading title (lowercased)
// to its fixed chunk type and priority within a skill file.
var canonicalSkillSections = map[string]struct {
	Type     Type
	Priority int
}{
	"problem":      {TypeProblem, PriorityProblem},
	"trigger":      {TypeTrigger, PriorityTrigger},
	"triggers":     {TypeTrigger, PriorityTrigger},
	"solution":     {TypeSolution, PrioritySolution},
	"verification": {TypeVerification, PriorityVerification},
}

// Parse splits sourceFile's content into chunks per the skill/context
// chunking policy. Malformed or absent frontmatter is silently treated as
// an ordinary context file.
func Parse(sourceFile, content string) Result {
	fm, _, body := extractFrontmatter(content)

	var importance *int
	if fm != nil {
		importance = fm.Importance
	}

	if fm.isSkill() {
		return Result{
			Chunks:     parseSkill(sourceFile, fm, body),
			Importance: importance,
			IsSkill:    true,
		}
	}

	return Result{
		Chunks:     parseContext(sourceFile, body),
		Importance: importance,
		IsSkill:    false,
	}
}

func parseSkill(sourceFile string, fm *frontmatter, body string) []Chunk {
	var chunks []Chunk
	ordinal := 0
	next := func() int { ordinal++; return ordinal - 1 }

	fmText := strings.TrimSpace(fmt.Sprintf("%s\n\n%s", fm.Name, fm.Description))
	chunks = append(chunks, Chunk{
		ID:       chunkID(sourceFile, TypeFrontmatter, next()),
		Content:  fmText,
		Heading:  "",
		Type:     TypeFrontmatter,
		Priority: PriorityFrontmatter,
		Metadata: map[string]string{"skill_name": fm.Name},
	})

	sections := topLevelSections(parseSections(body), 2)
	for _, sec := range sections {
		text := strings.TrimSpace(sec.content)
		if text == "" {
			continue
		}

		kind, ok := canonicalSkillSections[strings.ToLower(sec.title)]
		chunkType := TypeSection
		priority := PriorityGenericH2
		if ok {
			chunkType = kind.Type
			priority = kind.Priority
		}

		for _, piece := range splitByBudget(text) {
			chunks = append(chunks, Chunk{
				ID:       chunkID(sourceFile, chunkType, next()),
				Content:  piece,
				Heading:  sec.headerPath,
				Type:     chunkType,
				Priority: priority,
				Metadata: map[string]string{
					"skill_name":   fm.Name,
					"section_path": sec.headerPath,
				},
			})
		}
	}

	return chunks
}

func parseContext(sourceFile, body string) []Chunk {
	all := parseSections(body)
	h2 := topLevelSections(all, 2)

	ordinal := 0
	next := func() int { ordinal++; return ordinal - 1 }

	if len(h2) == 0 {
		return fullChunks(sourceFile, body, &ordinal)
	}

	var chunks []Chunk
	for _, sec := range h2 {
		text := strings.TrimSpace(sec.content)
		if text == "" {
			continue
		}

		if estimateTokens(text) <= MaxChunkTokens {
			chunks = append(chunks, Chunk{
				ID:       chunkID(sourceFile, TypeSection, next()),
				Content:  text,
				Heading:  sec.title,
				Type:     TypeSection,
				Priority: PrioritySection,
				Metadata: map[string]string{"section_path": sec.headerPath},
			})
			continue
		}

		// Oversized: split further by H3, falling back to paragraph/sentence.
		h3 := topLevelSections(parseSections(sec.content), 3)
		if len(h3) == 0 {
			for _, piece := range splitByBudget(text) {
				chunks = append(chunks, Chunk{
					ID:       chunkID(sourceFile, TypeSection, next()),
					Content:  piece,
					Heading:  sec.title,
					Type:     TypeSection,
					Priority: PrioritySection,
					Metadata: map[string]string{"section_path": sec.headerPath},
				})
			}
			continue
		}

		for _, sub := range h3 {
			subText := strings.TrimSpace(sub.content)
			if subText == "" {
				continue
			}
			heading := sec.title + " > " + sub.title
			sectionPath := sec.headerPath + " > " + sub.title
			for _, piece := range splitByBudget(subText) {
				chunks = append(chunks, Chunk{
					ID:       chunkID(sourceFile, TypeSection, next()),
					Content:  piece,
					Heading:  heading,
					Type:     TypeSection,
					Priority: PrioritySection,
					Metadata: map[string]string{"section_path": sectionPath},
				})
			}
		}
	}

	return chunks
}

func fullChunks(sourceFile, body string, ordinal *int) []Chunk {
	text := strings.TrimSpace(body)
	if text == "" {
		return nil
	}

	var chunks []Chunk
	for _, piece := range splitByBudget(text) {
		*ordinal++
		chunks = append(chunks, Chunk{
			ID:       chunkID(sourceFile, TypeFull, *ordinal-1),
			Content:  piece,
			Heading:  "",
			Type:     TypeFull,
			Priority: PriorityFull,
			Metadata: map[string]string{},
		})
	}
	return chunks
}

// chunkID derives a stable identifier from (sourceFile, chunkType, ordinal),
// as required by spec.md §3.
func chunkID(sourceFile string, t Type, ordinal int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%d", sourceFile, t, ordinal)))
	return hex.EncodeToString(h[:])[:16]
}
