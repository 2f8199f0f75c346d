package mcp

import (
	"fmt"
	"strings"

	"github.com/mwillard/memoryforge/internal/search"
)

// formatSearchContext renders ranked results as plain text suitable for
// direct injection into an agent prompt (spec.md §6.3).
func formatSearchContext(query string, results []search.Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No knowledge found for %q.", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Knowledge for: %s\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&sb, "## %d. %s", i+1, r.SourceFile)
		if r.Heading != "" {
			fmt.Fprintf(&sb, " — %s", r.Heading)
		}
		fmt.Fprintf(&sb, " (score %.2f)\n\n", r.Score)
		sb.WriteString(r.Content)
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// toSearchResultOutputs converts engine results to the tool's output schema.
func toSearchResultOutputs(results []search.Result) []SearchResultOutput {
	out := make([]SearchResultOutput, len(results))
	for i, r := range results {
		out[i] = SearchResultOutput{
			SourceFile:  r.SourceFile,
			SourceType:  string(r.SourceType),
			Heading:     r.Heading,
			SectionPath: r.SectionPath,
			Score:       r.Score,
			Content:     r.Content,
		}
	}
	return out
}

// clampLimit ensures limit is within bounds, substituting defaultVal when
// limit is not positive.
func clampLimit(limit, defaultVal, min, max int) int {
	if limit <= 0 {
		return defaultVal
	}
	if limit < min {
		return min
	}
	if limit > max {
		return max
	}
	return limit
}
