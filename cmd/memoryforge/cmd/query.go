package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwillard/memoryforge/internal/search"
	"github.com/mwillard/memoryforge/internal/store"
)

type queryOptions struct {
	limit       int
	threshold   float64
	jsonOutput  bool
	contextOnly bool
	unique      bool
	types       []string
}

func newQueryCmd() *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Search the knowledge index by semantic similarity",
		Long: `Runs the same freshness-checked cosine+priority search the search_knowledge
MCP tool uses, and prints the ranked results.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", search.DefaultLimit, "Maximum number of results")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", search.DefaultThreshold, "Minimum similarity score")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&opts.contextOnly, "context", false, "Print only the prompt-ready context block")
	cmd.Flags().BoolVar(&opts.unique, "unique", false, "Keep only the top-scored chunk per source file")
	cmd.Flags().StringSliceVar(&opts.types, "type", nil, "Restrict to source types (skill,context)")

	return cmd
}

func runQuery(cmd *cobra.Command, text string, opts queryOptions) error {
	if opts.jsonOutput && opts.contextOnly {
		return fmt.Errorf("--json and --context are mutually exclusive")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	searchOpts := search.Options{
		Limit:          opts.limit,
		Threshold:      opts.threshold,
		UniqueFiles:    opts.unique,
		IncludeContent: true,
	}
	for _, t := range opts.types {
		t = strings.TrimSpace(t)
		if t != "" {
			searchOpts.SourceTypes = append(searchOpts.SourceTypes, store.SourceType(t))
		}
	}

	results, err := a.Searcher.Query(cmd.Context(), text, searchOpts)
	if err != nil {
		return fmt.Errorf("querying: %w", err)
	}

	out := cmd.OutOrStdout()

	if opts.contextOnly {
		fmt.Fprintln(out, formatContextBlock(text, results))
		return nil
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintf(out, "No knowledge found for %q\n", text)
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(out, "%d. %s (score %.2f)\n", i+1, r.SourceFile, r.Score)
		if r.Heading != "" {
			fmt.Fprintf(out, "   %s\n", r.Heading)
		}
		fmt.Fprintf(out, "   %s\n\n", truncate(r.Content, 200))
	}
	return nil
}

// formatContextBlock renders results as a plain-text block suitable for
// pasting directly into a prompt. Each result uses the same "## N. file —
// heading (score)" layout as internal/mcp's search_knowledge context; the
// header line is plain "Knowledge for: ..." without the MCP "# " prefix.
func formatContextBlock(query string, results []search.Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No knowledge found for %q.", query)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Knowledge for: %s\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&sb, "## %d. %s", i+1, r.SourceFile)
		if r.Heading != "" {
			fmt.Fprintf(&sb, " — %s", r.Heading)
		}
		fmt.Fprintf(&sb, " (score %.2f)\n\n%s\n\n", r.Score, r.Content)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
