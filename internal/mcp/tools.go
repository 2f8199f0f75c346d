package mcp

import "github.com/mwillard/memoryforge/internal/audit"

// SearchKnowledgeInput is the input schema for search_knowledge (spec.md §6.3).
type SearchKnowledgeInput struct {
	Query       string `json:"query" jsonschema:"the search query"`
	Limit       int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 5"`
	SourceType  string `json:"source_type,omitempty" jsonschema:"restrict to \"skill\" or \"context\" files"`
	UniqueFiles bool   `json:"unique_files,omitempty" jsonschema:"keep only the top-scored chunk per source file"`
}

// SearchResultOutput is one ranked result returned by search_knowledge.
type SearchResultOutput struct {
	SourceFile  string  `json:"source_file"`
	SourceType  string  `json:"source_type"`
	Heading     string  `json:"heading,omitempty"`
	SectionPath string  `json:"section_path,omitempty"`
	Score       float64 `json:"score"`
	Content     string  `json:"content"`
}

// SearchKnowledgeOutput carries both a prompt-ready context block and the
// structured results it was built from.
type SearchKnowledgeOutput struct {
	Context string               `json:"context" jsonschema:"plain text suitable for direct injection into an agent prompt"`
	Results []SearchResultOutput `json:"results"`
}

// SaveKnowledgeInput is the input schema for save_knowledge (spec.md §6.3).
type SaveKnowledgeInput struct {
	Type        string `json:"type" jsonschema:"\"skill\" or \"context\""`
	Name        string `json:"name" jsonschema:"kebab-case file name, without extension"`
	Content     string `json:"content,omitempty" jsonschema:"markdown body; for type=skill this becomes the Solution section"`
	Description string `json:"description,omitempty" jsonschema:"required for type=skill; triggers skill classification (spec.md §6.2)"`
	Trigger     string `json:"trigger,omitempty" jsonschema:"when to reach for this skill"`
	Problem     string `json:"problem,omitempty" jsonschema:"the problem this skill addresses"`
	Importance  int    `json:"importance,omitempty" jsonschema:"1-10, default 5"`
}

// SaveKnowledgeOutput reports where the file landed and how it indexed.
type SaveKnowledgeOutput struct {
	Path         string `json:"path"`
	ChunksStored int    `json:"chunks_stored"`
}

// IndexKnowledgeInput is the input schema for index_knowledge.
type IndexKnowledgeInput struct {
	Force bool `json:"force,omitempty" jsonschema:"clear the store and manifest before reindexing"`
}

// IndexKnowledgeOutput reports one sync pass's outcome.
type IndexKnowledgeOutput struct {
	Indexed    []string `json:"indexed"`
	Removed    []string `json:"removed"`
	Unchanged  int      `json:"unchanged"`
	ModelReset bool     `json:"model_reset"`
}

// KnowledgeStatsInput is the (empty) input for knowledge_stats.
type KnowledgeStatsInput struct{}

// KnowledgeStatsOutput reports corpus and access-pattern statistics.
type KnowledgeStatsOutput struct {
	FileCount             int    `json:"file_count"`
	ChunkCount            int    `json:"chunk_count"`
	LastIndexed           string `json:"last_indexed,omitempty"`
	ModelID               string `json:"model_id,omitempty"`
	MostAccessedFile      string `json:"most_accessed_file,omitempty"`
	MostAccessedCount     int    `json:"most_accessed_count,omitempty"`
	LeastRecentlyUsedFile string `json:"least_recently_used_file,omitempty"`
}

// AuditKnowledgeInput is the (empty) input for audit_knowledge.
type AuditKnowledgeInput struct{}

// AuditFindingOutput is one autoloaded file's audit finding.
type AuditFindingOutput struct {
	Path            string `json:"path"`
	EstimatedTokens int    `json:"estimated_tokens"`
	Tier            string `json:"tier"`
}

// AuditKnowledgeOutput is the §4.C8 audit report.
type AuditKnowledgeOutput struct {
	Files       []AuditFindingOutput `json:"files"`
	TotalTokens int                  `json:"total_tokens"`
	SumTier     string               `json:"sum_tier"`
}

func toAuditOutput(report audit.Report) AuditKnowledgeOutput {
	out := AuditKnowledgeOutput{
		Files:       make([]AuditFindingOutput, len(report.Files)),
		TotalTokens: report.TotalTokens,
		SumTier:     string(report.SumTier),
	}
	for i, f := range report.Files {
		out.Files[i] = AuditFindingOutput{Path: f.Path, EstimatedTokens: f.EstimedTokens, Tier: string(f.Tier)}
	}
	return out
}

// ForgetKnowledgeInput is the input schema for forget_knowledge. At least
// one of MaxFiles or MaxAgeDays must be set; the handler rejects the
// all-unset case per spec.md §7.
type ForgetKnowledgeInput struct {
	MaxFiles   int `json:"max_files,omitempty"`
	MaxAgeDays int `json:"max_age_days,omitempty"`
}

// ForgetKnowledgeOutput reports which files were forgotten.
type ForgetKnowledgeOutput struct {
	Forgotten []string `json:"forgotten"`
}
