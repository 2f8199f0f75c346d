package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mwillard/memoryforge/internal/audit"
	"github.com/mwillard/memoryforge/internal/config"
	"github.com/mwillard/memoryforge/internal/embed"
	"github.com/mwillard/memoryforge/internal/project"
	"github.com/mwillard/memoryforge/internal/search"
	"github.com/mwillard/memoryforge/internal/store"
	forgesync "github.com/mwillard/memoryforge/internal/sync"
	"github.com/mwillard/memoryforge/pkg/version"
)

// Server is the MCP tool server for MemoryForge. It bridges AI coding
// agents with the on-demand semantic knowledge index (spec.md §6.3).
type Server struct {
	mcp      *mcp.Server
	store    *store.Store
	syncer   *forgesync.Syncer
	searcher *search.Searcher
	embedder embed.Embedder
	config   *config.Config
	rootPath string
	logger   *slog.Logger

	mu sync.RWMutex
}

// NewServer wires a Server around an already-open store, syncer, and
// searcher for one project root.
func NewServer(st *store.Store, syncer *forgesync.Syncer, searcher *search.Searcher, embedder embed.Embedder, cfg *config.Config, rootPath string) (*Server, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if syncer == nil {
		return nil, errors.New("syncer is required")
	}
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	if cfg == nil {
		cfg = config.Defaults()
	}

	s := &Server{
		store:    st,
		syncer:   syncer,
		searcher: searcher,
		embedder: embedder,
		config:   cfg,
		rootPath: rootPath,
		logger:   slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "MemoryForge",
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return "MemoryForge", version.Version
}

// registerTools registers the 6 tools spec.md §6.3 requires.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_knowledge",
		Description: "Search the project's saved knowledge (skills and context) by semantic similarity. Returns a prompt-ready context block plus structured results.",
	}, s.mcpSearchKnowledgeHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "save_knowledge",
		Description: "Save a new skill or context file under knowledge/ and reindex it immediately. Never overwrites an existing file.",
	}, s.mcpSaveKnowledgeHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_knowledge",
		Description: "Synchronize the index with the knowledge/ tree on disk, indexing new or changed files and removing deleted ones.",
	}, s.mcpIndexKnowledgeHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "knowledge_stats",
		Description: "Report corpus size and access-pattern statistics for the knowledge index.",
	}, s.mcpKnowledgeStatsHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "audit_knowledge",
		Description: "Run a read-only token audit of the autoloaded region (CLAUDE.md, AGENTS.md, and skill files under .claude/, .codex/, .opencode/).",
	}, s.mcpAuditKnowledgeHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "forget_knowledge",
		Description: "Remove stale, low-importance files from the index per a retention policy (max files and/or max age). Never touches the filesystem.",
	}, s.mcpForgetKnowledgeHandler)

	s.logger.Info("MCP tools registered", slog.Int("count", 6))
}

func (s *Server) mcpSearchKnowledgeHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchKnowledgeInput) (
	*mcp.CallToolResult,
	SearchKnowledgeOutput,
	error,
) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchKnowledgeOutput{}, NewInvalidParamsError("query cannot be empty or whitespace only")
	}

	opts := search.Options{
		Limit:          clampLimit(input.Limit, search.DefaultLimit, 1, 50),
		UniqueFiles:    input.UniqueFiles,
		IncludeContent: true,
	}
	if input.SourceType != "" {
		opts.SourceTypes = []store.SourceType{store.SourceType(input.SourceType)}
	}

	requestID := generateRequestID()
	start := time.Now()

	results, err := s.searcher.Query(ctx, input.Query, opts)
	if err != nil {
		s.logger.Error("search_knowledge failed",
			slog.String("request_id", requestID), slog.String("error", err.Error()))
		return nil, SearchKnowledgeOutput{}, MapError(err)
	}

	s.logger.Info("search_knowledge completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", time.Since(start)),
		slog.Int("result_count", len(results)))

	return nil, SearchKnowledgeOutput{
		Context: formatSearchContext(input.Query, results),
		Results: toSearchResultOutputs(results),
	}, nil
}

func (s *Server) mcpSaveKnowledgeHandler(ctx context.Context, _ *mcp.CallToolRequest, input SaveKnowledgeInput) (
	*mcp.CallToolResult,
	SaveKnowledgeOutput,
	error,
) {
	path, err := writeKnowledgeFile(s.rootPath, input)
	if err != nil {
		return nil, SaveKnowledgeOutput{}, MapError(err)
	}

	if _, err := s.syncer.SyncProject(ctx); err != nil {
		return nil, SaveKnowledgeOutput{}, MapError(fmt.Errorf("reindexing after save: %w", err))
	}

	chunks, err := s.store.ListChunks(ctx, nil)
	if err != nil {
		return nil, SaveKnowledgeOutput{}, MapError(err)
	}
	count := 0
	for _, c := range chunks {
		if c.SourceFile == path {
			count++
		}
	}

	s.logger.Info("save_knowledge completed", slog.String("path", path), slog.Int("chunks_stored", count))

	return nil, SaveKnowledgeOutput{Path: path, ChunksStored: count}, nil
}

func (s *Server) mcpIndexKnowledgeHandler(ctx context.Context, _ *mcp.CallToolRequest, input IndexKnowledgeInput) (
	*mcp.CallToolResult,
	IndexKnowledgeOutput,
	error,
) {
	if input.Force {
		if err := s.syncer.Reset(ctx); err != nil {
			return nil, IndexKnowledgeOutput{}, MapError(fmt.Errorf("forcing reset: %w", err))
		}
	}

	result, err := s.syncer.SyncProject(ctx)
	if err != nil {
		return nil, IndexKnowledgeOutput{}, MapError(err)
	}

	return nil, IndexKnowledgeOutput{
		Indexed:    result.Indexed,
		Removed:    result.Removed,
		Unchanged:  result.Unchanged,
		ModelReset: result.ModelReset,
	}, nil
}

func (s *Server) mcpKnowledgeStatsHandler(ctx context.Context, _ *mcp.CallToolRequest, _ KnowledgeStatsInput) (
	*mcp.CallToolResult,
	KnowledgeStatsOutput,
	error,
) {
	files, err := s.store.ListFiles(ctx)
	if err != nil {
		return nil, KnowledgeStatsOutput{}, MapError(err)
	}
	chunks, err := s.store.ListChunks(ctx, nil)
	if err != nil {
		return nil, KnowledgeStatsOutput{}, MapError(err)
	}
	meta, err := s.store.GetMetadata(ctx)
	if err != nil {
		return nil, KnowledgeStatsOutput{}, MapError(err)
	}

	manifest, err := project.LoadManifest(project.ManifestPath(s.rootPath))
	if err != nil {
		return nil, KnowledgeStatsOutput{}, MapError(err)
	}

	output := KnowledgeStatsOutput{
		FileCount:  len(files),
		ChunkCount: len(chunks),
		ModelID:    meta["model_id"],
	}
	if !manifest.LastIndexed.IsZero() {
		output.LastIndexed = manifest.LastIndexed.Format(time.RFC3339)
	}

	var lruFile *store.File
	for i := range files {
		f := &files[i]
		if f.AccessCount > output.MostAccessedCount {
			output.MostAccessedCount = f.AccessCount
			output.MostAccessedFile = f.Path
		}
		if lruFile == nil || f.LastAccessed.Before(lruFile.LastAccessed) {
			lruFile = f
		}
	}
	if lruFile != nil {
		output.LeastRecentlyUsedFile = lruFile.Path
	}

	return nil, output, nil
}

func (s *Server) mcpAuditKnowledgeHandler(_ context.Context, _ *mcp.CallToolRequest, _ AuditKnowledgeInput) (
	*mcp.CallToolResult,
	AuditKnowledgeOutput,
	error,
) {
	report, err := audit.Run(s.rootPath)
	if err != nil {
		return nil, AuditKnowledgeOutput{}, MapError(err)
	}
	return nil, toAuditOutput(report), nil
}

func (s *Server) mcpForgetKnowledgeHandler(ctx context.Context, _ *mcp.CallToolRequest, input ForgetKnowledgeInput) (
	*mcp.CallToolResult,
	ForgetKnowledgeOutput,
	error,
) {
	if input.MaxFiles <= 0 && input.MaxAgeDays <= 0 {
		return nil, ForgetKnowledgeOutput{}, NewInvalidParamsError("at least one of max_files or max_age_days is required")
	}

	cfg := audit.RetentionConfig{
		MaxFiles:          input.MaxFiles,
		MaxAgeDays:        input.MaxAgeDays,
		ProtectImportance: s.config.Retention.ProtectImportance,
	}
	result, err := audit.ForgetStale(ctx, s.store, cfg)
	if err != nil {
		return nil, ForgetKnowledgeOutput{}, MapError(err)
	}

	forgotten := result.Forgotten
	sort.Strings(forgotten)
	return nil, ForgetKnowledgeOutput{Forgotten: forgotten}, nil
}

// Serve starts the server with the specified transport.
func (s *Server) Serve(ctx context.Context, transport, addr string) error {
	s.logger.Info("Starting MCP server", slog.String("transport", transport), slog.String("addr", addr))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && err != context.Canceled {
			s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		} else {
			s.logger.Info("MCP server stopped gracefully")
		}
		return err
	case "sse":
		return fmt.Errorf("SSE transport not yet implemented")
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// Close releases server resources. The store is owned by the caller that
// created it (e.g. cmd/memoryforge) and is not closed here.
func (s *Server) Close() error {
	return nil
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
