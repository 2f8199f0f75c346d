package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mwillard/memoryforge/internal/logging"
	"github.com/mwillard/memoryforge/internal/mcp"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP tool server over stdio",
		Long: `Starts the MCP server speaking JSON-RPC over stdin/stdout, exposing
the six knowledge tools (spec.md §6.3) to an AI coding agent. Once this
starts, nothing but JSON-RPC may be written to stdout, so all diagnostics
go to the log file instead (internal/logging.SetupMCPMode).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cleanup, err := logging.SetupMCPMode()
	if err != nil {
		return err
	}
	defer cleanup()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.Syncer.SyncProject(ctx); err != nil {
		return err
	}

	srv, err := mcp.NewServer(a.Store, a.Syncer, a.Searcher, a.Embedder, a.Config, a.Root)
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx, "stdio", "")
}
