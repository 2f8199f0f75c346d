// Package cmd provides the CLI commands for memoryforge.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mwillard/memoryforge/pkg/version"
)

// NewRootCmd creates the root command for the memoryforge CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "memoryforge",
		Short: "On-demand semantic knowledge index for AI coding agents",
		Long: `memoryforge indexes a project's knowledge/ markdown corpus into a
local, file-based semantic store and serves it to AI coding agents, either
as an MCP stdio tool server (see 'memoryforge serve') or directly from
the command line.`,
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetVersionTemplate("memoryforge version {{.Version}}\n")

	root.AddCommand(newServeCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newIndexCmd())
	root.AddCommand(newSyncCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newPreloadCmd())
	root.AddCommand(newClearCmd())
	root.AddCommand(newMemoryCmd())
	root.AddCommand(newForgetCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
