package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mwillard/memoryforge/configs"
	"github.com/mwillard/memoryforge/internal/config"
	"github.com/mwillard/memoryforge/internal/project"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new project: config template and knowledge/ directory",
		Long: `Writes .memory-forge/config.yaml from the built-in template and
creates an empty knowledge/ directory if one doesn't already exist. Run
'memoryforge doctor' afterward to confirm everything is in order, then
'memoryforge index' to build the first index.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func runInit(cmd *cobra.Command, force bool) error {
	root, err := resolveRoot()
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}

	out := cmd.OutOrStdout()

	configPath := filepath.Join(root, config.ConfigRelPath)
	if _, err := os.Stat(configPath); err == nil && !force {
		fmt.Fprintf(out, "%s already exists (use --force to overwrite)\n", configPath)
	} else {
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(configPath), err)
		}
		if err := os.WriteFile(configPath, []byte(configs.ConfigTemplate), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", configPath, err)
		}
		fmt.Fprintf(out, "Wrote %s\n", configPath)
	}

	knowledgeDir := project.KnowledgeDir(root)
	if _, err := os.Stat(knowledgeDir); os.IsNotExist(err) {
		if err := os.MkdirAll(knowledgeDir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", knowledgeDir, err)
		}
		fmt.Fprintf(out, "Created %s\n", knowledgeDir)
	}

	return nil
}
