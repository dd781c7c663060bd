package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/lshdedup/domain"
	"github.com/ludo-technologies/lshdedup/internal/config"
	"github.com/ludo-technologies/lshdedup/internal/constants"
	"github.com/spf13/cobra"
)

// InitCommand represents the init command
type InitCommand struct {
	force      bool
	configPath string
}

// NewInitCommand creates a new init command
func NewInitCommand() *InitCommand {
	return &InitCommand{configPath: constants.ConfigFileName}
}

// CreateCobraCommand creates the cobra command for configuration initialization
func (i *InitCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .lshdedup.toml configuration file",
		Long: `Write a commented configuration file holding the default settings.

The file is discovered by walking up from the first input path, so placing
it at the root of a data directory applies it to every run below.

Examples:
  # Create .lshdedup.toml in the current directory
  lshdedup init

  # Write to another location, replacing an existing file
  lshdedup init --path data/.lshdedup.toml --force`,
		Args: cobra.NoArgs,
		RunE: i.runInit,
	}

	cmd.Flags().BoolVar(&i.force, "force", false, "Overwrite an existing configuration file")
	cmd.Flags().StringVarP(&i.configPath, "path", "p", i.configPath, "Configuration file path")

	return cmd
}

// runInit executes the init command
func (i *InitCommand) runInit(cmd *cobra.Command, args []string) error {
	configPath, err := filepath.Abs(i.configPath)
	if err != nil {
		return domain.NewConfigError("failed to resolve config path", err)
	}

	if _, err := os.Stat(configPath); err == nil && !i.force {
		return domain.NewConfigError(
			fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath), nil)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to create directory %s", configDir), err)
	}

	content, err := config.GenerateDefaultConfigTOML()
	if err != nil {
		return domain.NewConfigError("failed to render default configuration", err)
	}
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return domain.NewOutputError("failed to write configuration file", err)
	}

	relPath, err := filepath.Rel(".", configPath)
	if err != nil {
		relPath = configPath
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration file created: %s\n", relPath)
	fmt.Fprintf(out, "\nTo customize lshdedup for your data:\n")
	fmt.Fprintf(out, "  1. Edit %s\n", relPath)
	fmt.Fprintf(out, "  2. Run 'lshdedup stats --target <similarity>' to choose num_bands\n")
	fmt.Fprintf(out, "  3. Run 'lshdedup dedupe <paths>' to use your configuration\n")

	return nil
}

// NewInitCmd creates and returns the init cobra command
func NewInitCmd() *cobra.Command {
	return NewInitCommand().CreateCobraCommand()
}
