package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"mend/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a commented mend.toml",
	Long: `Initialize a directory (the current one when omitted) with a mend.toml
holding the engine defaults and the file selection patterns.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing mend.toml")
}

func runInit(cmd *cobra.Command, args []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to get force flag: %w", err)
	}
	dir := "."
	if len(args) > 0 && args[0] != "" {
		dir = args[0]
	}

	path, err := project.WriteConfig(dir, force)
	if errors.Is(err, project.ErrConfigExists) {
		return fmt.Errorf("project already initialized: %s exists (use --force to overwrite)", path)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	shown := path
	if abs, absErr := filepath.Abs(path); absErr == nil {
		shown = abs
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", shown)
	return nil
}
