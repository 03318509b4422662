package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"martianoff/kitten/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [Main]",
	Short: "Create a kitten.yaml file",
	Long: `Create a kitten.yaml file in the current directory, with the current
directory as classpath.

Examples:
  kitten init                      # No main class
  kitten init Main                 # Compile Main by default`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(config.ProjectFile); err == nil {
		return fmt.Errorf("%s already exists", config.ProjectFile)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	p := config.NewProject(cwd)
	if len(args) > 0 {
		p.Main = args[0]
	}
	if err := p.Save(); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.ProjectFile, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", config.ProjectFile)
	return nil
}
