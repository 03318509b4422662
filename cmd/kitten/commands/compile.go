package commands

import (
	"github.com/spf13/cobra"

	"martianoff/kitten/internal/backend"
	"martianoff/kitten/internal/program"
)

var compileTests bool

var compileCmd = &cobra.Command{
	Use:   "compile [Class | Class.kit]",
	Short: "Compile a class and print a summary of the program",
	Long: `Compile the code reachable from the main method of a class, or from its
tests with --tests, and print every member of the program with the size of
its code.

Without an argument the main class of kitten.yaml is compiled, with its
tests if the project sets tests: true.

Examples:
  kitten compile Main
  kitten compile --tests Counter
  kitten Main.kit                  # Shorthand`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().BoolVarP(&compileTests, "tests", "t", false, "Use the tests of the class as entry points")
}

func runCompile(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	class, dirs, err := s.target(args)
	if err != nil {
		return err
	}
	c, err := s.compiler(dirs, backend.NewSummary(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	opts := program.Options{Tests: compileTests}
	if s.project != nil && s.project.Tests {
		opts.Tests = true
	}
	_, err = c.Compile(class, opts)
	return err
}
