// Package commands provides the CLI commands for the kitten tool.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"martianoff/kitten/internal/loader"
)

var (
	verbose       bool
	classpathFlag []string
)

var rootCmd = &cobra.Command{
	Use:   "kitten [Class.kit]",
	Short: "Kitten language compiler",
	Long: `Kitten is a small class-based, statically typed language.

This tool provides:
  - Type-checking of a class and every class it uses
  - Compilation of the code reachable from main or from the tests
  - Fetching of class libraries listed in kitten.yaml

Usage:
  kitten [Class.kit]            Compile a class (shorthand)
  kitten check [Class]          Type-check a class
  kitten compile [Class]        Compile a class and print a summary
  kitten fetch                  Fetch the libraries of the project
  kitten init [Main]            Create kitten.yaml
  kitten version                Print version`,
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && strings.HasSuffix(args[0], loader.Extension) {
			return runCompile(cmd, args)
		}
		if len(args) == 0 {
			return cmd.Help()
		}
		return fmt.Errorf("unknown command %q for \"kitten\"\nRun 'kitten --help' for usage", args[0])
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log the phases of the compiler")
	rootCmd.PersistentFlags().StringSliceVarP(&classpathFlag, "classpath", "c", nil, "Directories searched for classes, before the project classpath")
	rootCmd.Flags().BoolVarP(&compileTests, "tests", "t", false, "Use the tests of the class as entry points")
}
