package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [Class | Class.kit]",
	Short: "Type-check a class and every class it uses",
	Long: `Type-check a class and every class it reaches through its superclasses,
fields, locals and calls. Every error of every class is reported.

Without an argument the main class of kitten.yaml is checked.

Examples:
  kitten check Main
  kitten check src/Main.kit
  kitten check -c lib Main`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	class, dirs, err := s.target(args)
	if err != nil {
		return err
	}
	c, err := s.compiler(dirs, nil)
	if err != nil {
		return err
	}
	u, _, err := c.Check(class)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d classes checked\n", class, len(u.Classes()))
	return nil
}
