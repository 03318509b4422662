package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"martianoff/kitten/internal/config"
)

var fetchList bool

var fetchCmd = &cobra.Command{
	Use:   "fetch [library...]",
	Short: "Fetch the libraries of the project",
	Long: `Check out the libraries listed in kitten.yaml at their ref. Libraries are
stored under $KITTEN_HOME/lib (default ~/.kitten/lib) and added to the
classpath of the project.

Examples:
  kitten fetch                     # Fetch every library
  kitten fetch shapes              # Fetch one library
  kitten fetch --list shapes       # List the tags of a library`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVarP(&fetchList, "list", "l", false, "List the tags of the libraries instead of fetching them")
}

func runFetch(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if s.project == nil {
		return fmt.Errorf("%s not found", config.ProjectFile)
	}
	libs, err := selectLibraries(s.project, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	f := s.fetcher()
	for _, lib := range libs {
		if fetchList {
			tags, err := f.Tags(lib)
			if err != nil {
				return fmt.Errorf("library %s: %w", lib.Name, err)
			}
			fmt.Fprintf(out, "%s %s\n", lib.Name, strings.Join(tags, " "))
			continue
		}
		cached := f.IsCached(lib)
		dir, err := f.Fetch(lib)
		if err != nil {
			return fmt.Errorf("library %s: %w", lib.Name, err)
		}
		if cached {
			fmt.Fprintf(out, "%s is up to date\n", lib.Name)
		} else {
			fmt.Fprintf(out, "fetched %s into %s\n", lib.Name, dir)
		}
	}
	return nil
}

func selectLibraries(p *config.Project, names []string) ([]config.Library, error) {
	if len(names) == 0 {
		return p.Libraries, nil
	}
	byName := make(map[string]config.Library, len(p.Libraries))
	for _, lib := range p.Libraries {
		byName[lib.Name] = lib
	}
	var out []config.Library
	for _, name := range names {
		lib, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("library %s is not declared in %s", name, config.ProjectFile)
		}
		out = append(out, lib)
	}
	return out, nil
}
