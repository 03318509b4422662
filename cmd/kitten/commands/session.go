package commands

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"martianoff/kitten/internal/backend"
	"martianoff/kitten/internal/compiler"
	"martianoff/kitten/internal/config"
	"martianoff/kitten/internal/fetch"
	"martianoff/kitten/internal/loader"
)

// session is what every command needs: the configuration, the project of
// the working directory if any, and a logger.
type session struct {
	cfg     *config.Config
	project *config.Project
	logger  *log.Logger
}

func newSession(cmd *cobra.Command) (*session, error) {
	s := &session{
		cfg:    config.DefaultConfig(),
		logger: log.New(io.Discard, "", 0),
	}
	if verbose {
		s.logger = log.New(cmd.ErrOrStderr(), "kitten: ", 0)
	}
	p, err := config.FindProject(".")
	switch {
	case err == nil:
		s.project = p
		s.logger.Printf("using project %s", filepath.Join(p.Dir(), config.ProjectFile))
	case !errors.Is(err, config.ErrNoProject):
		return nil, err
	}
	return s, nil
}

// target returns the class named by args, falling back to the main class
// of the project. A file argument adds its directory to the classpath.
func (s *session) target(args []string) (class string, dirs []string, err error) {
	if len(args) == 0 {
		if s.project != nil && s.project.Main != "" {
			return s.project.Main, nil, nil
		}
		return "", nil, errors.New("no class specified and no main class in " + config.ProjectFile)
	}
	arg := args[0]
	if strings.HasSuffix(arg, loader.Extension) {
		return strings.TrimSuffix(filepath.Base(arg), loader.Extension), []string{filepath.Dir(arg)}, nil
	}
	return arg, nil, nil
}

// fetcher returns a fetcher logging to the session logger.
func (s *session) fetcher() *fetch.Fetcher {
	f := fetch.New(s.cfg)
	f.SetLogger(s.logger)
	return f
}

// compiler fetches the libraries of the project and returns a compiler
// searching dirs, the --classpath directories and the project classpath,
// in that order.
func (s *session) compiler(dirs []string, b backend.Backend) (*compiler.Compiler, error) {
	classpath := append([]string{}, dirs...)
	classpath = append(classpath, classpathFlag...)
	if s.project != nil {
		if _, err := s.fetcher().FetchAll(s.project.Libraries); err != nil {
			return nil, fmt.Errorf("failed to fetch libraries: %w", err)
		}
		classpath = append(classpath, s.cfg.Classpath(s.project)...)
	}
	if len(classpath) == 0 {
		classpath = []string{"."}
	}
	s.logger.Printf("classpath %s", strings.Join(classpath, string(filepath.ListSeparator)))

	l := loader.New(classpath...)
	l.SetLogger(s.logger)
	c := compiler.New(l, b)
	c.SetLogger(s.logger)
	return c, nil
}
