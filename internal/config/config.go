// Package config holds the settings of the compiler: where its data lives
// and the kitten.yaml project file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the name of the project file looked up by FindProject.
const ProjectFile = "kitten.yaml"

// ErrNoProject is returned by FindProject when no project file exists in
// the directory or any of its parents.
var ErrNoProject = errors.New("no " + ProjectFile + " found")

// Config holds the directories used by the compiler.
type Config struct {
	// Home is the root directory for Kitten data.
	// Defaults to ~/.kitten
	Home string

	// LibDir is where fetched libraries are checked out.
	// Defaults to Home/lib
	LibDir string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home := defaultHome()
	return &Config{
		Home:   home,
		LibDir: filepath.Join(home, "lib"),
	}
}

// defaultHome uses KITTEN_HOME if set, otherwise ~/.kitten
func defaultHome() string {
	if dir := os.Getenv("KITTEN_HOME"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".kitten")
	}
	return filepath.Join(homeDir, ".kitten")
}

// EnsureDirs creates all necessary directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Home, c.LibDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// LibraryDir returns where lib is checked out.
// Format: LibDir/{name}@{ref}
func (c *Config) LibraryDir(lib Library) string {
	ref := lib.Ref
	if ref == "" {
		ref = "HEAD"
	}
	return filepath.Join(c.LibDir, lib.Name+"@"+strings.ReplaceAll(ref, "/", "_"))
}

// Classpath returns the directories searched for classes of p: its own
// classpath entries, relative to the project directory, followed by the
// source directory of every library.
func (c *Config) Classpath(p *Project) []string {
	var out []string
	for _, dir := range p.Classpath {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(p.dir, dir)
		}
		out = append(out, dir)
	}
	for _, lib := range p.Libraries {
		out = append(out, filepath.Join(c.LibraryDir(lib), lib.Dir))
	}
	return out
}

// Library is a collection of classes fetched from a git repository.
type Library struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	// Ref is a tag, a branch or a commit. Empty means the default branch.
	Ref string `yaml:"ref,omitempty"`
	// Dir is the directory of the repository holding the classes.
	Dir string `yaml:"dir,omitempty"`
}

// Project is the content of a kitten.yaml file.
type Project struct {
	// Main is the class compiled when no class is named on the command line.
	Main      string    `yaml:"main,omitempty"`
	Classpath []string  `yaml:"classpath,omitempty"`
	Libraries []Library `yaml:"libraries,omitempty"`
	// Tests makes the tests of the main class entry points.
	Tests bool `yaml:"tests,omitempty"`

	dir string
}

// Dir returns the directory holding the project file.
func (p *Project) Dir() string { return p.dir }

// NewProject returns an empty project rooted at dir, with dir itself as
// classpath.
func NewProject(dir string) *Project {
	return &Project{Classpath: []string{"."}, dir: dir}
}

// LoadProject parses the project file at path.
func LoadProject(path string) (*Project, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("project: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("project: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var p Project
	if err := decoder.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("project: %s is empty", absPath)
		}
		return nil, fmt.Errorf("project: parse %s: %w", absPath, err)
	}
	p.dir = filepath.Dir(absPath)
	if len(p.Classpath) == 0 {
		p.Classpath = []string{"."}
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("project: %s: %w", absPath, err)
	}
	return &p, nil
}

func (p *Project) validate() error {
	seen := make(map[string]bool)
	var issues []string
	for i, lib := range p.Libraries {
		switch {
		case lib.Name == "":
			issues = append(issues, fmt.Sprintf("library %d has no name", i+1))
		case seen[lib.Name]:
			issues = append(issues, fmt.Sprintf("library %s is declared twice", lib.Name))
		}
		if lib.URL == "" {
			issues = append(issues, fmt.Sprintf("library %s has no url", lib.Name))
		}
		seen[lib.Name] = true
	}
	if len(issues) > 0 {
		return errors.New(strings.Join(issues, "; "))
	}
	return nil
}

// FindProject looks for a project file in dir and its parents.
func FindProject(dir string) (*Project, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, ProjectFile)
		if _, err := os.Stat(path); err == nil {
			return LoadProject(path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNoProject
		}
		dir = parent
	}
}

// Save writes p to the project file of its directory.
func (p *Project) Save() error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(p.dir, ProjectFile), data, 0644)
}
