// Package loader finds the source of Kitten classes and parses it.
//
// A class named C lives in a file C.kit. Classes are searched in the
// in-memory sources first, then in the classpath directories in order, and
// finally among the runtime classes (Object and String) shipped with the
// compiler.
package loader

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"unicode"

	"martianoff/kitten/internal/ast"
	"martianoff/kitten/internal/diag"
	"martianoff/kitten/internal/parser"
	"martianoff/kitten/internal/types"
	"martianoff/kitten/kiterr"
)

// Extension is the extension of Kitten source files.
const Extension = ".kit"

//go:embed runtime/*.kit
var runtimeFS embed.FS

// Loader implements types.Loader over a classpath.
type Loader struct {
	memory    map[string]string
	classpath []string
	logger    *log.Logger
}

var _ types.Loader = (*Loader)(nil)

// New returns a loader searching the given directories.
func New(classpath ...string) *Loader {
	return &Loader{classpath: classpath, logger: log.New(io.Discard, "", 0)}
}

// NewMemory returns a loader whose classes come from sources, indexed by
// class name. Runtime classes are still available.
func NewMemory(sources map[string]string) *Loader {
	l := New()
	l.memory = sources
	return l
}

// SetLogger makes the loader log every class it reads.
func (l *Loader) SetLogger(logger *log.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// Classpath returns the searched directories.
func (l *Loader) Classpath() []string { return l.classpath }

// Load reads and parses the class called name.
func (l *Loader) Load(name string) (types.ClassSource, *diag.Diagnostics, error) {
	if !validClassName(name) {
		return nil, nil, kiterr.NewLoadError(name, "invalid class name", nil)
	}
	file, src, err := l.read(name)
	if err != nil {
		return nil, nil, err
	}
	l.logger.Printf("loading class %s from %s", name, file)

	def, d := parser.Parse(file, src)
	if def == nil {
		return nil, d, nil
	}
	if def.Name != name {
		d.SyntaxError(def.Pos(), fmt.Sprintf("class %s must be declared in a file named %s%s", def.Name, def.Name, Extension))
	}
	return def, d, nil
}

// Parse loads and parses name, returning the syntax tree itself.
func (l *Loader) Parse(name string) (*ast.ClassDefinition, *diag.Diagnostics, error) {
	src, d, err := l.Load(name)
	if err != nil || src == nil {
		return nil, d, err
	}
	return src.(*ast.ClassDefinition), d, nil
}

func (l *Loader) read(name string) (file, src string, err error) {
	fileName := name + Extension
	if src, ok := l.memory[name]; ok {
		return fileName, src, nil
	}
	for _, dir := range l.classpath {
		file := filepath.Join(dir, fileName)
		data, err := os.ReadFile(file)
		if err == nil {
			return file, string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", "", kiterr.NewLoadError(name, "cannot read "+file, err)
		}
	}
	file = path.Join("runtime", fileName)
	if data, err := runtimeFS.ReadFile(file); err == nil {
		return file, string(data), nil
	}
	return "", "", kiterr.NewLoadError(name, "class not found", nil)
}

// RuntimeClasses returns the names of the classes shipped with the compiler.
func RuntimeClasses() []string {
	entries, err := runtimeFS.ReadDir("runtime")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name()[:len(e.Name())-len(Extension)])
	}
	return names
}

func validClassName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if !unicode.IsLetter(r) && r != '_' && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}
