// Package compiler runs the Kitten pipeline: load, type-check, assemble and
// hand the program to a backend.
package compiler

import (
	"fmt"
	"io"
	"log"

	"martianoff/kitten/internal/backend"
	"martianoff/kitten/internal/program"
	"martianoff/kitten/internal/types"
	"martianoff/kitten/kiterr"
)

// Compiler compiles classes found by a loader. Each call to Check or
// Compile is a separate session with its own universe.
type Compiler struct {
	loader  types.Loader
	backend backend.Backend
	logger  *log.Logger
}

// New returns a compiler loading classes through loader and emitting with b.
func New(loader types.Loader, b backend.Backend) *Compiler {
	return &Compiler{loader: loader, backend: b, logger: log.New(io.Discard, "", 0)}
}

// SetLogger sets the logger reporting the phases of the pipeline.
func (c *Compiler) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l
	}
}

// Check loads the class called name and type-checks it together with every
// class it reaches. The returned universe is valid even when the error is
// not nil; the error is a *kiterr.MultiError holding every diagnostic.
func (c *Compiler) Check(name string) (*types.Universe, *types.ClassType, error) {
	u := types.NewUniverse(c.loader)
	ct := u.Resolve(name)
	checked := checkAll(u)
	c.logger.Printf("checked %d classes", checked)

	if errs := u.Diagnostics(); len(errs) > 0 {
		return u, ct, &kiterr.MultiError{Errors: errs}
	}
	return u, ct, nil
}

// checkAll type-checks classes until no unchecked class remains. Checking a
// class may load the classes it names.
func checkAll(u *types.Universe) int {
	checked := 0
	for {
		progress := false
		for _, ct := range u.Classes() {
			if !ct.Checked() {
				ct.TypeCheck()
				checked++
				progress = true
			}
		}
		if !progress {
			return checked
		}
	}
}

// Compile checks the class called name, assembles the program reachable
// from its entry points and emits it. Nothing is assembled when any class
// has an error.
func (c *Compiler) Compile(name string, opts program.Options) (*program.Program, error) {
	_, ct, err := c.Check(name)
	if err != nil {
		return nil, err
	}
	p, err := program.Assemble(ct, opts)
	if err != nil {
		return nil, err
	}
	c.logger.Printf("assembled %d members from %s", p.Len(), name)
	if c.backend != nil {
		if err := c.backend.Emit(p); err != nil {
			return nil, fmt.Errorf("backend: %w", err)
		}
	}
	return p, nil
}
