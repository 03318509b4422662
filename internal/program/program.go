// Package program assembles the code reachable from the entry points of a
// class into a single block graph.
package program

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"martianoff/kitten/internal/ast"
	"martianoff/kitten/internal/ir"
	"martianoff/kitten/internal/types"
)

var (
	// ErrNoEntryPoint is returned when a class has nothing to start from.
	ErrNoEntryPoint = errors.New("no entry point")
	// ErrUnchecked is returned when reachable code belongs to a class that
	// was not type-checked.
	ErrUnchecked = errors.New("class not type-checked")
)

// Options selects the entry points of the program.
type Options struct {
	// Tests makes every test of the class an entry point.
	Tests bool
}

// Program is the closure of the entry points under the call and field
// graph. Every code signature of the program has an entry block in Graph.
type Program struct {
	graph *ir.Graph
	sigs  *linkedhashmap.Map // Key() -> types.Signature
	code  map[string]ir.BlockID
	start *types.CodeSignature
	tests []*types.CodeSignature
	err   error
}

// Start returns the main method, nil when the program only runs tests.
func (p *Program) Start() *types.CodeSignature { return p.start }

// Tests returns the tests used as entry points.
func (p *Program) Tests() []*types.CodeSignature { return p.tests }

// Graph returns the blocks of every member of the program.
func (p *Program) Graph() *ir.Graph { return p.graph }

// Len returns the number of signatures of the program.
func (p *Program) Len() int { return p.sigs.Size() }

// Signatures returns the members of the program in the order they were
// reached.
func (p *Program) Signatures() []types.Signature {
	values := p.sigs.Values()
	out := make([]types.Signature, len(values))
	for i, v := range values {
		out[i] = v.(types.Signature)
	}
	return out
}

// Contains reports whether sig belongs to the program.
func (p *Program) Contains(sig types.Signature) bool {
	_, ok := p.sigs.Get(sig.Key())
	return ok
}

// Code returns the entry block of sig.
func (p *Program) Code(sig *types.CodeSignature) (ir.BlockID, bool) {
	b, ok := p.code[sig.Key()]
	return b, ok
}

// Assemble translates the entry points of class and, transitively, every
// member they reference. The class and everything it references must have
// been type-checked without errors; code of an unchecked class is never
// translated and makes Assemble fail with ErrUnchecked.
func Assemble(class *types.ClassType, opts Options) (*Program, error) {
	if !class.Checked() {
		return nil, fmt.Errorf("class %s: %w", class.Name(), ErrUnchecked)
	}
	p := &Program{
		graph: ir.NewGraph(),
		sigs:  linkedhashmap.New(),
		code:  make(map[string]ir.BlockID),
		start: class.MethodLookup(ast.MainMethod, types.Empty),
	}
	if opts.Tests {
		p.tests = class.Tests()
	}
	if p.start == nil && len(p.tests) == 0 {
		return nil, fmt.Errorf("class %s: %w", class.Name(), ErrNoEntryPoint)
	}

	if p.start != nil {
		p.translate(p.start)
	}
	if len(p.tests) > 0 {
		p.translateClass(class)
	}
	if p.err != nil {
		return nil, p.err
	}
	p.cleanUp()
	return p, nil
}

// translate translates sig once, then everything its code references.
func (p *Program) translate(sig *types.CodeSignature) {
	if _, done := p.sigs.Get(sig.Key()); done {
		return
	}
	p.sigs.Put(sig.Key(), sig)
	if ct := sig.DefiningClass(); !ct.Checked() {
		if p.err == nil {
			p.err = fmt.Errorf("%s: class %s: %w", sig, ct.Name(), ErrUnchecked)
		}
		return
	}
	decl, ok := sig.Decl().(ast.CodeDeclaration)
	if !ok {
		return
	}
	entry := decl.Translate(p.graph)
	p.code[sig.Key()] = entry
	p.translateReferenced(entry, make(map[ir.BlockID]bool))
}

func (p *Program) translateReferenced(b ir.BlockID, seen map[ir.BlockID]bool) {
	if seen[b] {
		return
	}
	seen[b] = true
	for _, instr := range p.graph.Code(b) {
		switch instr := instr.(type) {
		case ir.FieldAccess:
			field := instr.Field()
			p.sigs.Put(field.Key(), field)
			p.translateClass(field.DefiningClass())
		case ir.Call:
			for _, callee := range instr.Targets() {
				p.translate(callee)
				p.translateClass(callee.DefiningClass())
			}
		}
	}
	for _, s := range p.graph.Successors(b) {
		p.translateReferenced(s, seen)
	}
}

// translateClass translates the constructors, fixtures and tests of ct.
func (p *Program) translateClass(ct *types.ClassType) {
	for _, c := range ct.Constructors() {
		p.translate(c)
	}
	for _, f := range ct.Fixtures() {
		p.translate(f)
	}
	for _, t := range ct.Tests() {
		p.translate(t)
	}
}

// cleanUp removes no-op blocks from the code of every member and adds the
// fields and call targets found in the remaining blocks.
func (p *Program) cleanUp() {
	cleaner := p.graph.NewCleaner(func(instr ir.Instruction) {
		switch instr := instr.(type) {
		case ir.FieldAccess:
			field := instr.Field()
			p.sigs.Put(field.Key(), field)
		case ir.Call:
			for _, callee := range instr.Targets() {
				p.sigs.Put(callee.Key(), callee)
			}
		}
	})
	for _, sig := range p.Signatures() {
		if cs, ok := sig.(*types.CodeSignature); ok {
			if entry, ok := p.code[cs.Key()]; ok {
				cleaner.Clean(entry)
			}
		}
	}
}
