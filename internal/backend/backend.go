// Package backend defines what the compiler hands an assembled program to.
package backend

import (
	"fmt"
	"io"
	"text/tabwriter"

	"martianoff/kitten/internal/ir"
	"martianoff/kitten/internal/program"
	"martianoff/kitten/internal/types"
)

// Backend turns an assembled program into an artifact. Implementations must
// honor the stack effect of every instruction.
type Backend interface {
	Emit(p *program.Program) error
}

// Summary is a backend that describes the program instead of generating
// code: one line per member, with the size of its code.
type Summary struct {
	w io.Writer
}

var _ Backend = (*Summary)(nil)

// NewSummary returns a backend writing to w.
func NewSummary(w io.Writer) *Summary {
	return &Summary{w: w}
}

// Stats is the size of the code of a member.
type Stats struct {
	Blocks       int
	Instructions int
	MaxStack     int
}

// Measure walks the blocks of sig. MaxStack is the highest operand stack
// depth reached along any path, following the stack effects of the
// instructions.
func Measure(p *program.Program, sig *types.CodeSignature) (Stats, bool) {
	entry, ok := p.Code(sig)
	if !ok {
		return Stats{}, false
	}
	g := p.Graph()
	var s Stats
	for _, b := range g.Reachable(entry) {
		s.Blocks++
		s.Instructions += len(g.Code(b))
	}
	s.MaxStack = maxStack(g, entry)
	return s, true
}

func maxStack(g *ir.Graph, entry ir.BlockID) int {
	depthAt := map[ir.BlockID]int{}
	deepest := 0
	var walk func(b ir.BlockID, depth int)
	walk = func(b ir.BlockID, depth int) {
		if d, seen := depthAt[b]; seen && d >= depth {
			return
		}
		depthAt[b] = depth
		for _, instr := range g.Code(b) {
			depth -= instr.Pops()
			depth += instr.Pushes()
			if depth > deepest {
				deepest = depth
			}
		}
		for _, s := range g.Successors(b) {
			walk(s, depth)
		}
	}
	walk(entry, 0)
	return deepest
}

func (s *Summary) Emit(p *program.Program) error {
	var entries []string
	if p.Start() != nil {
		entries = append(entries, p.Start().String())
	}
	for _, t := range p.Tests() {
		entries = append(entries, t.String())
	}
	if _, err := fmt.Fprintf(s.w, "program with %d members, entry points %v\n", p.Len(), entries); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(s.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MEMBER\tKIND\tBLOCKS\tINSTRUCTIONS\tMAX STACK")
	for _, sig := range p.Signatures() {
		switch sig := sig.(type) {
		case *types.FieldSignature:
			fmt.Fprintf(tw, "%s\tfield\t\t\t\n", sig)
		case *types.CodeSignature:
			st, _ := Measure(p, sig)
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", sig, sig.Kind(), st.Blocks, st.Instructions, st.MaxStack)
		}
	}
	return tw.Flush()
}
