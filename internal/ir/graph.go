package ir

// BlockID addresses a block inside a Graph.
type BlockID int32

// NoBlock is the zero successor.
const NoBlock BlockID = -1

type block struct {
	code      []Instruction
	succ      []BlockID
	mergeable bool
}

// Graph is an arena of basic blocks. Blocks are addressed by index, so back
// edges of loops are plain successor entries.
//
// A block has zero, one or two successors. A block with two successors ends
// in a branch: each successor starts with a Branching instruction and the one
// whose test holds is taken.
type Graph struct {
	blocks []block
}

// NewGraph creates an empty arena.
func NewGraph() *Graph {
	return &Graph{}
}

func (g *Graph) add(b block) BlockID {
	g.blocks = append(g.blocks, b)
	return BlockID(len(g.blocks) - 1)
}

// Len returns the number of blocks ever created in the arena.
func (g *Graph) Len() int {
	return len(g.blocks)
}

// Final creates a block ending the code with instr.
func (g *Graph) Final(instr Final) BlockID {
	return g.add(block{code: []Instruction{instr}, mergeable: true})
}

// Branch creates a block that continues with yes when cond holds and with no
// otherwise.
func (g *Graph) Branch(cond Branching, yes, no BlockID) BlockID {
	noSide := g.Prefix(no, cond.Negate())
	yesSide := g.Prefix(yes, cond)
	return g.add(block{
		code:      []Instruction{Nop{}},
		succ:      []BlockID{noSide, yesSide},
		mergeable: true,
	})
}

// Pivot creates the entry block of a loop. Its successor is set later with
// Link, once the loop body has been translated.
func (g *Graph) Pivot() BlockID {
	return g.add(block{code: []Instruction{Nop{}}})
}

// Prefix returns a block running code and then b. A mergeable b is extended
// in place, losing its leading no-ops; otherwise a new block is created in
// front of it.
func (g *Graph) Prefix(b BlockID, code ...Instruction) BlockID {
	for i := len(code) - 1; i >= 0; i-- {
		b = g.prefix(b, code[i])
	}
	return b
}

func (g *Graph) prefix(b BlockID, instr Instruction) BlockID {
	blk := &g.blocks[b]
	if !blk.mergeable {
		return g.add(block{code: []Instruction{instr}, succ: []BlockID{b}, mergeable: true})
	}
	rest := blk.code
	for len(rest) > 0 && IsNop(rest[0]) {
		rest = rest[1:]
	}
	code := make([]Instruction, 0, len(rest)+1)
	blk.code = append(append(code, instr), rest...)
	return b
}

// Link adds to as a successor of from.
func (g *Graph) Link(from, to BlockID) {
	g.blocks[from].succ = append(g.blocks[from].succ, to)
}

// DoNotMerge forbids prefixing b in place. It is used on blocks that more
// than one predecessor will be prefixed in front of.
func (g *Graph) DoNotMerge(b BlockID) {
	g.blocks[b].mergeable = false
}

// Mergeable reports whether b may still be prefixed in place.
func (g *Graph) Mergeable(b BlockID) bool {
	return g.blocks[b].mergeable
}

// Code returns the instructions of b.
func (g *Graph) Code(b BlockID) []Instruction {
	return g.blocks[b].code
}

// Successors returns the successors of b.
func (g *Graph) Successors(b BlockID) []BlockID {
	return g.blocks[b].succ
}

// Reachable lists the blocks reachable from start in depth-first preorder.
func (g *Graph) Reachable(start BlockID) []BlockID {
	seen := make(map[BlockID]bool)
	var out []BlockID
	var visit func(BlockID)
	visit = func(b BlockID) {
		if seen[b] {
			return
		}
		seen[b] = true
		out = append(out, b)
		for _, s := range g.blocks[b].succ {
			visit(s)
		}
	}
	visit(start)
	return out
}

func (g *Graph) isBareNop(b BlockID) bool {
	code := g.blocks[b].code
	return len(code) == 1 && IsNop(code[0])
}

// Cleaner removes no-op blocks from the graph and reports every instruction
// of the blocks it visits. A Cleaner visits each block at most once, across
// all calls to Clean.
type Cleaner struct {
	g       *Graph
	visited map[BlockID]bool
	visit   func(Instruction)
}

// NewCleaner creates a cleaner over g. visit, when not nil, is called for
// every instruction of every reachable block.
func (g *Graph) NewCleaner(visit func(Instruction)) *Cleaner {
	return &Cleaner{g: g, visited: make(map[BlockID]bool), visit: visit}
}

// Clean splices single no-op blocks out of the successor lists of the blocks
// reachable from start. A chain of no-op blocks is skipped as a whole; a no-op
// block with two successors is only spliced into a predecessor with a single
// successor, so no block ever gets more than two successors.
func (c *Cleaner) Clean(start BlockID) {
	if c.visited[start] {
		return
	}
	c.visited[start] = true
	blk := &c.g.blocks[start]
	for i, s := range blk.succ {
		blk.succ[i] = c.skipNops(start, s)
	}
	if len(blk.succ) == 1 {
		s := blk.succ[0]
		if s != start && c.g.isBareNop(s) && len(c.g.blocks[s].succ) == 2 {
			blk.succ = append([]BlockID(nil), c.g.blocks[s].succ...)
		}
	}
	for _, s := range blk.succ {
		c.Clean(s)
	}
	if c.visit != nil {
		for _, instr := range blk.code {
			c.visit(instr)
		}
	}
}

func (c *Cleaner) skipNops(from, s BlockID) BlockID {
	seen := map[BlockID]bool{from: true}
	for !seen[s] && c.g.isBareNop(s) && len(c.g.blocks[s].succ) == 1 {
		seen[s] = true
		s = c.g.blocks[s].succ[0]
	}
	return s
}
