package cfg

import (
	"github.com/xab-mack/smartanalyzer/internal/ir"
)

// Graph is the control-flow graph of a single function: the function's
// blocks plus derived predecessor/successor adjacency. Construction is
// total; malformed terminators contribute no edges.
type Graph struct {
	Fn    *ir.Function
	Entry ir.BlockID

	succs map[ir.BlockID][]ir.BlockID
	preds map[ir.BlockID][]ir.BlockID
	exits []ir.BlockID
}

// Build derives the CFG for fn. A function with no blocks yields a
// graph with a single empty entry block so downstream analyses never
// special-case emptiness.
func Build(fn *ir.Function) *Graph {
	blocks := fn.Blocks
	if len(blocks) == 0 {
		blocks = []ir.Block{{ID: 0, Term: ir.Terminator{Kind: ir.TermReturn}}}
		fn = &ir.Function{
			Name:       fn.Name,
			Contract:   fn.Contract,
			Visibility: fn.Visibility,
			Mutability: fn.Mutability,
			Params:     fn.Params,
			Blocks:     blocks,
			Line:       fn.Line,
		}
	}
	g := &Graph{
		Fn:    fn,
		Entry: 0,
		succs: make(map[ir.BlockID][]ir.BlockID, len(blocks)),
		preds: make(map[ir.BlockID][]ir.BlockID, len(blocks)),
	}
	n := len(blocks)
	for i := range blocks {
		b := &blocks[i]
		ss := b.Term.Successors(n)
		g.succs[b.ID] = ss
		for _, s := range ss {
			g.preds[s] = append(g.preds[s], b.ID)
		}
		if len(ss) == 0 {
			g.exits = append(g.exits, b.ID)
		}
	}
	return g
}

func (g *Graph) Blocks() []ir.Block { return g.Fn.Blocks }

func (g *Graph) Block(id ir.BlockID) *ir.Block {
	if id < 0 || int(id) >= len(g.Fn.Blocks) {
		return nil
	}
	return &g.Fn.Blocks[id]
}

// Succs returns the successors of id in terminator order.
func (g *Graph) Succs(id ir.BlockID) []ir.BlockID { return g.succs[id] }

// Preds returns the predecessors of id in block order.
func (g *Graph) Preds(id ir.BlockID) []ir.BlockID { return g.preds[id] }

// Exits returns every block with no out-edges (return, revert,
// unreachable, or an unknown terminator).
func (g *Graph) Exits() []ir.BlockID { return append([]ir.BlockID(nil), g.exits...) }

// Reachable computes the set of blocks reachable from entry.
func (g *Graph) Reachable() map[ir.BlockID]bool {
	seen := make(map[ir.BlockID]bool, len(g.Fn.Blocks))
	stack := []ir.BlockID{g.Entry}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, g.succs[id]...)
	}
	return seen
}
