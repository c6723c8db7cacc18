// Package dataflow implements the generic worklist fixed-point solver
// used by the analysis passes. The solver is parameterized by a
// lattice, a direction, and a transfer function; it computes the least
// fixed point of the induced equations over a function's CFG.
package dataflow

import (
	"context"

	"github.com/xab-mack/smartanalyzer/internal/cfg"
	"github.com/xab-mack/smartanalyzer/internal/ir"
	"github.com/xab-mack/smartanalyzer/internal/lattice"
)

type Direction int

const (
	Forward Direction = iota
	Backward
)

// Transfer maps a statement's incoming fact to its outgoing fact.
// For Backward analyses "incoming" is the fact after the statement.
// Implementations must be pure and must not mutate in.
type Transfer[E any] func(s *ir.Stmt, in E) E

// TermTransfer lets an analysis account for a block's terminator
// (e.g. liveness of branch condition operands).
type TermTransfer[E any] func(t *ir.Terminator, in E) E

// Result holds the per-block boundary facts at the fixed point.
type Result[E any] struct {
	In  map[ir.BlockID]E
	Out map[ir.BlockID]E
}

type options[E any] struct {
	seedOrder []ir.BlockID
	term      TermTransfer[E]
}

type Option[E any] func(*options[E])

// WithSeedOrder overrides the order in which blocks are first queued.
// The final fixed point does not depend on it; only the number of
// iterations does.
func WithSeedOrder[E any](order []ir.BlockID) Option[E] {
	return func(o *options[E]) { o.seedOrder = append([]ir.BlockID(nil), order...) }
}

// WithTermTransfer adds a transfer step for block terminators.
func WithTermTransfer[E any](t TermTransfer[E]) Option[E] {
	return func(o *options[E]) { o.term = t }
}

// Solve runs the FIFO worklist algorithm to the unique least fixed
// point. Every block starts at bottom; init seeds the entry block's
// in-fact (Forward) or every exit block's out-fact (Backward).
// Termination is guaranteed for finite-height lattices. The context
// is checked between iterations, so cancellation is cooperative.
func Solve[E any](
	ctx context.Context,
	g *cfg.Graph,
	lat lattice.Lattice[E],
	dir Direction,
	init E,
	tf Transfer[E],
	opts ...Option[E],
) (*Result[E], error) {
	var o options[E]
	for _, opt := range opts {
		opt(&o)
	}

	blocks := g.Blocks()
	res := &Result[E]{
		In:  make(map[ir.BlockID]E, len(blocks)),
		Out: make(map[ir.BlockID]E, len(blocks)),
	}
	for i := range blocks {
		res.In[blocks[i].ID] = lat.Bottom()
		res.Out[blocks[i].ID] = lat.Bottom()
	}

	isExit := make(map[ir.BlockID]bool)
	for _, id := range g.Exits() {
		isExit[id] = true
	}

	seed := o.seedOrder
	if seed == nil {
		seed = make([]ir.BlockID, 0, len(blocks))
		for i := range blocks {
			seed = append(seed, blocks[i].ID)
		}
	}

	queue := make([]ir.BlockID, 0, len(seed))
	queued := make(map[ir.BlockID]bool, len(seed))
	push := func(id ir.BlockID) {
		if !queued[id] {
			queued[id] = true
			queue = append(queue, id)
		}
	}
	for _, id := range seed {
		push(id)
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := queue[0]
		queue = queue[1:]
		queued[id] = false

		b := g.Block(id)
		if b == nil {
			continue
		}

		switch dir {
		case Forward:
			in := lat.Bottom()
			for _, p := range g.Preds(id) {
				in = lat.Join(in, res.Out[p])
			}
			if id == g.Entry {
				in = lat.Join(in, init)
			}
			res.In[id] = in

			out := in
			for i := range b.Stmts {
				out = tf(&b.Stmts[i], out)
			}
			if o.term != nil {
				out = o.term(&b.Term, out)
			}
			if !lattice.Equal(lat, out, res.Out[id]) {
				res.Out[id] = out
				for _, s := range g.Succs(id) {
					push(s)
				}
			}

		case Backward:
			out := lat.Bottom()
			for _, s := range g.Succs(id) {
				out = lat.Join(out, res.In[s])
			}
			if isExit[id] {
				out = lat.Join(out, init)
			}
			res.Out[id] = out

			in := out
			if o.term != nil {
				in = o.term(&b.Term, in)
			}
			for i := len(b.Stmts) - 1; i >= 0; i-- {
				in = tf(&b.Stmts[i], in)
			}
			if !lattice.Equal(lat, in, res.In[id]) {
				res.In[id] = in
				for _, p := range g.Preds(id) {
					push(p)
				}
			}
		}
	}
	return res, nil
}
