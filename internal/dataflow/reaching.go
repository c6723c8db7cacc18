package dataflow

import (
	"context"

	"github.com/xab-mack/smartanalyzer/internal/cfg"
	"github.com/xab-mack/smartanalyzer/internal/ir"
	"github.com/xab-mack/smartanalyzer/internal/lattice"
)

// Def is one definition site, identified by the defined variable and
// the source line of the defining statement.
type Def struct {
	Var  string
	Line int
}

// ReachingDefs computes which definitions may reach each block
// boundary. Forward power-set analysis; a definition of a variable
// kills every other definition of the same variable.
func ReachingDefs(ctx context.Context, g *cfg.Graph) (*Result[lattice.Set[Def]], error) {
	lat := lattice.Powerset[Def]{}
	tf := func(s *ir.Stmt, in lattice.Set[Def]) lattice.Set[Def] {
		if s.Def == "" {
			return in
		}
		out := make(lattice.Set[Def], len(in)+1)
		for d := range in {
			if d.Var != s.Def {
				out[d] = struct{}{}
			}
		}
		out[Def{Var: s.Def, Line: s.Line}] = struct{}{}
		return out
	}
	return Solve(ctx, g, lat, Forward, lat.Bottom(), tf)
}
