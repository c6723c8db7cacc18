package dataflow

import (
	"context"

	"github.com/xab-mack/smartanalyzer/internal/cfg"
	"github.com/xab-mack/smartanalyzer/internal/ir"
	"github.com/xab-mack/smartanalyzer/internal/lattice"
)

// Liveness computes live variables per block boundary: a variable is
// live at a point if some path from that point reads it before
// writing it. Backward power-set analysis, nothing live at exits.
func Liveness(ctx context.Context, g *cfg.Graph) (*Result[lattice.Set[string]], error) {
	lat := lattice.Powerset[string]{}
	tf := func(s *ir.Stmt, out lattice.Set[string]) lattice.Set[string] {
		in := out.Clone()
		if s.Def != "" {
			delete(in, s.Def)
		}
		for _, u := range s.Uses {
			in[u] = struct{}{}
		}
		return in
	}
	term := func(t *ir.Terminator, out lattice.Set[string]) lattice.Set[string] {
		if len(t.Cond) == 0 {
			return out
		}
		in := out.Clone()
		for _, u := range t.Cond {
			in[u] = struct{}{}
		}
		return in
	}
	return Solve(ctx, g, lat, Backward, lat.Bottom(), tf, WithTermTransfer(term))
}
