package dataflow

import (
	"context"
	"strings"

	"github.com/xab-mack/smartanalyzer/internal/cfg"
	"github.com/xab-mack/smartanalyzer/internal/ir"
	"github.com/xab-mack/smartanalyzer/internal/lattice"
)

// TaintFact maps a variable to its taint: bottom = untainted, a value
// = tainted from exactly one known source, top = tainted from more
// than one source.
type TaintFact = map[string]lattice.FlatElem[string]

// TaintLattice is the map lattice used by the taint analysis.
func TaintLattice() lattice.Map[string, lattice.FlatElem[string]] {
	return lattice.Map[string, lattice.FlatElem[string]]{Inner: lattice.Flat[string]{}}
}

// IsTaintSource reports whether a read of name introduces taint on its
// own: transaction environment reads an external caller controls.
func IsTaintSource(name string) bool {
	switch {
	case strings.HasPrefix(name, "msg."):
		return true
	case strings.HasPrefix(name, "tx."):
		return true
	case name == "block.timestamp" || name == "block.number":
		return true
	}
	return false
}

// EntryTaint builds the initial fact for a function: parameters of
// externally callable functions are attacker-controlled.
func EntryTaint(fn *ir.Function) TaintFact {
	fact := TaintFact{}
	switch fn.Visibility {
	case "public", "external", "":
	default:
		return fact
	}
	for _, p := range fn.Params {
		fact[p.Name] = lattice.FlatValue("param:" + p.Name)
	}
	return fact
}

// TransferTaint is the taint transfer for one statement: a definition
// is tainted by the join of its operands' taints, where environment
// reads are sources themselves. A definition with untainted operands
// clears any previous taint on the defined variable.
func TransferTaint(s *ir.Stmt, in TaintFact) TaintFact {
	if s.Def == "" {
		return in
	}
	flat := lattice.Flat[string]{}
	t := lattice.FlatBottom[string]()
	for _, u := range s.Uses {
		if IsTaintSource(u) {
			t = flat.Join(t, lattice.FlatValue(u))
		} else if cur, ok := in[u]; ok {
			t = flat.Join(t, cur)
		}
	}
	out := make(TaintFact, len(in)+1)
	for k, v := range in {
		if k != s.Def {
			out[k] = v
		}
	}
	if t.IsVal || t.IsTop {
		out[s.Def] = t
	}
	return out
}

// Taint propagates taint forward to a fixed point over the CFG.
func Taint(ctx context.Context, g *cfg.Graph, entry TaintFact) (*Result[TaintFact], error) {
	return Solve(ctx, g, TaintLattice(), Forward, entry, TransferTaint)
}

// Tainted reports whether name carries taint in fact, directly or as
// an environment source.
func Tainted(fact TaintFact, name string) bool {
	if IsTaintSource(name) {
		return true
	}
	t, ok := fact[name]
	return ok && (t.IsVal || t.IsTop)
}
