package passes

import (
	"context"
	"sort"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/dataflow"
	"github.com/xab-mack/smartanalyzer/internal/ir"
	"github.com/xab-mack/smartanalyzer/internal/lattice"
	"github.com/xab-mack/smartanalyzer/internal/pass"
)

// UnsafeWrite is a state-variable write reachable after an external
// call within the same function: the checks-effects-interactions
// ordering is violated on at least one path.
type UnsafeWrite struct {
	Var  string
	Line int
}

// Mutations maps a function key to its unsafe writes, sorted by line.
type Mutations map[string][]UnsafeWrite

const extCallSeen = "external-call-seen"

type stateMutationPass struct{}

func NewStateMutationPass() pass.Pass { return &stateMutationPass{} }

func (p *stateMutationPass) ID() pass.ID { return StateMutation }

func (p *stateMutationPass) Metadata() pass.Metadata {
	return pass.Metadata{
		Level:          pass.LevelFunction,
		Representation: pass.RepIr,
		Dependencies:   []pass.ID{Cfg, SymbolTable},
	}
}

func (p *stateMutationPass) Completed(actx *analysis.Context) bool {
	return actx.Completed(string(StateMutation))
}

func (p *stateMutationPass) Run(ctx context.Context, actx *analysis.Context) error {
	graphs, err := analysis.Artifact[Graphs](actx, string(Cfg))
	if err != nil {
		return err
	}
	sym, err := analysis.Artifact[*Symbols](actx, string(SymbolTable))
	if err != nil {
		return err
	}

	lat := lattice.Powerset[string]{}
	tf := func(s *ir.Stmt, in lattice.Set[string]) lattice.Set[string] {
		if s.Kind != ir.StmtExternalCall {
			return in
		}
		out := in.Clone()
		out[extCallSeen] = struct{}{}
		return out
	}

	out := Mutations{}
	for key, g := range graphs {
		res, err := dataflow.Solve(ctx, g, lat, dataflow.Forward, lat.Bottom(), tf)
		if err != nil {
			return err
		}
		var writes []UnsafeWrite
		seen := map[UnsafeWrite]bool{}
		for _, b := range g.Blocks() {
			fact := res.In[b.ID]
			for si := range b.Stmts {
				s := &b.Stmts[si]
				isStateWrite := s.Kind == ir.StmtStateWrite ||
					(s.Def != "" && sym.IsStateVar(g.Fn.Contract, s.Def))
				if isStateWrite && fact.Has(extCallSeen) {
					w := UnsafeWrite{Var: s.Def, Line: s.Line}
					if !seen[w] {
						seen[w] = true
						writes = append(writes, w)
					}
				}
				fact = tf(s, fact)
			}
		}
		sort.Slice(writes, func(i, j int) bool {
			if writes[i].Line != writes[j].Line {
				return writes[i].Line < writes[j].Line
			}
			return writes[i].Var < writes[j].Var
		})
		out[key] = writes
	}
	actx.PutArtifact(string(StateMutation), out)
	return nil
}
