package passes

import (
	"context"
	"sort"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/ir"
	"github.com/xab-mack/smartanalyzer/internal/pass"
)

// Callees maps a function key to the functions it may call, resolved
// against the symbol table where possible. Unresolved callees keep
// their raw name.
type Callees map[string][]string

type callGraphPass struct{}

func NewCallGraphPass() pass.Pass { return &callGraphPass{} }

func (p *callGraphPass) ID() pass.ID { return CallGraph }

func (p *callGraphPass) Metadata() pass.Metadata {
	return pass.Metadata{
		Level:          pass.LevelModule,
		Representation: pass.RepHybrid,
		Dependencies:   []pass.ID{SymbolTable},
	}
}

func (p *callGraphPass) Completed(actx *analysis.Context) bool {
	return actx.Completed(string(CallGraph))
}

func (p *callGraphPass) Run(_ context.Context, actx *analysis.Context) error {
	sym, err := analysis.Artifact[*Symbols](actx, string(SymbolTable))
	if err != nil {
		return err
	}
	graph := Callees{}
	for _, fn := range actx.Program.Functions() {
		seen := map[string]bool{}
		var callees []string
		addCall := func(callee string) {
			if callee == "" {
				return
			}
			// Same-contract call if the target exists there.
			if _, ok := sym.Functions[fn.Contract+"."+callee]; ok {
				callee = fn.Contract + "." + callee
			}
			if !seen[callee] {
				seen[callee] = true
				callees = append(callees, callee)
			}
		}
		for bi := range fn.Blocks {
			for si := range fn.Blocks[bi].Stmts {
				s := &fn.Blocks[bi].Stmts[si]
				if s.Kind == ir.StmtCall || s.Kind == ir.StmtExternalCall {
					addCall(s.Callee)
				}
			}
		}
		sort.Strings(callees)
		graph[fn.Key()] = callees
	}
	actx.PutArtifact(string(CallGraph), graph)
	return nil
}
