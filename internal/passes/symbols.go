// Package passes holds the built-in analysis passes: the derived
// representations detectors depend on.
package passes

import (
	"context"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/ir"
	"github.com/xab-mack/smartanalyzer/internal/pass"
)

// Built-in pass ids. Also the artifact keys each pass writes under.
const (
	SymbolTable   pass.ID = "symbol-table"
	CallGraph     pass.ID = "call-graph"
	Cfg           pass.ID = "cfg"
	Liveness      pass.ID = "liveness"
	ReachingDefs  pass.ID = "reaching-defs"
	Taint         pass.ID = "taint"
	StateMutation pass.ID = "state-mutation"
	GoSSA         pass.ID = "go-ssa"
)

// Symbols is the symbol table built from a program's units.
type Symbols struct {
	Contracts map[string]*ir.Contract
	Functions map[string]*ir.Function // keyed by Contract.Name
	StateVars map[string]map[string]*ir.Variable
}

// IsStateVar reports whether name is a state variable of the contract.
func (s *Symbols) IsStateVar(contract, name string) bool {
	vars, ok := s.StateVars[contract]
	if !ok {
		return false
	}
	_, ok = vars[name]
	return ok
}

type symbolTablePass struct{}

func NewSymbolTablePass() pass.Pass { return &symbolTablePass{} }

func (p *symbolTablePass) ID() pass.ID { return SymbolTable }

func (p *symbolTablePass) Metadata() pass.Metadata {
	return pass.Metadata{Level: pass.LevelModule, Representation: pass.RepAst}
}

func (p *symbolTablePass) Completed(actx *analysis.Context) bool {
	return actx.Completed(string(SymbolTable))
}

func (p *symbolTablePass) Run(_ context.Context, actx *analysis.Context) error {
	sym := &Symbols{
		Contracts: make(map[string]*ir.Contract),
		Functions: make(map[string]*ir.Function),
		StateVars: make(map[string]map[string]*ir.Variable),
	}
	for _, u := range actx.Program.Units {
		for _, c := range u.Contracts {
			sym.Contracts[c.Name] = c
			vars := make(map[string]*ir.Variable, len(c.StateVars))
			for _, v := range c.StateVars {
				vars[v.Name] = v
			}
			sym.StateVars[c.Name] = vars
			for _, f := range c.Functions {
				sym.Functions[f.Key()] = f
			}
		}
	}
	actx.PutArtifact(string(SymbolTable), sym)
	return nil
}
