// Package detectors holds the built-in bug detection passes.
package detectors

import (
	"github.com/xab-mack/smartanalyzer/internal/detect"
	"github.com/xab-mack/smartanalyzer/internal/ir"
	"github.com/xab-mack/smartanalyzer/internal/passes"
)

// RegisterBuiltin registers the built-in analysis passes and detectors
// into a detection manager. Registration order fixes report order.
func RegisterBuiltin(m *detect.Manager) {
	m.RegisterPass(passes.NewSymbolTablePass())
	m.RegisterPass(passes.NewCallGraphPass())
	m.RegisterPass(passes.NewCfgPass())
	m.RegisterPass(passes.NewLivenessPass())
	m.RegisterPass(passes.NewReachingDefsPass())
	m.RegisterPass(passes.NewTaintPass())
	m.RegisterPass(passes.NewStateMutationPass())
	m.RegisterPass(passes.NewGoSSAPass())

	m.RegisterDetector(&txOrigin{})
	m.RegisterDetector(&reentrancy{})
	m.RegisterDetector(&uncheckedCall{})
	m.RegisterDetector(&delegatecallUnsafe{})
	m.RegisterDetector(&unprotectedSelfdestruct{})
	m.RegisterDetector(&taintedStateWrite{})
	m.RegisterDetector(&timestampDependence{})
	m.RegisterDetector(&chaincodeGlobalState{})
}

// unitOf finds the unit a function came from, for source snippets.
func unitOf(p *ir.Program, fn *ir.Function) *ir.Unit {
	for _, u := range p.Units {
		for _, c := range u.Contracts {
			if c.Name != fn.Contract {
				continue
			}
			for _, f := range c.Functions {
				if f == fn {
					return u
				}
			}
		}
	}
	return nil
}
