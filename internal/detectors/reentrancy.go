package detectors

import (
	"context"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/model"
	"github.com/xab-mack/smartanalyzer/internal/pass"
	"github.com/xab-mack/smartanalyzer/internal/passes"
	"github.com/xab-mack/smartanalyzer/internal/util"
)

// reentrancy reports state writes reachable after an external call,
// using the state-mutation pass's path-sensitive ordering artifact.
type reentrancy struct{}

func (d *reentrancy) ID() pass.ID { return "reentrancy" }

func (d *reentrancy) Metadata() pass.Metadata {
	return pass.Metadata{
		Level:          pass.LevelFunction,
		Representation: pass.RepIr,
		Dependencies:   []pass.ID{passes.StateMutation, passes.SymbolTable},
	}
}

func (d *reentrancy) Meta() model.DetectorMeta {
	return model.DetectorMeta{
		ID:             string(d.ID()),
		Title:          "State write after external call",
		Kind:           model.KindVulnerability,
		Risk:           model.RiskHigh,
		Confidence:     model.ConfidenceMedium,
		CWEIDs:         []int{841},
		SWCIDs:         []int{107},
		Recommendation: "Update state before external calls, add a reentrancy guard, or switch to a pull-payment pattern.",
		References:     []string{"https://swcregistry.io/docs/SWC-107"},
	}
}

func (d *reentrancy) Detect(_ context.Context, actx *analysis.Context) ([]model.Finding, error) {
	muts, err := analysis.Artifact[passes.Mutations](actx, string(passes.StateMutation))
	if err != nil {
		return nil, err
	}
	sym, err := analysis.Artifact[*passes.Symbols](actx, string(passes.SymbolTable))
	if err != nil {
		return nil, err
	}

	var findings []model.Finding
	for _, u := range actx.Program.Units {
		for _, c := range u.Contracts {
			for _, fn := range c.Functions {
				if fn.Mutability == "view" || fn.Mutability == "pure" {
					continue
				}
				for _, w := range muts[fn.Key()] {
					if !sym.IsStateVar(fn.Contract, w.Var) {
						continue
					}
					findings = append(findings, model.Finding{
						Location:    model.Location{File: u.Path, StartLine: w.Line, EndLine: w.Line},
						Entity:      fn.Key(),
						Description: "Variable " + w.Var + " is written after an external call on at least one path; checks-effects-interactions is violated.",
						Snippet:     util.ExtractSnippet(u.Source, w.Line, w.Line, 8),
						Fingerprint: util.Fingerprint(string(d.ID()), u.Path, w.Line, w.Line, fn.Key()+"."+w.Var),
					})
				}
			}
		}
	}
	return findings, nil
}
