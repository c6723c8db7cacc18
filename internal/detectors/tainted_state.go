package detectors

import (
	"context"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/dataflow"
	"github.com/xab-mack/smartanalyzer/internal/ir"
	"github.com/xab-mack/smartanalyzer/internal/model"
	"github.com/xab-mack/smartanalyzer/internal/pass"
	"github.com/xab-mack/smartanalyzer/internal/passes"
	"github.com/xab-mack/smartanalyzer/internal/util"
)

// taintedStateWrite flags state variables assigned directly from
// caller-controlled input with no validation between.
type taintedStateWrite struct{}

func (d *taintedStateWrite) ID() pass.ID { return "tainted-state-write" }

func (d *taintedStateWrite) Metadata() pass.Metadata {
	return pass.Metadata{
		Level:          pass.LevelStatement,
		Representation: pass.RepIr,
		Dependencies:   []pass.ID{passes.Taint, passes.Cfg, passes.SymbolTable},
	}
}

func (d *taintedStateWrite) Meta() model.DetectorMeta {
	return model.DetectorMeta{
		ID:             string(d.ID()),
		Title:          "State variable written from unvalidated input",
		Kind:           model.KindVulnerability,
		Risk:           model.RiskMedium,
		Confidence:     model.ConfidenceLow,
		CWEIDs:         []int{20},
		Recommendation: "Validate caller-supplied values before persisting them to contract state.",
	}
}

func (d *taintedStateWrite) Detect(_ context.Context, actx *analysis.Context) ([]model.Finding, error) {
	taints, err := analysis.Artifact[passes.TaintMaps](actx, string(passes.Taint))
	if err != nil {
		return nil, err
	}
	graphs, err := analysis.Artifact[passes.Graphs](actx, string(passes.Cfg))
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
				res := taints[fn.Key()]
				g := graphs[fn.Key()]
				if res == nil || g == nil {
					continue
				}
				validated := map[string]bool{}
				for _, b := range g.Blocks() {
					fact := res.In[b.ID]
					for si := range b.Stmts {
						s := &b.Stmts[si]
						if s.Kind == ir.StmtRequire {
							for _, use := range s.Uses {
								validated[use] = true
							}
						}
						if (s.Kind == ir.StmtStateWrite || sym.IsStateVar(fn.Contract, s.Def)) && s.Def != "" {
							for _, use := range s.Uses {
								if use != s.Def && !validated[use] && dataflow.Tainted(fact, use) {
									findings = append(findings, model.Finding{
										Location:    model.Location{File: u.Path, StartLine: s.Line, EndLine: s.Line},
										Entity:      fn.Key(),
										Description: "State variable " + s.Def + " is assigned from " + use + " without validation.",
										Snippet:     util.ExtractSnippet(u.Source, s.Line, s.Line, 6),
										Fingerprint: util.Fingerprint(string(d.ID()), u.Path, s.Line, s.Line, s.Def+"<-"+use),
									})
									break
								}
							}
						}
						fact = dataflow.TransferTaint(s, fact)
					}
				}
			}
		}
	}
	return findings, nil
}
