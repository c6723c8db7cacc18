package detectors

import (
	"context"
	"strings"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/dataflow"
	"github.com/xab-mack/smartanalyzer/internal/ir"
	"github.com/xab-mack/smartanalyzer/internal/model"
	"github.com/xab-mack/smartanalyzer/internal/pass"
	"github.com/xab-mack/smartanalyzer/internal/passes"
	"github.com/xab-mack/smartanalyzer/internal/util"
)

// delegatecallUnsafe flags delegatecall targets that may be influenced
// by a caller, using the taint fixed point to track the target.
type delegatecallUnsafe struct{}

func (d *delegatecallUnsafe) ID() pass.ID { return "delegatecall-unsafe" }

func (d *delegatecallUnsafe) Metadata() pass.Metadata {
	return pass.Metadata{
		Level:          pass.LevelStatement,
		Representation: pass.RepIr,
		Dependencies:   []pass.ID{passes.Taint, passes.Cfg},
	}
}

func (d *delegatecallUnsafe) Meta() model.DetectorMeta {
	return model.DetectorMeta{
		ID:             string(d.ID()),
		Title:          "Delegatecall to a caller-influenced target",
		Kind:           model.KindVulnerability,
		Risk:           model.RiskCritical,
		Confidence:     model.ConfidenceMedium,
		CWEIDs:         []int{829},
		SWCIDs:         []int{112},
		Recommendation: "Restrict delegatecall targets to immutable, audited addresses.",
		References:     []string{"https://swcregistry.io/docs/SWC-112"},
	}
}

func (d *delegatecallUnsafe) Detect(_ context.Context, actx *analysis.Context) ([]model.Finding, error) {
	taints, err := analysis.Artifact[passes.TaintMaps](actx, string(passes.Taint))
	if err != nil {
		return nil, err
	}
	graphs, err := analysis.Artifact[passes.Graphs](actx, string(passes.Cfg))
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
				for _, b := range g.Blocks() {
					fact := res.In[b.ID]
					for si := range b.Stmts {
						s := &b.Stmts[si]
						if s.Kind == ir.StmtExternalCall && strings.HasSuffix(s.Callee, ".delegatecall") {
							target := strings.TrimSuffix(s.Callee, ".delegatecall")
							if dataflow.Tainted(fact, target) {
								findings = append(findings, model.Finding{
									Location:    model.Location{File: u.Path, StartLine: s.Line, EndLine: s.Line},
									Entity:      fn.Key(),
									Description: "delegatecall target " + target + " is derived from caller-controlled input.",
									Snippet:     util.ExtractSnippet(u.Source, s.Line, s.Line, 6),
									Fingerprint: util.Fingerprint(string(d.ID()), u.Path, s.Line, s.Line, target),
								})
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
