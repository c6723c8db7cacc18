package detectors

import (
	"context"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/ir"
	"github.com/xab-mack/smartanalyzer/internal/model"
	"github.com/xab-mack/smartanalyzer/internal/pass"
	"github.com/xab-mack/smartanalyzer/internal/passes"
	"github.com/xab-mack/smartanalyzer/internal/util"
)

// unprotectedSelfdestruct flags selfdestruct reachable without any
// caller check earlier in the function.
type unprotectedSelfdestruct struct{}

func (d *unprotectedSelfdestruct) ID() pass.ID { return "unprotected-selfdestruct" }

func (d *unprotectedSelfdestruct) Metadata() pass.Metadata {
	return pass.Metadata{
		Level:          pass.LevelFunction,
		Representation: pass.RepIr,
		Dependencies:   []pass.ID{passes.Cfg},
	}
}

func (d *unprotectedSelfdestruct) Meta() model.DetectorMeta {
	return model.DetectorMeta{
		ID:             string(d.ID()),
		Title:          "Unprotected selfdestruct",
		Kind:           model.KindVulnerability,
		Risk:           model.RiskCritical,
		Confidence:     model.ConfidenceMedium,
		CWEIDs:         []int{284},
		SWCIDs:         []int{106},
		Recommendation: "Guard selfdestruct behind an owner check, or remove it.",
		References:     []string{"https://swcregistry.io/docs/SWC-106"},
	}
}

// guardsSender reports whether the statement checks msg.sender.
func guardsSender(s *ir.Stmt) bool {
	if s.Kind != ir.StmtRequire {
		return false
	}
	for _, u := range s.Uses {
		if u == "msg.sender" {
			return true
		}
	}
	return false
}

func (d *unprotectedSelfdestruct) Detect(_ context.Context, actx *analysis.Context) ([]model.Finding, error) {
	graphs, err := analysis.Artifact[passes.Graphs](actx, string(passes.Cfg))
	if err != nil {
		return nil, err
	}

	var findings []model.Finding
	for _, u := range actx.Program.Units {
		for _, c := range u.Contracts {
			for _, fn := range c.Functions {
				g := graphs[fn.Key()]
				if g == nil {
					continue
				}
				guarded := false
				var hit *ir.Stmt
				for _, b := range g.Blocks() {
					for si := range b.Stmts {
						s := &b.Stmts[si]
						if guardsSender(s) {
							guarded = true
						}
						if s.Kind == ir.StmtExternalCall && s.Callee == "selfdestruct" && hit == nil {
							hit = s
						}
					}
					// a branch on msg.sender counts as a guard too
					if b.Term.Kind == ir.TermCondBranch {
						for _, cu := range b.Term.Cond {
							if cu == "msg.sender" {
								guarded = true
							}
						}
					}
				}
				if hit != nil && !guarded {
					findings = append(findings, model.Finding{
						Location:    model.Location{File: u.Path, StartLine: hit.Line, EndLine: hit.Line},
						Entity:      fn.Key(),
						Description: "selfdestruct is reachable without any check on msg.sender.",
						Snippet:     util.ExtractSnippet(u.Source, hit.Line, hit.Line, 6),
						Fingerprint: util.Fingerprint(string(d.ID()), u.Path, hit.Line, hit.Line, fn.Key()),
					})
				}
			}
		}
	}
	return findings, nil
}
