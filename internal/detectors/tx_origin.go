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

// txOrigin flags tx.origin used in authorization checks: require
// conditions and branch conditions.
type txOrigin struct{}

func (d *txOrigin) ID() pass.ID { return "tx-origin-auth" }

func (d *txOrigin) Metadata() pass.Metadata {
	return pass.Metadata{
		Level:          pass.LevelStatement,
		Representation: pass.RepIr,
		Dependencies:   []pass.ID{passes.SymbolTable},
	}
}

func (d *txOrigin) Meta() model.DetectorMeta {
	return model.DetectorMeta{
		ID:             string(d.ID()),
		Title:          "tx.origin used for authorization",
		Kind:           model.KindVulnerability,
		Risk:           model.RiskHigh,
		Confidence:     model.ConfidenceHigh,
		CWEIDs:         []int{477},
		SWCIDs:         []int{115},
		Recommendation: "Replace tx.origin with msg.sender and implement proper access control.",
		References:     []string{"https://swcregistry.io/docs/SWC-115"},
	}
}

func hasTxOrigin(uses []string) bool {
	for _, u := range uses {
		if u == "tx.origin" {
			return true
		}
	}
	return false
}

func (d *txOrigin) Detect(_ context.Context, actx *analysis.Context) ([]model.Finding, error) {
	var findings []model.Finding
	emit := func(u *ir.Unit, fn *ir.Function, line int) {
		findings = append(findings, model.Finding{
			Location:    model.Location{File: u.Path, StartLine: line, EndLine: line},
			Entity:      fn.Key(),
			Description: "tx.origin is susceptible to phishing through intermediate contract calls.",
			Snippet:     util.ExtractSnippet(u.Source, line, line, 6),
			Fingerprint: util.Fingerprint(string(d.ID()), u.Path, line, line, fn.Key()),
		})
	}
	for _, u := range actx.Program.Units {
		for _, c := range u.Contracts {
			for _, fn := range c.Functions {
				for bi := range fn.Blocks {
					b := &fn.Blocks[bi]
					for si := range b.Stmts {
						s := &b.Stmts[si]
						if s.Kind == ir.StmtRequire && hasTxOrigin(s.Uses) {
							emit(u, fn, s.Line)
						}
					}
					if b.Term.Kind == ir.TermCondBranch && hasTxOrigin(b.Term.Cond) {
						emit(u, fn, b.Term.Line)
					}
				}
			}
		}
	}
	return findings, nil
}
