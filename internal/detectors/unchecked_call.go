package detectors

import (
	"context"
	"strings"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/ir"
	"github.com/xab-mack/smartanalyzer/internal/model"
	"github.com/xab-mack/smartanalyzer/internal/pass"
	"github.com/xab-mack/smartanalyzer/internal/passes"
	"github.com/xab-mack/smartanalyzer/internal/util"
)

// uncheckedCall flags low-level calls whose success value is dropped.
type uncheckedCall struct{}

func (d *uncheckedCall) ID() pass.ID { return "unchecked-call" }

func (d *uncheckedCall) Metadata() pass.Metadata {
	return pass.Metadata{
		Level:          pass.LevelStatement,
		Representation: pass.RepIr,
		Dependencies:   []pass.ID{passes.SymbolTable},
	}
}

func (d *uncheckedCall) Meta() model.DetectorMeta {
	return model.DetectorMeta{
		ID:             string(d.ID()),
		Title:          "Unchecked low-level call result",
		Kind:           model.KindVulnerability,
		Risk:           model.RiskMedium,
		Confidence:     model.ConfidenceMedium,
		CWEIDs:         []int{252},
		SWCIDs:         []int{104},
		Recommendation: "Check the boolean result of call/send, or use transfer which reverts on failure.",
		References:     []string{"https://swcregistry.io/docs/SWC-104"},
	}
}

func (d *uncheckedCall) Detect(_ context.Context, actx *analysis.Context) ([]model.Finding, error) {
	var findings []model.Finding
	for _, u := range actx.Program.Units {
		for _, c := range u.Contracts {
			for _, fn := range c.Functions {
				for bi := range fn.Blocks {
					for si := range fn.Blocks[bi].Stmts {
						s := &fn.Blocks[bi].Stmts[si]
						if s.Kind != ir.StmtExternalCall || s.Def != "" {
							continue
						}
						if !strings.HasSuffix(s.Callee, ".call") && !strings.HasSuffix(s.Callee, ".send") {
							continue
						}
						findings = append(findings, model.Finding{
							Location:    model.Location{File: u.Path, StartLine: s.Line, EndLine: s.Line},
							Entity:      fn.Key(),
							Description: "The result of " + s.Callee + " is not assigned or checked; a failed call goes unnoticed.",
							Snippet:     util.ExtractSnippet(u.Source, s.Line, s.Line, 6),
							Fingerprint: util.Fingerprint(string(d.ID()), u.Path, s.Line, s.Line, s.Callee),
						})
					}
				}
			}
		}
	}
	return findings, nil
}
