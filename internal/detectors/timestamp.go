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

// timestampDependence flags control flow decided by block.timestamp.
type timestampDependence struct{}

func (d *timestampDependence) ID() pass.ID { return "timestamp-dependence" }

func (d *timestampDependence) Metadata() pass.Metadata {
	return pass.Metadata{
		Level:          pass.LevelStatement,
		Representation: pass.RepIr,
		Dependencies:   []pass.ID{passes.Cfg},
	}
}

func (d *timestampDependence) Meta() model.DetectorMeta {
	return model.DetectorMeta{
		ID:             string(d.ID()),
		Title:          "Control flow depends on block.timestamp",
		Kind:           model.KindVulnerability,
		Risk:           model.RiskLow,
		Confidence:     model.ConfidenceMedium,
		SWCIDs:         []int{116},
		Recommendation: "Do not use block.timestamp as a source of randomness or for tight time windows; validators can skew it.",
		References:     []string{"https://swcregistry.io/docs/SWC-116"},
	}
}

func usesTimestamp(names []string) bool {
	for _, n := range names {
		if n == "block.timestamp" || n == "now" {
			return true
		}
	}
	return false
}

func (d *timestampDependence) Detect(_ context.Context, actx *analysis.Context) ([]model.Finding, error) {
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
				emit := func(line int) {
					findings = append(findings, model.Finding{
						Location:    model.Location{File: u.Path, StartLine: line, EndLine: line},
						Entity:      fn.Key(),
						Description: "A branch or guard in " + fn.Key() + " is decided by block.timestamp.",
						Snippet:     util.ExtractSnippet(u.Source, line, line, 6),
						Fingerprint: util.Fingerprint(string(d.ID()), u.Path, line, line, fn.Key()),
					})
				}
				for _, b := range g.Blocks() {
					for si := range b.Stmts {
						s := &b.Stmts[si]
						if s.Kind == ir.StmtRequire && usesTimestamp(s.Uses) {
							emit(s.Line)
						}
					}
					if b.Term.Kind == ir.TermCondBranch && usesTimestamp(b.Term.Cond) {
						emit(b.Term.Line)
					}
				}
			}
		}
	}
	return findings, nil
}
