package detectors

import (
	"context"

	"golang.org/x/tools/go/ssa"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/model"
	"github.com/xab-mack/smartanalyzer/internal/pass"
	"github.com/xab-mack/smartanalyzer/internal/passes"
	"github.com/xab-mack/smartanalyzer/internal/util"
)

// chaincodeGlobalState flags writes to package-level variables in Go
// chaincode. Chaincode must be deterministic and endorsers do not
// share process state, so mutable globals are a consensus hazard.
type chaincodeGlobalState struct{}

func (d *chaincodeGlobalState) ID() pass.ID { return "chaincode-global-state" }

func (d *chaincodeGlobalState) Metadata() pass.Metadata {
	return pass.Metadata{
		Level:          pass.LevelModule,
		Representation: pass.RepIr,
		Dependencies:   []pass.ID{passes.GoSSA},
	}
}

func (d *chaincodeGlobalState) Meta() model.DetectorMeta {
	return model.DetectorMeta{
		ID:             string(d.ID()),
		Title:          "Chaincode mutates package-level state",
		Kind:           model.KindVulnerability,
		Risk:           model.RiskHigh,
		Confidence:     model.ConfidenceHigh,
		CWEIDs:         []int{665},
		Recommendation: "Keep chaincode state in the ledger via the chaincode stub, never in package-level variables.",
	}
}

func (d *chaincodeGlobalState) Detect(_ context.Context, actx *analysis.Context) ([]model.Finding, error) {
	art, err := analysis.Artifact[*passes.SSAArtifact](actx, string(passes.GoSSA))
	if err != nil {
		return nil, err
	}
	if art.Program == nil {
		return nil, nil
	}

	var findings []model.Finding
	for _, pkg := range art.SSAPackages {
		if pkg == nil {
			continue
		}
		for _, member := range pkg.Members {
			fn, ok := member.(*ssa.Function)
			if !ok || fn.Name() == "init" {
				continue
			}
			for _, b := range fn.Blocks {
				for _, instr := range b.Instrs {
					store, ok := instr.(*ssa.Store)
					if !ok {
						continue
					}
					g, ok := store.Addr.(*ssa.Global)
					if !ok {
						continue
					}
					pos := art.Program.Fset.Position(store.Pos())
					findings = append(findings, model.Finding{
						Location:    model.Location{File: pos.Filename, StartLine: pos.Line, EndLine: pos.Line},
						Entity:      fn.String(),
						Description: "Function " + fn.Name() + " writes package-level variable " + g.Name() + ".",
						Fingerprint: util.Fingerprint(string(d.ID()), pos.Filename, pos.Line, pos.Line, g.Name()),
					})
				}
			}
		}
	}
	return findings, nil
}
