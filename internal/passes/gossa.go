package passes

import (
	"context"
	"fmt"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/goanalysis"
	"github.com/xab-mack/smartanalyzer/internal/pass"
)

// SSAArtifact holds the lowered form of a project's Go chaincode.
type SSAArtifact struct {
	Packages    []*packages.Package
	Program     *ssa.Program
	SSAPackages []*ssa.Package
}

type goSSAPass struct{}

func NewGoSSAPass() pass.Pass { return &goSSAPass{} }

func (p *goSSAPass) ID() pass.ID { return GoSSA }

func (p *goSSAPass) Metadata() pass.Metadata {
	return pass.Metadata{Level: pass.LevelModule, Representation: pass.RepIr}
}

func (p *goSSAPass) Completed(actx *analysis.Context) bool {
	return actx.Completed(string(GoSSA))
}

// Run loads and lowers chaincode for every Go package directory on the
// context. Projects without Go code complete with an empty artifact.
func (p *goSSAPass) Run(_ context.Context, actx *analysis.Context) error {
	art := &SSAArtifact{}
	for _, dir := range actx.GoPackageDirs {
		pkgs, err := goanalysis.LoadPackages(dir)
		if err != nil {
			return fmt.Errorf("loading go packages in %s: %w", dir, err)
		}
		art.Packages = append(art.Packages, pkgs...)
	}
	if len(art.Packages) > 0 {
		art.Program, art.SSAPackages = goanalysis.BuildSSA(art.Packages)
	}
	actx.PutArtifact(string(GoSSA), art)
	return nil
}
