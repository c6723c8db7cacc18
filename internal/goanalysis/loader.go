// Package goanalysis is the Go-chaincode front-end: it loads packages
// and lowers them to SSA for the detectors that inspect chaincode.
package goanalysis

import (
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// LoadPackages loads Go packages with syntax and types info.
func LoadPackages(dir string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedDeps,
		Dir: dir,
	}
	return packages.Load(cfg, "./...")
}

// BuildSSA constructs an SSA program for loaded packages.
func BuildSSA(pkgs []*packages.Package) (*ssa.Program, []*ssa.Package) {
	prog, ssaPkgs := ssautil.AllPackages(pkgs, 0)
	prog.Build()
	return prog, ssaPkgs
}
