// Package pass implements the dependency-ordered pass engine: pass
// identity and metadata, the dependency graph and its level schedule,
// the executor, and the manager façade.
package pass

import (
	"context"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
)

// ID names one pass. IDs are opaque tags used as graph nodes and
// artifact-key prefixes; new passes extend the set freely.
type ID string

// Level is the program granularity a pass operates at.
type Level uint8

const (
	LevelExpression Level = iota
	LevelStatement
	LevelFunction
	LevelModule
)

func (l Level) String() string {
	switch l {
	case LevelExpression:
		return "expression"
	case LevelStatement:
		return "statement"
	case LevelFunction:
		return "function"
	default:
		return "module"
	}
}

// Representation is the program form a pass reads.
type Representation uint8

const (
	RepAst Representation = iota
	RepIr
	RepHybrid
)

func (r Representation) String() string {
	switch r {
	case RepAst:
		return "ast"
	case RepIr:
		return "ir"
	default:
		return "hybrid"
	}
}

// Metadata declares what a pass needs before it can run. Dependencies
// must name registered passes and must not form a cycle; both are
// checked when the schedule is built, before anything executes.
type Metadata struct {
	Level          Level
	Representation Representation
	Dependencies   []ID
}

// Pass is a single analysis unit. Run may read any artifact produced
// by a declared dependency and writes only artifacts keyed by its own
// id. Completed supports idempotent re-entry: a completed pass is
// skipped, not re-run.
type Pass interface {
	ID() ID
	Metadata() Metadata
	Completed(actx *analysis.Context) bool
	Run(ctx context.Context, actx *analysis.Context) error
}
