package passes

import (
	"context"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/dataflow"
	"github.com/xab-mack/smartanalyzer/internal/pass"
)

// TaintMaps maps a function key to its taint fixed point.
type TaintMaps map[string]*dataflow.Result[dataflow.TaintFact]

type taintPass struct{}

func NewTaintPass() pass.Pass { return &taintPass{} }

func (p *taintPass) ID() pass.ID { return Taint }

func (p *taintPass) Metadata() pass.Metadata {
	return pass.Metadata{
		Level:          pass.LevelFunction,
		Representation: pass.RepIr,
		Dependencies:   []pass.ID{Cfg, SymbolTable},
	}
}

func (p *taintPass) Completed(actx *analysis.Context) bool {
	return actx.Completed(string(Taint))
}

func (p *taintPass) Run(ctx context.Context, actx *analysis.Context) error {
	graphs, err := analysis.Artifact[Graphs](actx, string(Cfg))
	if err != nil {
		return err
	}
	out := TaintMaps{}
	for key, g := range graphs {
		res, err := dataflow.Taint(ctx, g, dataflow.EntryTaint(g.Fn))
		if err != nil {
			return err
		}
		out[key] = res
	}
	actx.PutArtifact(string(Taint), out)
	return nil
}
