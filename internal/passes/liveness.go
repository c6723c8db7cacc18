package passes

import (
	"context"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/dataflow"
	"github.com/xab-mack/smartanalyzer/internal/lattice"
	"github.com/xab-mack/smartanalyzer/internal/pass"
)

// LiveSets maps a function key to its liveness fixed point.
type LiveSets map[string]*dataflow.Result[lattice.Set[string]]

type livenessPass struct{}

func NewLivenessPass() pass.Pass { return &livenessPass{} }

func (p *livenessPass) ID() pass.ID { return Liveness }

func (p *livenessPass) Metadata() pass.Metadata {
	return pass.Metadata{
		Level:          pass.LevelFunction,
		Representation: pass.RepIr,
		Dependencies:   []pass.ID{Cfg},
	}
}

func (p *livenessPass) Completed(actx *analysis.Context) bool {
	return actx.Completed(string(Liveness))
}

func (p *livenessPass) Run(ctx context.Context, actx *analysis.Context) error {
	graphs, err := analysis.Artifact[Graphs](actx, string(Cfg))
	if err != nil {
		return err
	}
	out := LiveSets{}
	for key, g := range graphs {
		res, err := dataflow.Liveness(ctx, g)
		if err != nil {
			return err
		}
		out[key] = res
	}
	actx.PutArtifact(string(Liveness), out)
	return nil
}

// DefSets maps a function key to its reaching-definitions fixed point.
type DefSets map[string]*dataflow.Result[lattice.Set[dataflow.Def]]

type reachingDefsPass struct{}

func NewReachingDefsPass() pass.Pass { return &reachingDefsPass{} }

func (p *reachingDefsPass) ID() pass.ID { return ReachingDefs }

func (p *reachingDefsPass) Metadata() pass.Metadata {
	return pass.Metadata{
		Level:          pass.LevelFunction,
		Representation: pass.RepIr,
		Dependencies:   []pass.ID{Cfg},
	}
}

func (p *reachingDefsPass) Completed(actx *analysis.Context) bool {
	return actx.Completed(string(ReachingDefs))
}

func (p *reachingDefsPass) Run(ctx context.Context, actx *analysis.Context) error {
	graphs, err := analysis.Artifact[Graphs](actx, string(Cfg))
	if err != nil {
		return err
	}
	out := DefSets{}
	for key, g := range graphs {
		res, err := dataflow.ReachingDefs(ctx, g)
		if err != nil {
			return err
		}
		out[key] = res
	}
	actx.PutArtifact(string(ReachingDefs), out)
	return nil
}
