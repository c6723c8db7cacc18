package passes

import (
	"context"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/cfg"
	"github.com/xab-mack/smartanalyzer/internal/pass"
)

// Graphs maps a function key to its control-flow graph.
type Graphs map[string]*cfg.Graph

type cfgPass struct{}

func NewCfgPass() pass.Pass { return &cfgPass{} }

func (p *cfgPass) ID() pass.ID { return Cfg }

func (p *cfgPass) Metadata() pass.Metadata {
	return pass.Metadata{Level: pass.LevelFunction, Representation: pass.RepIr}
}

func (p *cfgPass) Completed(actx *analysis.Context) bool {
	return actx.Completed(string(Cfg))
}

// Run materializes every function's CFG through the context cache so
// later passes share the same graphs.
func (p *cfgPass) Run(_ context.Context, actx *analysis.Context) error {
	graphs := Graphs{}
	for _, fn := range actx.Program.Functions() {
		graphs[fn.Key()] = actx.CFG(fn)
	}
	actx.PutArtifact(string(Cfg), graphs)
	return nil
}
