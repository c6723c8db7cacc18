package pass

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
)

// Options carries the process-wide knobs a manager needs. Passed in
// explicitly at construction; there is no ambient global state.
type Options struct {
	Threads int
	Log     zerolog.Logger
}

// Manager is the public façade over the dependency graph and the
// executor: register passes, then run them against a context.
type Manager struct {
	opts   Options
	order  []ID
	passes map[ID]Pass
}

func NewManager(opts Options) *Manager {
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	return &Manager{
		opts:   opts,
		passes: make(map[ID]Pass),
	}
}

// Register adds a pass. Registering an id that is already present
// replaces the prior registration and keeps its original position in
// the registration order; the overwrite is logged.
func (m *Manager) Register(p Pass) {
	id := p.ID()
	if _, ok := m.passes[id]; ok {
		m.opts.Log.Warn().Str("pass", string(id)).Msg("re-registered, replacing previous pass")
	} else {
		m.order = append(m.order, id)
	}
	m.passes[id] = p
}

// Passes returns the registered passes in registration order.
func (m *Manager) Passes() []Pass {
	out := make([]Pass, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.passes[id])
	}
	return out
}

func (m *Manager) metadata() map[ID]Metadata {
	meta := make(map[ID]Metadata, len(m.passes))
	for id, p := range m.passes {
		meta[id] = p.Metadata()
	}
	return meta
}

// Plan builds the execution plan without running it.
func (m *Manager) Plan() (*Plan, error) {
	return NewDependencyGraph(m.order, m.metadata()).Build()
}

// Run executes every registered pass in dependency order. A cyclic or
// missing dependency returns an error and no report; pass failures are
// recorded in the report instead.
func (m *Manager) Run(ctx context.Context, actx *analysis.Context) (*Report, error) {
	meta := m.metadata()
	plan, err := NewDependencyGraph(m.order, meta).Build()
	if err != nil {
		return nil, err
	}
	ex := &Executor{Threads: m.opts.Threads, Log: m.opts.Log}
	return ex.Execute(ctx, plan, m.passes, meta, actx), nil
}
