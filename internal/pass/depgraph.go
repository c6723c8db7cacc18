package pass

import (
	"fmt"
	"strings"
)

// CycleError reports a dependency cycle as the ordered list of pass
// ids along it, first repeated last for readability.
type CycleError struct {
	Cycle []ID
}

func (e *CycleError) Error() string {
	parts := make([]string, 0, len(e.Cycle)+1)
	for _, id := range e.Cycle {
		parts = append(parts, string(id))
	}
	if len(e.Cycle) > 0 {
		parts = append(parts, string(e.Cycle[0]))
	}
	return "pass: dependency cycle: " + strings.Join(parts, " -> ")
}

// MissingDependencyError reports a declared dependency that was never
// registered. Surfaced at schedule-build time, before any pass runs.
type MissingDependencyError struct {
	Pass    ID
	Missing ID
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("pass: %s depends on %s, which is not registered", e.Pass, e.Missing)
}

// Plan is a valid execution order: a sequence of levels. Passes within
// one level share no dependency edges and may run concurrently; a pass
// in level N+1 depends only on passes in levels <= N. Order within a
// level is registration order, for deterministic output.
type Plan struct {
	Levels [][]ID
}

// Sequence flattens the plan into one ordered list.
func (p *Plan) Sequence() []ID {
	var out []ID
	for _, lvl := range p.Levels {
		out = append(out, lvl...)
	}
	return out
}

// DependencyGraph is the directed graph over registered passes implied
// by their declared dependencies. Nodes keep registration order.
type DependencyGraph struct {
	order []ID
	meta  map[ID]Metadata
}

func NewDependencyGraph(order []ID, meta map[ID]Metadata) *DependencyGraph {
	return &DependencyGraph{order: order, meta: meta}
}

// Dependents returns, for each pass, the passes that directly require
// it. Used by the executor to propagate failures.
func (g *DependencyGraph) Dependents() map[ID][]ID {
	out := make(map[ID][]ID, len(g.order))
	for _, id := range g.order {
		for _, dep := range g.meta[id].Dependencies {
			out[dep] = append(out[dep], id)
		}
	}
	return out
}

const (
	white = iota // unvisited
	gray         // on the current DFS path
	black        // fully explored
)

// Build validates the graph and produces an execution plan. A missing
// dependency or a cycle is a configuration error; no partial plan is
// ever returned.
func (g *DependencyGraph) Build() (*Plan, error) {
	for _, id := range g.order {
		for _, dep := range g.meta[id].Dependencies {
			if _, ok := g.meta[dep]; !ok {
				return nil, &MissingDependencyError{Pass: id, Missing: dep}
			}
		}
	}

	color := make(map[ID]int, len(g.order))
	depth := make(map[ID]int, len(g.order))
	var stack []ID

	var visit func(id ID) (int, *CycleError)
	visit = func(id ID) (int, *CycleError) {
		switch color[id] {
		case black:
			return depth[id], nil
		case gray:
			// Found a back edge: the cycle is the stack suffix
			// starting at the gray node.
			start := 0
			for i, s := range stack {
				if s == id {
					start = i
					break
				}
			}
			return 0, &CycleError{Cycle: append([]ID(nil), stack[start:]...)}
		}
		color[id] = gray
		stack = append(stack, id)
		d := 0
		for _, dep := range g.meta[id].Dependencies {
			dd, cyc := visit(dep)
			if cyc != nil {
				return 0, cyc
			}
			if dd+1 > d {
				d = dd + 1
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		depth[id] = d
		return d, nil
	}

	maxDepth := 0
	for _, id := range g.order {
		d, cyc := visit(id)
		if cyc != nil {
			return nil, cyc
		}
		if d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]ID, maxDepth+1)
	for _, id := range g.order {
		d := depth[id]
		levels[d] = append(levels[d], id)
	}
	return &Plan{Levels: levels}, nil
}
