package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
)

// fakePass is a minimal pass for scheduler tests.
type fakePass struct {
	id   ID
	deps []ID
	run  func(actx *analysis.Context) error
}

func (p *fakePass) ID() ID { return p.id }

func (p *fakePass) Metadata() Metadata {
	return Metadata{Level: LevelModule, Representation: RepIr, Dependencies: p.deps}
}

func (p *fakePass) Completed(actx *analysis.Context) bool {
	return actx.Completed(string(p.id))
}

func (p *fakePass) Run(_ context.Context, actx *analysis.Context) error {
	if p.run != nil {
		return p.run(actx)
	}
	return nil
}

func graphOf(passes ...*fakePass) *DependencyGraph {
	var order []ID
	meta := map[ID]Metadata{}
	for _, p := range passes {
		order = append(order, p.id)
		meta[p.id] = p.Metadata()
	}
	return NewDependencyGraph(order, meta)
}

func TestBuildTopologicalValidity(t *testing.T) {
	t.Parallel()

	plan, err := graphOf(
		&fakePass{id: "d", deps: []ID{"b", "c"}},
		&fakePass{id: "b", deps: []ID{"a"}},
		&fakePass{id: "c", deps: []ID{"a"}},
		&fakePass{id: "a"},
	).Build()
	require.NoError(t, err)

	position := map[ID]int{}
	for i, id := range plan.Sequence() {
		position[id] = i
	}
	// every pass strictly after all of its dependencies
	assert.Greater(t, position["b"], position["a"])
	assert.Greater(t, position["c"], position["a"])
	assert.Greater(t, position["d"], position["b"])
	assert.Greater(t, position["d"], position["c"])

	require.Len(t, plan.Levels, 3)
	assert.Equal(t, []ID{"a"}, plan.Levels[0])
	// ties within a level break by registration order
	assert.Equal(t, []ID{"b", "c"}, plan.Levels[1])
	assert.Equal(t, []ID{"d"}, plan.Levels[2])
}

func TestBuildCycleError(t *testing.T) {
	t.Parallel()

	_, err := graphOf(
		&fakePass{id: "a", deps: []ID{"c"}},
		&fakePass{id: "b", deps: []ID{"a"}},
		&fakePass{id: "c", deps: []ID{"b"}},
	).Build()
	require.Error(t, err)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Len(t, cycleErr.Cycle, 3)
	assert.Contains(t, err.Error(), "cycle")

	// the reported cycle is closed: each member depends on the next
	members := map[ID]bool{}
	for _, id := range cycleErr.Cycle {
		members[id] = true
	}
	assert.True(t, members["a"] && members["b"] && members["c"])
}

func TestBuildSelfCycle(t *testing.T) {
	t.Parallel()

	_, err := graphOf(&fakePass{id: "a", deps: []ID{"a"}}).Build()
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []ID{"a"}, cycleErr.Cycle)
}

func TestBuildMissingDependency(t *testing.T) {
	t.Parallel()

	_, err := graphOf(&fakePass{id: "a", deps: []ID{"ghost"}}).Build()
	var missing *MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, ID("a"), missing.Pass)
	assert.Equal(t, ID("ghost"), missing.Missing)
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestBuildDeterministic(t *testing.T) {
	t.Parallel()

	g := graphOf(
		&fakePass{id: "z"},
		&fakePass{id: "a"},
		&fakePass{id: "m", deps: []ID{"z", "a"}},
	)
	first, err := g.Build()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := g.Build()
		require.NoError(t, err)
		assert.Equal(t, first.Levels, again.Levels)
	}
	// registration order, not lexical order
	assert.Equal(t, []ID{"z", "a"}, first.Levels[0])
}
