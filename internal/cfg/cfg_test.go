package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/smartanalyzer/internal/ir"
)

// diamond builds the classic four-block shape:
//
//	B0 --cond--> B1, B2; B1 -> B3; B2 -> B3; B3 returns.
func diamond() *ir.Function {
	return &ir.Function{
		Contract: "C",
		Name:     "f",
		Blocks: []ir.Block{
			{ID: 0, Term: ir.Terminator{Kind: ir.TermCondBranch, Cond: []string{"c"}, Then: 1, Else: 2}},
			{ID: 1, Term: ir.Terminator{Kind: ir.TermFallthrough, Target: 3}},
			{ID: 2, Term: ir.Terminator{Kind: ir.TermFallthrough, Target: 3}},
			{ID: 3, Term: ir.Terminator{Kind: ir.TermReturn}},
		},
	}
}

func TestBuildDiamond(t *testing.T) {
	t.Parallel()

	g := Build(diamond())

	assert.Equal(t, ir.BlockID(0), g.Entry)
	assert.Equal(t, []ir.BlockID{1, 2}, g.Succs(0))
	assert.Equal(t, []ir.BlockID{3}, g.Succs(1))
	assert.Equal(t, []ir.BlockID{3}, g.Succs(2))
	assert.Empty(t, g.Succs(3))

	assert.Empty(t, g.Preds(0))
	assert.Equal(t, []ir.BlockID{0}, g.Preds(1))
	assert.Equal(t, []ir.BlockID{0}, g.Preds(2))
	assert.Equal(t, []ir.BlockID{1, 2}, g.Preds(3))

	assert.Equal(t, []ir.BlockID{3}, g.Exits())
}

func TestBuildEmptyFunction(t *testing.T) {
	t.Parallel()

	g := Build(&ir.Function{Contract: "C", Name: "empty"})

	require.Len(t, g.Blocks(), 1)
	assert.Equal(t, ir.TermReturn, g.Blocks()[0].Term.Kind)
	assert.Equal(t, []ir.BlockID{0}, g.Exits())
	assert.True(t, g.Reachable()[0])
}

func TestBuildOutOfRangeTargetsDropped(t *testing.T) {
	t.Parallel()

	fn := &ir.Function{
		Contract: "C",
		Name:     "broken",
		Blocks: []ir.Block{
			{ID: 0, Term: ir.Terminator{Kind: ir.TermFallthrough, Target: 9}},
			{ID: 1, Term: ir.Terminator{Kind: ir.TermCondBranch, Then: 1, Else: -3}},
		},
	}
	g := Build(fn)

	// Malformed targets contribute no edges; nothing panics.
	assert.Empty(t, g.Succs(0))
	assert.Equal(t, []ir.BlockID{1}, g.Succs(1))
	assert.Contains(t, g.Exits(), ir.BlockID(0))
}

func TestBuildUnknownTerminatorIsExit(t *testing.T) {
	t.Parallel()

	fn := &ir.Function{
		Contract: "C",
		Name:     "mystery",
		Blocks: []ir.Block{
			{ID: 0, Term: ir.Terminator{Kind: ir.TermFallthrough, Target: 1}},
			{ID: 1, Term: ir.Terminator{Kind: ir.TermUnknown}},
		},
	}
	g := Build(fn)

	assert.Empty(t, g.Succs(1))
	assert.Equal(t, []ir.BlockID{1}, g.Exits())
	assert.True(t, fn.Blocks[1].Term.IsExit())
}

func TestBuildCondBranchSameArmOnce(t *testing.T) {
	t.Parallel()

	fn := &ir.Function{
		Contract: "C",
		Name:     "same",
		Blocks: []ir.Block{
			{ID: 0, Term: ir.Terminator{Kind: ir.TermCondBranch, Then: 1, Else: 1}},
			{ID: 1, Term: ir.Terminator{Kind: ir.TermReturn}},
		},
	}
	g := Build(fn)

	assert.Equal(t, []ir.BlockID{1}, g.Succs(0))
	assert.Equal(t, []ir.BlockID{0}, g.Preds(1))
}

func TestReachableSkipsOrphans(t *testing.T) {
	t.Parallel()

	fn := &ir.Function{
		Contract: "C",
		Name:     "orphan",
		Blocks: []ir.Block{
			{ID: 0, Term: ir.Terminator{Kind: ir.TermReturn}},
			{ID: 1, Term: ir.Terminator{Kind: ir.TermReturn}},
		},
	}
	g := Build(fn)

	reach := g.Reachable()
	assert.True(t, reach[0])
	assert.False(t, reach[1])
}

func TestBlockLookup(t *testing.T) {
	t.Parallel()

	g := Build(diamond())
	require.NotNil(t, g.Block(2))
	assert.Equal(t, ir.BlockID(2), g.Block(2).ID)
	assert.Nil(t, g.Block(-1))
	assert.Nil(t, g.Block(99))
}
