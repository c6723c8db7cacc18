package pass

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/ir"
	"github.com/xab-mack/smartanalyzer/internal/model"
)

func newTestManager(threads int) *Manager {
	return NewManager(Options{Threads: threads, Log: zerolog.Nop()})
}

func emptyContext() *analysis.Context {
	return analysis.NewContext(&ir.Program{})
}

func TestRunFailureIsolation(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	m := newTestManager(2)
	m.Register(&fakePass{id: "a"})
	m.Register(&fakePass{id: "b", deps: []ID{"a"}, run: func(*analysis.Context) error { return boom }})
	m.Register(&fakePass{id: "c", deps: []ID{"b"}})
	m.Register(&fakePass{id: "d"})

	report, err := m.Run(context.Background(), emptyContext())
	require.NoError(t, err)

	assert.Equal(t, model.PassSucceeded, report.Status("a"))
	assert.Equal(t, model.PassFailed, report.Status("b"))
	assert.Equal(t, model.PassBlocked, report.Status("c"))
	assert.Equal(t, model.PassSucceeded, report.Status("d"))
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 1, report.Blocked())
}

func TestRunTransitiveBlocking(t *testing.T) {
	t.Parallel()

	m := newTestManager(1)
	m.Register(&fakePass{id: "a", run: func(*analysis.Context) error { return errors.New("bad") }})
	m.Register(&fakePass{id: "b", deps: []ID{"a"}})
	m.Register(&fakePass{id: "c", deps: []ID{"b"}})
	m.Register(&fakePass{id: "d", deps: []ID{"c"}})

	report, err := m.Run(context.Background(), emptyContext())
	require.NoError(t, err)
	assert.Equal(t, model.PassFailed, report.Status("a"))
	for _, id := range []ID{"b", "c", "d"} {
		assert.Equal(t, model.PassBlocked, report.Status(id), "pass %s", id)
	}
}

func TestRunIdempotence(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	m := newTestManager(1)
	m.Register(&fakePass{id: "once", run: func(actx *analysis.Context) error {
		runs.Add(1)
		actx.PutArtifact("once", runs.Load())
		return nil
	}})

	actx := emptyContext()
	first, err := m.Run(context.Background(), actx)
	require.NoError(t, err)
	assert.Equal(t, model.PassSucceeded, first.Status("once"))

	second, err := m.Run(context.Background(), actx)
	require.NoError(t, err)
	assert.Equal(t, model.PassSkipped, second.Status("once"))
	assert.Equal(t, int32(1), runs.Load())

	v, err := analysis.Artifact[int32](actx, "once")
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)
}

func TestRunCycleReturnsNoReport(t *testing.T) {
	t.Parallel()

	m := newTestManager(1)
	m.Register(&fakePass{id: "a", deps: []ID{"b"}})
	m.Register(&fakePass{id: "b", deps: []ID{"a"}})

	report, err := m.Run(context.Background(), emptyContext())
	require.Error(t, err)
	assert.Nil(t, report)
}

func TestRegisterOverwrite(t *testing.T) {
	t.Parallel()

	m := newTestManager(1)
	var firstRan, secondRan bool
	m.Register(&fakePass{id: "p", run: func(*analysis.Context) error { firstRan = true; return nil }})
	m.Register(&fakePass{id: "p", run: func(*analysis.Context) error { secondRan = true; return nil }})
	require.Len(t, m.Passes(), 1)

	_, err := m.Run(context.Background(), emptyContext())
	require.NoError(t, err)
	assert.False(t, firstRan)
	assert.True(t, secondRan)
}

func TestRunPanicBecomesFailure(t *testing.T) {
	t.Parallel()

	m := newTestManager(1)
	m.Register(&fakePass{id: "p", run: func(*analysis.Context) error { panic("kaput") }})
	m.Register(&fakePass{id: "q", deps: []ID{"p"}})

	report, err := m.Run(context.Background(), emptyContext())
	require.NoError(t, err)
	assert.Equal(t, model.PassFailed, report.Status("p"))
	assert.Equal(t, model.PassBlocked, report.Status("q"))
	assert.Contains(t, report.Outcomes[0].Error, "panic")
}

func TestRunParallelLevelWritesDisjointKeys(t *testing.T) {
	t.Parallel()

	m := newTestManager(4)
	for _, id := range []ID{"w", "x", "y", "z"} {
		id := id
		m.Register(&fakePass{id: id, run: func(actx *analysis.Context) error {
			actx.PutArtifact(string(id), string(id))
			return nil
		}})
	}
	actx := emptyContext()
	report, err := m.Run(context.Background(), actx)
	require.NoError(t, err)
	require.Equal(t, 0, report.Failed())
	for _, id := range []ID{"w", "x", "y", "z"} {
		v, err := analysis.Artifact[string](actx, string(id))
		require.NoError(t, err)
		assert.Equal(t, string(id), v)
	}
}

func TestRunCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := newTestManager(1)
	m.Register(&fakePass{id: "a"})
	report, err := m.Run(ctx, emptyContext())
	require.NoError(t, err)
	assert.Equal(t, model.PassBlocked, report.Status("a"))
}
