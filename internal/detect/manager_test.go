package detect

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
	"github.com/xab-mack/smartanalyzer/internal/pass"
)

type fakeAnalysisPass struct {
	id   pass.ID
	deps []pass.ID
	fail bool
}

func (p *fakeAnalysisPass) ID() pass.ID { return p.id }

func (p *fakeAnalysisPass) Metadata() pass.Metadata {
	return pass.Metadata{Level: pass.LevelModule, Representation: pass.RepIr, Dependencies: p.deps}
}

func (p *fakeAnalysisPass) Completed(actx *analysis.Context) bool {
	return actx.Completed(string(p.id))
}

func (p *fakeAnalysisPass) Run(_ context.Context, actx *analysis.Context) error {
	if p.fail {
		return errors.New("analysis failed")
	}
	actx.PutArtifact(string(p.id), true)
	return nil
}

type fakeDetector struct {
	id      pass.ID
	deps    []pass.ID
	meta    model.DetectorMeta
	detect  func(actx *analysis.Context) ([]model.Finding, error)
	panicky bool
}

func (d *fakeDetector) ID() pass.ID { return d.id }

func (d *fakeDetector) Metadata() pass.Metadata {
	return pass.Metadata{Level: pass.LevelModule, Representation: pass.RepIr, Dependencies: d.deps}
}

func (d *fakeDetector) Meta() model.DetectorMeta { return d.meta }

func (d *fakeDetector) Detect(_ context.Context, actx *analysis.Context) ([]model.Finding, error) {
	if d.panicky {
		panic("detector bug")
	}
	if d.detect != nil {
		return d.detect(actx)
	}
	return nil, nil
}

func newTestDetectManager() *Manager {
	return NewManager(pass.Options{Threads: 2, Log: zerolog.Nop()})
}

func TestRunFindingsFinalizedFromMeta(t *testing.T) {
	t.Parallel()

	m := newTestDetectManager()
	m.RegisterDetector(&fakeDetector{
		id: "tx-origin",
		meta: model.DetectorMeta{
			ID:         "tx-origin",
			Title:      "tx.origin used for authorization",
			Kind:       model.KindVulnerability,
			Risk:       model.RiskHigh,
			Confidence: model.ConfidenceHigh,
			SWCIDs:     []int{115},
			CWEIDs:     []int{477},
		},
		detect: func(*analysis.Context) ([]model.Finding, error) {
			return []model.Finding{{
				Location: model.Location{File: "a.sol", StartLine: 7, EndLine: 7},
			}}, nil
		},
	})

	res, err := m.Run(context.Background(), analysis.NewContext(&ir.Program{}))
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)

	f := res.Findings[0]
	assert.Equal(t, "tx-origin", f.DetectorID)
	assert.Equal(t, "tx.origin used for authorization", f.Title)
	assert.Equal(t, model.RiskHigh, f.Risk)
	assert.Equal(t, []int{115}, f.SWCIDs)
	assert.Equal(t, []int{477}, f.CWEIDs)
	assert.Equal(t, 1, res.Report.FindingCount)
}

func TestRunDeterministicFindingOrder(t *testing.T) {
	t.Parallel()

	mkDetector := func(id pass.ID, files ...string) *fakeDetector {
		return &fakeDetector{
			id:   id,
			meta: model.DetectorMeta{ID: string(id), Risk: model.RiskLow},
			detect: func(*analysis.Context) ([]model.Finding, error) {
				fs := make([]model.Finding, 0, len(files))
				for _, f := range files {
					fs = append(fs, model.Finding{Location: model.Location{File: f}})
				}
				return fs, nil
			},
		}
	}

	run := func() []model.Finding {
		m := newTestDetectManager()
		m.RegisterDetector(mkDetector("zeta", "z1.sol", "z2.sol"))
		m.RegisterDetector(mkDetector("alpha", "a1.sol"))
		res, err := m.Run(context.Background(), analysis.NewContext(&ir.Program{}))
		require.NoError(t, err)
		return res.Findings
	}

	first := run()
	require.Len(t, first, 3)
	// Registration order wins over lexical order, emission order within.
	assert.Equal(t, "z1.sol", first[0].Location.File)
	assert.Equal(t, "z2.sol", first[1].Location.File)
	assert.Equal(t, "a1.sol", first[2].Location.File)

	for i := 0; i < 5; i++ {
		assert.Equal(t, first, run())
	}
}

func TestRunDetectorFailureIsolated(t *testing.T) {
	t.Parallel()

	m := newTestDetectManager()
	m.RegisterDetector(&fakeDetector{
		id:   "broken",
		meta: model.DetectorMeta{ID: "broken"},
		detect: func(*analysis.Context) ([]model.Finding, error) {
			return []model.Finding{{Title: "partial"}}, errors.New("exploded")
		},
	})
	m.RegisterDetector(&fakeDetector{
		id:   "healthy",
		meta: model.DetectorMeta{ID: "healthy"},
		detect: func(*analysis.Context) ([]model.Finding, error) {
			return []model.Finding{{Location: model.Location{File: "ok.sol"}}}, nil
		},
	})

	res, err := m.Run(context.Background(), analysis.NewContext(&ir.Program{}))
	require.NoError(t, err)

	// A failing detector contributes nothing, not partial results.
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "healthy", res.Findings[0].DetectorID)
	assert.Equal(t, model.PassFailed, res.Report.Status("broken"))
	assert.Equal(t, model.PassSucceeded, res.Report.Status("healthy"))
}

func TestRunDetectorPanicIsolated(t *testing.T) {
	t.Parallel()

	m := newTestDetectManager()
	m.RegisterDetector(&fakeDetector{id: "panicky", panicky: true})
	m.RegisterDetector(&fakeDetector{
		id:   "steady",
		meta: model.DetectorMeta{ID: "steady"},
		detect: func(*analysis.Context) ([]model.Finding, error) {
			return []model.Finding{{}}, nil
		},
	})

	res, err := m.Run(context.Background(), analysis.NewContext(&ir.Program{}))
	require.NoError(t, err)
	assert.Equal(t, model.PassFailed, res.Report.Status("panicky"))
	assert.Len(t, res.Findings, 1)
}

func TestRunDetectorBlockedByFailedAnalysis(t *testing.T) {
	t.Parallel()

	var ran atomic.Bool
	m := newTestDetectManager()
	m.RegisterPass(&fakeAnalysisPass{id: "taint", fail: true})
	m.RegisterDetector(&fakeDetector{
		id:   "tainted-state",
		deps: []pass.ID{"taint"},
		detect: func(*analysis.Context) ([]model.Finding, error) {
			ran.Store(true)
			return nil, nil
		},
	})
	m.RegisterDetector(&fakeDetector{
		id:   "independent",
		meta: model.DetectorMeta{ID: "independent"},
		detect: func(*analysis.Context) ([]model.Finding, error) {
			return []model.Finding{{}}, nil
		},
	})

	res, err := m.Run(context.Background(), analysis.NewContext(&ir.Program{}))
	require.NoError(t, err)
	assert.Equal(t, model.PassFailed, res.Report.Status("taint"))
	assert.Equal(t, model.PassBlocked, res.Report.Status("tainted-state"))
	assert.Equal(t, model.PassSucceeded, res.Report.Status("independent"))
	assert.Len(t, res.Findings, 1)
	assert.False(t, ran.Load(), "blocked detector must not run")
}

func TestRunMissingDetectorDependency(t *testing.T) {
	t.Parallel()

	m := newTestDetectManager()
	m.RegisterDetector(&fakeDetector{id: "needy", deps: []pass.ID{"never-registered"}})

	res, err := m.Run(context.Background(), analysis.NewContext(&ir.Program{}))
	require.Error(t, err)
	assert.Nil(t, res)

	var miss *pass.MissingDependencyError
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, pass.ID("needy"), miss.Pass)
	assert.Equal(t, pass.ID("never-registered"), miss.Missing)
}

func TestRegisterDetectorOverwriteKeepsPosition(t *testing.T) {
	t.Parallel()

	m := newTestDetectManager()
	m.RegisterDetector(&fakeDetector{id: "a"})
	m.RegisterDetector(&fakeDetector{id: "b"})
	m.RegisterDetector(&fakeDetector{id: "a", panicky: true})

	ds := m.Detectors()
	require.Len(t, ds, 2)
	assert.Equal(t, pass.ID("a"), ds[0].ID())
	assert.Equal(t, pass.ID("b"), ds[1].ID())
	assert.True(t, ds[0].(*fakeDetector).panicky)
}
