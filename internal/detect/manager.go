package detect

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/model"
	"github.com/xab-mack/smartanalyzer/internal/pass"
)

// Manager orchestrates a detection run: every registered analysis
// pass first, in dependency order, then every detector. Findings are
// ordered by detector registration, then emission order within a
// detector, so repeated runs over an unchanged context are identical.
type Manager struct {
	opts      pass.Options
	passes    *pass.Manager
	order     []pass.ID
	detectors map[pass.ID]BugDetectionPass
}

// Result is the outcome of one detection run.
type Result struct {
	Report   *pass.Report
	Findings []model.Finding
}

func NewManager(opts pass.Options) *Manager {
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	return &Manager{
		opts:      opts,
		passes:    pass.NewManager(opts),
		detectors: make(map[pass.ID]BugDetectionPass),
	}
}

// RegisterPass adds an analysis pass to the underlying pass manager.
func (m *Manager) RegisterPass(p pass.Pass) { m.passes.Register(p) }

// RegisterDetector adds a detector. Re-registering an id replaces the
// previous detector, keeping its position.
func (m *Manager) RegisterDetector(d BugDetectionPass) {
	id := d.ID()
	if _, ok := m.detectors[id]; ok {
		m.opts.Log.Warn().Str("detector", string(id)).Msg("re-registered, replacing previous detector")
	} else {
		m.order = append(m.order, id)
	}
	m.detectors[id] = d
}

// Detectors returns registered detectors in registration order.
func (m *Manager) Detectors() []BugDetectionPass {
	out := make([]BugDetectionPass, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.detectors[id])
	}
	return out
}

// AnalysisPasses exposes the underlying pass manager's registrations.
func (m *Manager) AnalysisPasses() []pass.Pass { return m.passes.Passes() }

// Run executes analysis passes then detectors. Configuration errors
// (cycle, missing dependency) return before anything runs. Detector
// failures are isolated: they are reported and the run continues.
func (m *Manager) Run(ctx context.Context, actx *analysis.Context) (*Result, error) {
	registered := make(map[pass.ID]bool)
	for _, p := range m.passes.Passes() {
		registered[p.ID()] = true
	}
	for _, id := range m.order {
		for _, dep := range m.detectors[id].Metadata().Dependencies {
			if !registered[dep] {
				return nil, &pass.MissingDependencyError{Pass: id, Missing: dep}
			}
		}
	}

	report, err := m.passes.Run(ctx, actx)
	if err != nil {
		return nil, err
	}

	// Detectors have no edges among themselves, so they form a single
	// level: run them concurrently, collect in registration order.
	findings := make([][]model.Finding, len(m.order))
	outcomes := make([]model.PassOutcome, len(m.order))

	var g errgroup.Group
	g.SetLimit(m.opts.Threads)
	for i, id := range m.order {
		i, id := i, id
		d := m.detectors[id]

		blockedBy := pass.ID("")
		for _, dep := range d.Metadata().Dependencies {
			if !report.Succeeded(dep) {
				blockedBy = dep
				break
			}
		}
		if blockedBy != "" {
			outcomes[i] = model.PassOutcome{
				Pass:   string(id),
				Status: model.PassBlocked,
				Error:  fmt.Sprintf("dependency %s did not complete", blockedBy),
			}
			continue
		}

		g.Go(func() error {
			outcomes[i], findings[i] = m.runDetector(ctx, d, actx)
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{Report: report}
	for i := range m.order {
		if outcomes[i].Pass != "" {
			report.Outcomes = append(report.Outcomes, outcomes[i])
		}
		result.Findings = append(result.Findings, findings[i]...)
	}
	report.FindingCount = len(result.Findings)
	return result, nil
}

func (m *Manager) runDetector(ctx context.Context, d BugDetectionPass, actx *analysis.Context) (out model.PassOutcome, fs []model.Finding) {
	id := d.ID()
	out.Pass = string(id)
	start := time.Now()
	defer func() {
		out.Duration = time.Since(start)
		if r := recover(); r != nil {
			out.Status = model.PassFailed
			out.Error = fmt.Sprintf("panic: %v", r)
			fs = nil
			m.opts.Log.Error().Str("detector", string(id)).Str("panic", fmt.Sprint(r)).Msg("detector panicked")
		}
	}()

	m.opts.Log.Debug().Str("detector", string(id)).Msg("running")
	raw, err := d.Detect(ctx, actx)
	if err != nil {
		out.Status = model.PassFailed
		out.Error = err.Error()
		m.opts.Log.Warn().Str("detector", string(id)).Err(err).Msg("detector failed")
		return out, nil
	}
	meta := d.Meta()
	fs = make([]model.Finding, 0, len(raw))
	for _, f := range raw {
		fs = append(fs, finalize(f, meta))
	}
	out.Status = model.PassSucceeded
	return out, fs
}
