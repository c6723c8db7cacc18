package pass

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/model"
)

// Executor runs an execution plan level by level. Passes within a
// level run concurrently, bounded by Threads; a level is a barrier.
// A failing pass blocks every pass that transitively depends on it,
// while unrelated passes keep running.
type Executor struct {
	Threads int
	Log     zerolog.Logger
}

func (e *Executor) limit() int {
	if e.Threads < 1 {
		return 1
	}
	return e.Threads
}

// Execute runs every pass in plan against actx. The returned report
// covers every planned pass, including blocked and skipped ones. Only
// context cancellation aborts mid-run; pass failures never do.
func (e *Executor) Execute(
	ctx context.Context,
	plan *Plan,
	passes map[ID]Pass,
	meta map[ID]Metadata,
	actx *analysis.Context,
) *Report {
	start := time.Now()
	report := &Report{}

	// unavailable holds failed and blocked passes; depending on any
	// of them blocks a pass before it starts.
	unavailable := make(map[ID]bool)
	var mu sync.Mutex

	record := func(o model.PassOutcome) {
		mu.Lock()
		report.Outcomes = append(report.Outcomes, o)
		mu.Unlock()
	}

	for _, level := range plan.Levels {
		if err := ctx.Err(); err != nil {
			for _, id := range level {
				record(model.PassOutcome{Pass: string(id), Status: model.PassBlocked, Error: err.Error()})
			}
			continue
		}

		var g errgroup.Group
		g.SetLimit(e.limit())

		// Outcomes of a level are appended in level order once the
		// barrier is passed, keeping the report deterministic.
		outcomes := make([]model.PassOutcome, len(level))

		for i, id := range level {
			blockedBy := ID("")
			for _, dep := range meta[id].Dependencies {
				if unavailable[dep] {
					blockedBy = dep
					break
				}
			}
			if blockedBy != "" {
				unavailable[id] = true
				outcomes[i] = model.PassOutcome{
					Pass:   string(id),
					Status: model.PassBlocked,
					Error:  fmt.Sprintf("dependency %s did not complete", blockedBy),
				}
				continue
			}

			i, id := i, id
			p := passes[id]
			g.Go(func() error {
				outcomes[i] = e.runOne(ctx, p, actx)
				return nil
			})
		}
		_ = g.Wait()

		for _, o := range outcomes {
			if o.Pass == "" {
				continue
			}
			if o.Status == model.PassFailed {
				unavailable[ID(o.Pass)] = true
			}
			record(o)
		}
	}

	report.Elapsed = time.Since(start)
	return report
}

func (e *Executor) runOne(ctx context.Context, p Pass, actx *analysis.Context) (out model.PassOutcome) {
	id := p.ID()
	out.Pass = string(id)

	if p.Completed(actx) {
		e.Log.Debug().Str("pass", string(id)).Msg("already completed, skipping")
		out.Status = model.PassSkipped
		return out
	}

	start := time.Now()
	defer func() {
		out.Duration = time.Since(start)
		if r := recover(); r != nil {
			out.Status = model.PassFailed
			out.Error = fmt.Sprintf("panic: %v", r)
			e.Log.Error().Str("pass", string(id)).Str("panic", fmt.Sprint(r)).Msg("pass panicked")
		}
	}()

	e.Log.Debug().Str("pass", string(id)).Msg("running")
	if err := p.Run(ctx, actx); err != nil {
		out.Status = model.PassFailed
		out.Error = err.Error()
		e.Log.Warn().Str("pass", string(id)).Err(err).Msg("pass failed")
		return out
	}
	actx.MarkCompleted(string(id))
	out.Status = model.PassSucceeded
	return out
}
