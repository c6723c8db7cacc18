package pass

import (
	"time"

	"github.com/xab-mack/smartanalyzer/internal/model"
)

// Report aggregates the outcome of one manager run: per-pass status
// and wall-clock duration, in plan order.
type Report struct {
	Outcomes []model.PassOutcome
	Elapsed  time.Duration

	// FindingCount is filled in by the detection layer when detection
	// passes are registered.
	FindingCount int
}

// Status returns the recorded status for a pass id, or "" when the
// pass was not part of the run.
func (r *Report) Status(id ID) model.PassStatus {
	for _, o := range r.Outcomes {
		if o.Pass == string(id) {
			return o.Status
		}
	}
	return ""
}

// Succeeded reports whether the pass ran to completion (or was skipped
// as already completed).
func (r *Report) Succeeded(id ID) bool {
	s := r.Status(id)
	return s == model.PassSucceeded || s == model.PassSkipped
}

func (r *Report) counts(status model.PassStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int  { return r.counts(model.PassFailed) }
func (r *Report) Blocked() int { return r.counts(model.PassBlocked) }
