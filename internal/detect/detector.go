// Package detect layers bug detection on top of the pass engine:
// detectors are passes that additionally yield findings.
package detect

import (
	"context"

	"github.com/xab-mack/smartanalyzer/internal/analysis"
	"github.com/xab-mack/smartanalyzer/internal/model"
	"github.com/xab-mack/smartanalyzer/internal/pass"
)

// BugDetectionPass is the detector contract. Metadata declares the
// analysis passes the detector reads; Detect runs after all of them
// completed and returns findings only — a failed detector contributes
// nothing, never partial results.
type BugDetectionPass interface {
	ID() pass.ID
	Metadata() pass.Metadata
	Meta() model.DetectorMeta
	Detect(ctx context.Context, actx *analysis.Context) ([]model.Finding, error)
}

// finalize fills a finding's taxonomy fields from the detector's fixed
// metadata wherever the detector left them blank.
func finalize(f model.Finding, meta model.DetectorMeta) model.Finding {
	if f.DetectorID == "" {
		f.DetectorID = meta.ID
	}
	if f.Title == "" {
		f.Title = meta.Title
	}
	if f.Kind == "" {
		f.Kind = meta.Kind
	}
	if f.Risk == "" {
		f.Risk = meta.Risk
	}
	if f.Confidence == "" {
		f.Confidence = meta.Confidence
	}
	if f.CWEIDs == nil {
		f.CWEIDs = meta.CWEIDs
	}
	if f.SWCIDs == nil {
		f.SWCIDs = meta.SWCIDs
	}
	if f.Remediation == "" {
		f.Remediation = meta.Recommendation
	}
	if f.References == nil {
		f.References = meta.References
	}
	return f
}
