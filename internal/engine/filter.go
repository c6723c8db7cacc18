package engine

import (
	"strings"

	"github.com/xab-mack/smartanalyzer/internal/config"
	"github.com/xab-mack/smartanalyzer/internal/model"
)

// filterByRisk removes findings below the configured risk threshold.
func filterByRisk(findings []model.Finding, cfg config.Config) []model.Finding {
	threshold := model.ParseRisk(cfg.RiskThreshold)
	var out []model.Finding
	for _, f := range findings {
		if model.RiskGTE(f.Risk, threshold) {
			out = append(out, f)
		}
	}
	return out
}

// filterByDetectors keeps only findings from allow-listed detectors
// when the list is non-empty.
func filterByDetectors(findings []model.Finding, cfg config.Config) []model.Finding {
	if len(cfg.Detectors) == 0 {
		return findings
	}
	allowed := map[string]struct{}{}
	for _, id := range cfg.Detectors {
		allowed[strings.TrimSpace(id)] = struct{}{}
	}
	var out []model.Finding
	for _, f := range findings {
		if _, ok := allowed[f.DetectorID]; ok {
			out = append(out, f)
		}
	}
	return out
}
